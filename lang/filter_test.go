package lang

import (
	"errors"
	"testing"
)

func TestFilter_Apply(t *testing.T) {
	set := NewSet("alice@mit.edu", "bob@mit.edu", "carol@x.com", "test+1@mit.edu")

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"domain", `domain == "mit.edu"`, "alice@mit.edu, bob@mit.edu, test+1@mit.edu"},
		{"user prefix", `user startsWith "b" || user startsWith "c"`, "bob@mit.edu, carol@x.com"},
		{"negation", `!(user contains "+")`, "alice@mit.edu, bob@mit.edu, carol@x.com"},
		{"address", `address endsWith ".com"`, "carol@x.com"},
		{"none", `false`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter(tt.source)
			if err != nil {
				t.Fatalf("CompileFilter(%q) failed: %v", tt.source, err)
			}

			got, err := f.Apply(set)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileFilter_Errors(t *testing.T) {
	for _, src := range []string{`domain ==`, `user`, `unknown == "x"`} {
		t.Run(src, func(t *testing.T) {
			if _, err := CompileFilter(src); !errors.Is(err, ErrFilterCompile) {
				t.Errorf("expected ErrFilterCompile, got %v", err)
			}
		})
	}
}

func TestFilter_ApplyError(t *testing.T) {
	f, err := CompileFilter(`int(user) > 0`)
	if err != nil {
		t.Fatalf("CompileFilter failed: %v", err)
	}

	if _, err := f.Apply(NewSet("alice@x.com")); !errors.Is(err, ErrFilterEvaluate) {
		t.Errorf("expected ErrFilterEvaluate, got %v", err)
	}
}

func TestFilter_NilKeepsAll(t *testing.T) {
	var f *Filter

	set := NewSet("a@x.com")

	got, err := f.Apply(set)
	if err != nil || !got.Equal(set) {
		t.Errorf("got %v, %v", got, err)
	}
}
