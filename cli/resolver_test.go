package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_Values(t *testing.T) {
	config := strings.Join([]string{
		"log_level: debug",
		"log-format: text",
		"max_depth: 64",
		"pretty: false",
		"ratio: 0.5",
		"source:",
		"  - a.lists",
		"  - redis://localhost:6379/0",
	}, "\n")

	r, err := resolve(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log_level", "debug"},
		{"log-format", "text"},
		{"max-depth", "64"},
		{"pretty", false},
		{"ratio", "0.5"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := resolveFlag(t, r, tt.flag); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	src, ok := resolveFlag(t, r, "source").([]string)
	if !ok || !slices.Equal(src, []string{"a.lists", "redis://localhost:6379/0"}) {
		t.Errorf("unexpected source %#v", resolveFlag(t, r, "source"))
	}
}

func TestResolve_InvalidConfig(t *testing.T) {
	for _, config := range []string{"", "- not\n- a mapping", "key: [unclosed"} {
		r, err := resolve(strings.NewReader(config))
		if err != nil {
			t.Fatalf("resolve(%q) failed: %v", config, err)
		}

		if got := resolveFlag(t, r, "key"); got != nil {
			t.Errorf("resolve(%q): expected no value, got %#v", config, got)
		}

		if err := r.Validate(nil); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	}
}

// TestResolve_ReadError verifies error handling for read failures.
func TestResolve_ReadError(t *testing.T) {
	_, err := resolve(&errorReader{err: bytes.ErrTooLarge})
	if err == nil {
		t.Error("expected read error")
	}
}

// errorReader is a reader that always returns an error.
type errorReader struct {
	err error
}

func (e *errorReader) Read([]byte) (n int, err error) {
	return 0, e.err
}
