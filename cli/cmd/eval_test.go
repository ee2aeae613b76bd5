package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/pkg"
)

func runEval(t *testing.T, e *Eval, stdin string, sources ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithIO(context.Background(), strings.NewReader(stdin), &out)
	ctx = WithSources(ctx, sources)

	err := e.Run(ctx)

	return out.String(), err
}

func TestEvalRun(t *testing.T) {
	dir := t.TempDir()
	lists := writeSource(t, dir, "team.lists", strings.Join([]string{
		"staff = alice@x.com, bob@y.com;",
		"admins = bob@y.com;",
	}, "\n"))

	tests := []struct {
		name  string
		eval  Eval
		stdin string
		want  string
	}{
		{
			name: "single expression",
			eval: Eval{Expression: []string{"staff"}},
			want: "alice@x.com, bob@y.com\n",
		},
		{
			name: "each argument",
			eval: Eval{Expression: []string{"staff ! admins", "admins"}},
			want: "alice@x.com\nbob@y.com\n",
		},
		{
			name: "definitions persist across arguments",
			eval: Eval{Expression: []string{"ops = carol@z.com", "ops, admins"}},
			want: "carol@z.com\nbob@y.com, carol@z.com\n",
		},
		{
			name: "where",
			eval: Eval{Expression: []string{"staff"}, Where: `domain == "x.com"`},
			want: "alice@x.com\n",
		},
		{
			name:  "stdin lines",
			eval:  Eval{},
			stdin: "admins\n\n  staff * admins  \n",
			want:  "bob@y.com\nbob@y.com\n",
		},
		{
			name: "empty result",
			eval: Eval{Expression: []string{"nobody"}},
			want: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runEval(t, &tt.eval, tt.stdin, lists)
			if err != nil {
				t.Fatalf("Eval.Run() failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalRun_JSON(t *testing.T) {
	got, err := runEval(t, &Eval{
		Expression: []string{"c@x.com, a@x.com"},
		Format:     "json",
	}, "")
	if err != nil {
		t.Fatalf("Eval.Run() failed: %v", err)
	}

	var addrs []string
	if err := json.Unmarshal([]byte(got), &addrs); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}

	if !slices.Equal(addrs, []string{"a@x.com", "c@x.com"}) {
		t.Errorf("got %v", addrs)
	}
}

func TestEvalRun_YAML(t *testing.T) {
	got, err := runEval(t, &Eval{
		Expression: []string{"a@x.com, b@x.com"},
		Format:     "yaml",
		Indent:     2,
	}, "")
	if err != nil {
		t.Fatalf("Eval.Run() failed: %v", err)
	}

	for _, want := range []string{"- a@x.com", "- b@x.com"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestEvalRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		eval   Eval
		target error
	}{
		{"syntax", Eval{Expression: []string{"a b"}}, lang.ErrSyntax},
		{"mail loop", Eval{Expression: []string{"a = b; b = a"}}, lang.ErrMailLoop},
		{"bad filter", Eval{Expression: []string{"a"}, Where: "domain =="}, lang.ErrFilterCompile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runEval(t, &tt.eval, "")
			if !errors.Is(err, ErrEvaluate) {
				t.Errorf("expected ErrEvaluate, got %v", err)
			}

			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestEvalRun_InvalidFormat(t *testing.T) {
	_, err := runEval(t, &Eval{Expression: []string{"alice@x.com"}, Format: "xml"}, "")
	if !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}

	if !errors.Is(err, pkg.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestEvalRun_Save(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.lists")

	_, err := runEval(t, &Eval{
		Expression: []string{"staff = a@x.com", "admins = staff, b@x.com"},
		Save:       target,
	}, "")
	if err != nil {
		t.Fatalf("Eval.Run() failed: %v", err)
	}

	got, err := runEval(t, &Eval{Expression: []string{"admins"}}, "", target)
	if err != nil {
		t.Fatalf("Eval.Run() failed: %v", err)
	}

	if want := "a@x.com, b@x.com\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
