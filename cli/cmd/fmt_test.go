package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const fmtFixture = "staff = alice@x.com, bob@x.com;\nall = staff, carol@x.com;\n"

func TestFmtRun(t *testing.T) {
	path := writeSource(t, t.TempDir(), "fmt.lists", fmtFixture)

	tests := []struct {
		name  string
		run   func(context.Context) error
		check func(t *testing.T, out string)
	}{
		{
			name: "native multi-line",
			run:  (&Native{Indent: 2, Sources: []string{path}}).Run,
			check: func(t *testing.T, out string) {
				want := "all = staff, carol@x.com;\nstaff = alice@x.com, bob@x.com;\n"
				if out != want {
					t.Errorf("got %q, want %q", out, want)
				}
			},
		},
		{
			name: "native single line",
			run:  (&Native{Sources: []string{path}}).Run,
			check: func(t *testing.T, out string) {
				want := "all = staff, carol@x.com; staff = alice@x.com, bob@x.com\n"
				if out != want {
					t.Errorf("got %q, want %q", out, want)
				}
			},
		},
		{
			name: "json",
			run:  (&JSON{Indent: 2, Sources: []string{path}}).Run,
			check: func(t *testing.T, out string) {
				var reports []struct {
					Name       string   `json:"name"`
					Recipients []string `json:"recipients"`
				}
				if err := json.Unmarshal([]byte(out), &reports); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}

				if len(reports) != 2 || reports[0].Name != "all" || len(reports[0].Recipients) != 3 {
					t.Errorf("unexpected reports %+v", reports)
				}
			},
		},
		{
			name: "yaml",
			run:  (&YAML{Indent: 2, Sources: []string{path}}).Run,
			check: func(t *testing.T, out string) {
				for _, want := range []string{"name: all", "name: staff", "carol@x.com"} {
					if !strings.Contains(out, want) {
						t.Errorf("output missing %q:\n%s", want, out)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			if err := tt.run(WithIO(context.Background(), nil, &out)); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			tt.check(t, out.String())
		})
	}
}

func TestFmtRun_Stdin(t *testing.T) {
	var out bytes.Buffer

	ctx := WithIO(context.Background(), strings.NewReader("b = x@y.com; a = b"), &out)

	if err := (&Native{Indent: 2, Sources: []string{"-"}}).Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if want := "a = b;\nb = x@y.com;\n"; out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestFmtRun_MissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.lists")

	err := (&JSON{Sources: []string{missing}}).Run(context.Background())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}
