package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/maillist/lang"
)

func writeSource(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	search := t.TempDir()

	direct := writeSource(t, dir, "direct.lists", "a = x@y.com;\n")
	writeSource(t, search, "found.lists", "b = x@y.com;\n")

	t.Setenv(SearchPathEnv, search)

	tests := []struct {
		name    string
		src     string
		want    string
		wantErr bool
	}{
		{name: "existing path", src: direct, want: direct},
		{name: "file url", src: "file://" + direct, want: direct},
		{name: "search path", src: "found.lists", want: filepath.Join(search, "found.lists")},
		{name: "missing", src: "missing.lists", wantErr: true},
		{name: "directory", src: dir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSource(tt.src)
			if tt.wantErr {
				if !errors.Is(err, ErrSourceNotFound) {
					t.Errorf("expected ErrSourceNotFound, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("resolveSource(%q) failed: %v", tt.src, err)
			}

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadSources_Deduplicates(t *testing.T) {
	dir := t.TempDir()

	// Loading twice would extend the list a second time.
	path := writeSource(t, dir, "staff.lists", "staff = staff, b@y.com;\n")

	link := filepath.Join(dir, "link.lists")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	ctx := WithIO(context.Background(), strings.NewReader("admins = a@y.com;\n"), nil)

	e := lang.NewEvaluator()
	if err := loadSources(ctx, e, []string{path, link, "-", "-"}); err != nil {
		t.Fatalf("loadSources failed: %v", err)
	}

	if got, want := e.Registry().Lookup("staff"), "(), b@y.com"; got != want {
		t.Errorf("staff: got %q, want %q", got, want)
	}

	if got, want := e.Registry().Lookup("admins"), "a@y.com"; got != want {
		t.Errorf("admins: got %q, want %q", got, want)
	}
}

func TestLoadSources_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.lists", "a = b;\nb = a;\n")

	tests := []struct {
		name   string
		source string
		target error
	}{
		{"missing file", filepath.Join(dir, "missing.lists"), ErrSourceNotFound},
		{"mail loop", bad, lang.ErrMailLoop},
		{"bad store url", "redis://localhost:port", ErrLoadSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loadSources(context.Background(), lang.NewEvaluator(), []string{tt.source})
			if !errors.Is(err, ErrLoadSource) {
				t.Errorf("expected ErrLoadSource, got %v", err)
			}

			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestNewEvaluator_ContextOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "chain.lists", "a = b; b = c; c = x@y.com;\n")

	ctx := WithSources(context.Background(), []string{path})
	ctx = WithEvaluatorOptions(ctx, lang.WithMaxDepth(1))

	e, err := newEvaluator(ctx, nil)
	if err != nil {
		t.Fatalf("newEvaluator failed: %v", err)
	}

	if e.Registry().Len() != 3 {
		t.Fatalf("expected 3 lists, got %v", e.Registry().Names())
	}

	if _, err := e.Evaluate(ctx, "a"); !errors.Is(err, lang.ErrMaxDepthExceeded) {
		t.Errorf("expected ErrMaxDepthExceeded, got %v", err)
	}
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "saved.lists")

	e := lang.NewEvaluator()
	if _, err := e.Evaluate(ctx, "staff = a@y.com, b@y.com"); err != nil {
		t.Fatal(err)
	}

	if err := save(ctx, e, target); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(data, []byte("staff = a@y.com, b@y.com;")) {
		t.Errorf("unexpected saved text %q", data)
	}

	if err := save(ctx, e, ""); !errors.Is(err, ErrSave) {
		t.Errorf("expected ErrSave, got %v", err)
	}
}
