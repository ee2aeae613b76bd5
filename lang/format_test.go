package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func formatFixture(t *testing.T) *Evaluator {
	t.Helper()

	e := NewEvaluator()
	evaluate(t, e, "staff = alice@x.com, bob@x.com; admins = bob@x.com; ops = staff ! admins")

	return e
}

func TestDescribe(t *testing.T) {
	e := formatFixture(t)

	r, err := e.Describe(context.Background(), "OPS")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if r.Name != "ops" || !r.Defined || r.Body != "staff ! admins" {
		t.Errorf("unexpected report %+v", r)
	}

	if !slices.Equal(r.Dependencies, []string{"admins", "staff"}) {
		t.Errorf("unexpected dependencies %v", r.Dependencies)
	}

	if r.Recipients.String() != "alice@x.com" {
		t.Errorf("unexpected recipients %v", r.Recipients)
	}

	missing, err := e.Describe(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if missing.Defined || missing.Recipients.Len() != 0 || missing.Dependencies == nil {
		t.Errorf("unexpected report for undefined list %+v", missing)
	}
}

func TestFormat_Native(t *testing.T) {
	e := formatFixture(t)

	tests := []struct {
		indent int
		want   string
	}{
		{0, "admins = bob@x.com; ops = staff ! admins; staff = alice@x.com, bob@x.com\n"},
		{2, "admins = bob@x.com;\nops = staff ! admins;\nstaff = alice@x.com, bob@x.com;\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := e.Format(context.Background(), &buf, tt.indent); err != nil {
			t.Fatalf("Format failed: %v", err)
		}

		if buf.String() != tt.want {
			t.Errorf("indent %d: got %q, want %q", tt.indent, buf.String(), tt.want)
		}

		// Both forms load back into the same registry.
		dst := NewEvaluator()
		if err := dst.Load(context.Background(), &buf); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if !slices.Equal(dst.Registry().Names(), e.Registry().Names()) {
			t.Errorf("indent %d: loaded %v", tt.indent, dst.Registry().Names())
		}
	}
}

func TestFormat_JSON(t *testing.T) {
	e := formatFixture(t)

	var buf bytes.Buffer
	if err := e.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatalf("FormatJSON failed: %v", err)
	}

	var reports []struct {
		Name         string   `json:"name"`
		Defined      bool     `json:"defined"`
		Dependencies []string `json:"dependencies"`
		Recipients   []string `json:"recipients"`
	}

	if err := json.Unmarshal(buf.Bytes(), &reports); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(reports) != 3 || reports[1].Name != "ops" {
		t.Fatalf("unexpected reports %+v", reports)
	}

	if !slices.Equal(reports[2].Recipients, []string{"alice@x.com", "bob@x.com"}) {
		t.Errorf("unexpected recipients %v", reports[2].Recipients)
	}
}

func TestFormat_YAML(t *testing.T) {
	e := formatFixture(t)

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := e.FormatYAML(context.Background(), &buf, indent); err != nil {
			t.Fatalf("FormatYAML failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"name: staff", "alice@x.com", "defined: true"} {
			if !strings.Contains(out, want) {
				t.Errorf("indent %d: expected %q in:\n%s", indent, want, out)
			}
		}
	}
}
