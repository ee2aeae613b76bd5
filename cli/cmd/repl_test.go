package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReplRun_Plain(t *testing.T) {
	target := filepath.Join(t.TempDir(), "repl.lists")

	var out bytes.Buffer

	in := strings.NewReader("staff = a@x.com, b@x.com\n!list\nstaff ! a@x.com\n!quit\nignored\n")
	ctx := WithIO(context.Background(), in, &out)

	if err := (&Repl{Plain: true, Save: target}).Run(ctx); err != nil {
		t.Fatalf("Repl.Run() failed: %v", err)
	}

	for _, want := range []string{
		"a@x.com, b@x.com",
		"staff = a@x.com, b@x.com",
		"b@x.com",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}

	if want := "staff = a@x.com, b@x.com;\n"; string(data) != want {
		t.Errorf("saved %q, want %q", data, want)
	}
}
