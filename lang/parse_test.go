package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // rendered expression
	}{
		{"empty", "", ""},
		{"whitespace", "  \t\n ", ""},
		{"email", "bob@mit.edu", "bob@mit.edu"},
		{"name", "staff", "staff"},
		{"uppercase", "Bob@MIT.EDU, Staff", "bob@mit.edu, staff"},
		{"union", "a, b, c", "a, b, c"},
		{"intersection binds tighter", "a, b * c", "a, b * c"},
		{"difference binds tighter than union", "a, b ! c", "a, b ! c"},
		{"intersection binds tighter than difference", "a ! b * c", "a ! b * c"},
		{"grouping", "(a, b) * c", "(a, b) * c"},
		{"difference left assoc", "a ! b ! c", "a ! b ! c"},
		{"difference grouped right", "a ! (b ! c)", "a ! (b ! c)"},
		{"sequence", "a; b; c", "a; b; c"},
		{"grouped sequence", "(a; b), c", "(a; b), c"},
		{"definition value", "x = a, b", "a, b"},
		{"empty operand", "a,", "a,"},
		{"empty group", "()", ""},
		{"plus in user", "a+tag@x.com", "a+tag@x.com"},
		{"dotted name", "team.ops-1_x", "team.ops-1_x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}

			x, err := Build(n, nil)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			if got := x.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Definition(t *testing.T) {
	n, err := Parse("Staff = Alice@X.com, (bob@x.com ! Carol)  ; staff")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if n.Kind != KindSequence {
		t.Fatalf("expected sequence, got %v", n.Kind)
	}

	def := n.Left
	if def.Kind != KindDefinition {
		t.Fatalf("expected definition, got %v", def.Kind)
	}

	if def.Text != "staff" {
		t.Errorf("expected name staff, got %q", def.Text)
	}

	if want := "alice@x.com, (bob@x.com ! carol)"; def.Body != want {
		t.Errorf("expected body %q, got %q", want, def.Body)
	}

	if def.Right.Kind != KindUnion {
		t.Errorf("expected union right-hand side, got %v", def.Right.Kind)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		fragment string
		reason   string
	}{
		{"unclosed group", "a = (b", 1, 7, "", "expected ')'"},
		{"adjacent operands", "x@y.com y@z.com", 1, 9, "y@z.com", "unexpected"},
		{"bad address", "bad@", 1, 1, "bad@", "invalid address"},
		{"double at", "a@b@c", 1, 1, "a@b@c", "invalid address"},
		{"plus in name", "a+b", 1, 1, "a+b", "invalid list name"},
		{"plus in defined name", "Foo+Bar = x@y.com", 1, 1, "Foo+Bar", "invalid list name"},
		{"illegal character", "a # b", 1, 3, "#", "unexpected"},
		{"chained definition", "a = b = c", 1, 7, "=", "unexpected"},
		{"stray paren", ")", 1, 1, ")", "unexpected"},
		{"second line", "a = x@y.com;\nb = (c", 2, 7, "", "expected ')'"},
		{"found instead", "(a b)", 1, 4, "b", "expected ')', found"},
		{"address defined", "x@y.com = a", 1, 9, "=", "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if se.Line != tt.line || se.Column != tt.column {
				t.Errorf("expected %d:%d, got %d:%d", tt.line, tt.column, se.Line, se.Column)
			}

			if se.Fragment != tt.fragment {
				t.Errorf("expected fragment %q, got %q", tt.fragment, se.Fragment)
			}

			if se.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, se.Reason)
			}
		})
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	_, err := Parse("a, b #")

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	want := "  1 | a, b #\n" + strings.Repeat(" ", 6+5) + "^\n"
	if got := se.Snippet(); got != want {
		t.Errorf("snippet mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	if msg := se.Error(); !strings.Contains(msg, `1:6: unexpected "#"`) {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestKind_String(t *testing.T) {
	if KindDefinition.String() != "definition" {
		t.Errorf("got %q", KindDefinition.String())
	}

	if Kind(99).String() != "unknown" {
		t.Errorf("got %q", Kind(99).String())
	}
}
