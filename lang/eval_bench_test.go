package lang

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func benchmarkEvaluator(b *testing.B, lists int) *Evaluator {
	b.Helper()

	stmts := make([]string, 0, lists)
	for i := range lists {
		if i == 0 {
			stmts = append(stmts, "l0 = user0@x.com")

			continue
		}

		stmts = append(stmts, fmt.Sprintf("l%d = l%d, user%d@x.com", i, i-1, i))
	}

	e := NewEvaluator()
	if _, err := e.Evaluate(context.Background(), strings.Join(stmts, "; ")); err != nil {
		b.Fatalf("setup failed: %v", err)
	}

	return e
}

func BenchmarkEvaluate_Chain(b *testing.B) {
	for _, n := range []int{10, 50, 100} {
		b.Run(fmt.Sprintf("lists=%d", n), func(b *testing.B) {
			e := benchmarkEvaluator(b, n)
			input := fmt.Sprintf("l%d ! user0@x.com", n-1)

			b.ResetTimer()

			for b.Loop() {
				if _, err := e.Evaluate(context.Background(), input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkClosure(b *testing.B) {
	for _, n := range []int{10, 100} {
		direct := make(map[string][]string, n)
		for i := range n {
			direct[fmt.Sprintf("l%d", i)] = []string{fmt.Sprintf("l%d", i+1)}
		}

		b.Run(fmt.Sprintf("chain=%d", n), func(b *testing.B) {
			for b.Loop() {
				if _, err := Closure(direct); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLoad_Chain(b *testing.B) {
	for _, n := range []int{100, 300} {
		var text strings.Builder
		for i := range n {
			fmt.Fprintf(&text, "l%d = l%d, user%d@x.com;\n", i, i+1, i)
		}

		b.Run(fmt.Sprintf("lists=%d", n), func(b *testing.B) {
			for b.Loop() {
				e := NewEvaluator()
				if err := e.Load(context.Background(), strings.NewReader(text.String())); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	src := "staff = a@x.com, b@x.com; admins = c@x.com; (staff, admins) ! b@x.com * staff"

	for b.Loop() {
		if _, err := Parse(src); err != nil {
			b.Fatal(err)
		}
	}
}
