package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment a filter predicate is evaluated in.
type filterEnv struct {
	Address string `expr:"address"`
	User    string `expr:"user"`
	Domain  string `expr:"domain"`
}

// Filter is a compiled recipient predicate.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles an expr-lang boolean expression over the variables
// address, user and domain, for example:
//
//	domain == "mit.edu" && !(user startsWith "test")
func CompileFilter(source string) (*Filter, error) {
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).With(slog.String("source", source))
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string { return f.source }

// Apply returns the recipients of s for which the predicate holds.
// A nil filter keeps everything.
func (f *Filter) Apply(s Set) (Set, error) {
	if f == nil {
		return s, nil
	}

	keep := make([]Recipient, 0, s.Len())

	for _, r := range s.Sorted() {
		out, err := expr.Run(f.program, filterEnv{
			Address: string(r),
			User:    r.User(),
			Domain:  r.Domain(),
		})
		if err != nil {
			return Set{}, ErrFilterEvaluate.Wrap(err).With(
				slog.String("source", f.source),
				slog.String("address", string(r)),
			)
		}

		if ok, _ := out.(bool); ok {
			keep = append(keep, r)
		}
	}

	return NewSet(keep...), nil
}
