package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/pkg"
)

// Eval evaluates list expressions and prints the resulting recipients.
type Eval struct {
	Expression []string `arg:"" help:"List expressions to evaluate, or one per line from stdin if omitted" name:"expression" optional:""`

	Where  string `help:"Keep only recipients matching this predicate over address, user and domain" short:"w"`
	Format string `default:"text" enum:"text,json,yaml" help:"Output format"                               short:"o"`
	Indent int    `default:"0"                          help:"Indent width for json and yaml output"       short:"i"`
	Save   string `help:"Save the registry to a file or redis:// URL when done" placeholder:"TARGET"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var filter *lang.Filter

	if e.Where != "" {
		filter, err = lang.CompileFilter(e.Where)
		if err != nil {
			return ErrEvaluate.With(slog.String("where", e.Where)).Wrap(err)
		}
	}

	ev, err := newEvaluator(ctx, nil)
	if err != nil {
		return err
	}

	out := outputFrom(ctx)

	each := func(input string) error {
		set, err := ev.EvaluateWhere(ctx, input, filter)
		if err != nil {
			return ErrEvaluate.With(slog.String("input", input)).Wrap(err)
		}

		if err := writeSet(ctx, out, set, e.Format, e.Indent); err != nil {
			return ErrFormat.With(slog.String("format", e.Format)).Wrap(err)
		}

		return nil
	}

	if len(e.Expression) > 0 {
		for _, input := range e.Expression {
			if err := each(input); err != nil {
				return err
			}
		}
	} else if err := eachLine(inputFrom(ctx), each); err != nil {
		return err
	}

	if e.Save != "" {
		return save(ctx, ev, e.Save)
	}

	return nil
}

// eachLine calls fn with every non-blank line read from r.
func eachLine(r io.Reader, fn func(string) error) error {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}

		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scan.Err(); err != nil {
		return pkg.ErrReadInput.Wrap(err)
	}

	return nil
}

func writeSet(ctx context.Context, w io.Writer, set lang.Set, format string, indent int) error {
	switch format {
	case "json":
		return lang.WriteJSON(w, set, indent)

	case "yaml":
		return lang.WriteYAML(ctx, w, set, indent)

	case "", "text":
		_, err := fmt.Fprintln(w, set.String())

		return err

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (want text, json or yaml)", format)
	}
}
