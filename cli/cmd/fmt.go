package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/maillist/lang"
)

// Fmt loads list definitions and writes the registry in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native list definitions (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON reports."`
	YAML   YAML   `cmd:""                    help:"Format as YAML reports."`
}

// Native formats the registry as native list definitions.
type Native struct {
	Indent int `default:"2" help:"Write one definition per line if positive" short:"i"`

	Sources []string `arg:"" help:"Source files, store URLs or '-' for stdin." name:"source" optional:""`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) error {
	return format(ctx, "native", f.Sources, func(e *lang.Evaluator, w io.Writer) error {
		return e.Format(ctx, w, f.Indent)
	})
}

// JSON formats the registry as a JSON array of list reports.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Sources []string `arg:"" help:"Source files, store URLs or '-' for stdin." name:"source" optional:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return format(ctx, "json", j.Sources, func(e *lang.Evaluator, w io.Writer) error {
		return e.FormatJSON(ctx, w, j.Indent)
	})
}

// YAML formats the registry as a YAML sequence of list reports.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Sources []string `arg:"" help:"Source files, store URLs or '-' for stdin." name:"source" optional:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return format(ctx, "yaml", y.Sources, func(e *lang.Evaluator, w io.Writer) error {
		return e.FormatYAML(ctx, w, y.Indent)
	})
}

func format(
	ctx context.Context,
	name string,
	sources []string,
	write func(*lang.Evaluator, io.Writer) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := newEvaluator(ctx, sources)
	if err != nil {
		return err
	}

	if err := write(e, outputFrom(ctx)); err != nil {
		return ErrFormat.With(slog.String("format", name)).Wrap(err)
	}

	return nil
}
