package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/maillist/pkg"
)

// Report describes one list: its definition, dependencies and current
// recipients.
type Report struct {
	Name         string   `json:"name"         yaml:"name"`
	Body         string   `json:"body"         yaml:"body"`
	Defined      bool     `json:"defined"      yaml:"defined"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
	Recipients   Set      `json:"recipients"   yaml:"recipients"`
}

// Describe reports on the named list. Undefined names are described with
// Defined false and no recipients.
func (e *Evaluator) Describe(ctx context.Context, name string) (Report, error) {
	set, err := e.Expand(ctx, name)
	if err != nil {
		return Report{}, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	body := e.registry.View().Lookup(name)

	deps := e.registry.Dependencies(name)
	if deps == nil {
		deps = []string{}
	}

	return Report{
		Name:         name,
		Body:         body,
		Defined:      slices.Contains(e.registry.Names(), name),
		Dependencies: deps,
		Recipients:   set,
	}, nil
}

// Reports describes every defined list in name order.
func (e *Evaluator) Reports(ctx context.Context) ([]Report, error) {
	names := e.registry.Names()
	out := make([]Report, 0, len(names))

	for _, name := range names {
		r, err := e.Describe(ctx, name)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}

// Format writes the registry in native list syntax: one definition per line
// if indent is positive, a single line otherwise.
func (e *Evaluator) Format(ctx context.Context, w io.Writer, indent int) error {
	if indent > 0 {
		return e.Save(ctx, w)
	}

	snap := e.registry.Snapshot()
	stmts := make([]string, 0, len(snap))

	for _, ent := range snap {
		stmts = append(stmts, ent.Name+" = "+ent.Body)
	}

	_, err := fmt.Fprintln(w, strings.Join(stmts, "; "))
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// FormatJSON writes a report of every list as JSON.
func (e *Evaluator) FormatJSON(ctx context.Context, w io.Writer, indent int) error {
	reports, err := e.Reports(ctx)
	if err != nil {
		return err
	}

	return WriteJSON(w, reports, indent)
}

// FormatYAML writes a report of every list as YAML.
func (e *Evaluator) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	reports, err := e.Reports(ctx)
	if err != nil {
		return err
	}

	return WriteYAML(ctx, w, reports, indent)
}

// WriteJSON writes v as JSON, indented by indent spaces if positive.
func WriteJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(pkg.ErrJSONMarshal.Wrap(err))
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// WriteYAML writes v as YAML, in block style indented by indent spaces if
// positive and in flow style otherwise.
func WriteYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return ErrWriteOutput.Wrap(pkg.ErrYAMLMarshal.Wrap(err))
	}

	if _, err = fmt.Fprint(w, string(data)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
