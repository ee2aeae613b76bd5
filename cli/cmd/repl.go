package cmd

import (
	"context"

	"github.com/ardnew/maillist/cli/cmd/repl"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/pkg"
)

// Repl starts an interactive console over a list registry.
type Repl struct {
	Plain bool   `help:"Read plain lines even on a terminal"`
	Save  string `help:"Save the registry to a file or redis:// URL on exit" placeholder:"TARGET"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := newEvaluator(ctx, nil)
	if err != nil {
		return err
	}

	cache := pkg.CacheDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cache = dir
		}
	}

	err = repl.Run(ctx, repl.NewSession(e, log.Default()),
		repl.WithPlain(r.Plain),
		repl.WithHistoryDir(cache),
		repl.WithIO(inputFrom(ctx), outputFrom(ctx)),
	)
	if err != nil {
		return err
	}

	if r.Save != "" {
		return save(ctx, e, r.Save)
	}

	return nil
}
