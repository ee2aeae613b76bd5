// Package store persists list definitions outside the process.
//
// A store holds the registry's text form, the same `name = body;` statements
// accepted by [lang.Evaluator.Load], so a saved registry can be reloaded into
// any evaluator.
package store

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock Store

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/pkg"
)

// Store reads and writes the persisted text of a registry.
type Store interface {
	// Load returns the persisted text, or "" if nothing was saved yet.
	Load(ctx context.Context) (string, error)
	// Save replaces the persisted text.
	Save(ctx context.Context, text string) error
	Close() error
}

// Open returns the store named by target. URLs with a redis:// or rediss://
// scheme open a [Redis] store; anything else names a file, optionally with a
// file:// prefix.
func Open(ctx context.Context, target string) (Store, error) {
	target = strings.TrimSpace(target)

	switch {
	case target == "":
		return nil, pkg.ErrInvalidTarget.Wrapf("empty target")

	case strings.HasPrefix(target, "redis://"),
		strings.HasPrefix(target, "rediss://"):
		return OpenRedis(ctx, target)

	default:
		return NewFile(strings.TrimPrefix(target, "file://")), nil
	}
}

// Restore loads the text held by s into e.
func Restore(ctx context.Context, s Store, e *lang.Evaluator) error {
	text, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if err := e.Load(ctx, strings.NewReader(text)); err != nil {
		return err
	}

	log.DebugContext(ctx, "store restored",
		slog.Int("lists", e.Registry().Len()),
	)

	return nil
}

// Persist replaces the text held by s with the committed definitions of e.
func Persist(ctx context.Context, s Store, e *lang.Evaluator) error {
	var sb strings.Builder

	if err := e.Save(ctx, &sb); err != nil {
		return err
	}

	if err := s.Save(ctx, sb.String()); err != nil {
		return err
	}

	log.DebugContext(ctx, "store persisted",
		slog.Int("lists", e.Registry().Len()),
		slog.Int("bytes", sb.Len()),
	)

	return nil
}
