package repl

import (
	"errors"

	"github.com/ardnew/maillist/lang"
)

// Sentinel errors.
var (
	ErrOutOfBounds    = errors.New("index out of range")
	ErrEditDeclined   = errors.New("decline edit")
	ErrNotInteractive = lang.NewError("command requires an interactive terminal")
	ErrUsage          = lang.NewError("invalid command usage")
	ErrUnknownCommand = lang.NewError("unknown command")
)
