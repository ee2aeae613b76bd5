package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax           = NewError("syntax error")
	ErrMailLoop         = NewError("mail loop detected")
	ErrInvalidRecipient = NewError("invalid recipient")
	ErrInvalidName      = NewError("invalid list name")
	ErrMaxDepthExceeded = NewError("maximum resolution depth exceeded")
	ErrReadInput        = NewError("failed to read input")
	ErrWriteOutput      = NewError("failed to write output")
	ErrFilterCompile    = NewError("filter compilation failed")
	ErrFilterEvaluate   = NewError("filter evaluation failed")
	ErrInternal         = NewError("internal error")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
// Errors derived with [Error.Wrap] or [Error.With] match their origin.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg && t.err == nil
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// SyntaxError reports input that does not conform to the list grammar.
type SyntaxError struct {
	Position

	Fragment string // offending text, empty at end of input
	Reason   string
	Source   string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var b strings.Builder

	b.WriteString("syntax error at ")
	b.WriteString(e.Position.String())
	b.WriteString(": ")
	b.WriteString(e.Reason)

	if e.Fragment != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Fragment))
	} else {
		b.WriteString(" at end of input")
	}

	return b.String()
}

// Is makes a SyntaxError match [ErrSyntax].
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Snippet renders the offending source line with a caret under the error
// column, or the empty string if the position is out of range.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line <= 0 || e.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Line)

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[e.Line-1])
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(num)+5+max(e.Column-1, 0)))
	b.WriteString("^\n")

	return b.String()
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.String("reason", e.Reason),
		slog.String("fragment", e.Fragment),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	)
}

// MailLoopError reports a list that transitively depends on itself.
type MailLoopError struct {
	Name  string
	Cycle []string // Name first and last, e.g. [a b a]
}

// Error implements the error interface.
func (e *MailLoopError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrMailLoop.msg + ": " + e.Name
	}

	return ErrMailLoop.msg + ": " + strings.Join(e.Cycle, " -> ")
}

// Is makes a MailLoopError match [ErrMailLoop].
func (e *MailLoopError) Is(target error) bool { return target == ErrMailLoop }

// LogValue implements slog.LogValuer.
func (e *MailLoopError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrMailLoop.msg),
		slog.String("name", e.Name),
		slog.String("cycle", strings.Join(e.Cycle, " -> ")),
	)
}
