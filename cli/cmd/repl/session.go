package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/store"
)

// metaCommands are the console commands, all starting with '!'.
var metaCommands = []string{"!deps", "!edit", "!help", "!list", "!load", "!quit", "!save"}

func helpMessage() string {
	return `Commands:

  !load <target>  Load definitions from a file or redis:// URL
  !save <target>  Save all definitions to a file or redis:// URL
  !list           List defined lists
  !deps <name>    Show the lists a list depends on
  !edit           Edit all definitions in $EDITOR
  !help           Print this help
  !quit           Exit (an empty line also exits)

Any other line is evaluated as a list expression:

  staff = alice@mit.edu, bob@mit.edu
  admins = bob@mit.edu; staff ! admins
  (staff, admins) * bob@mit.edu`
}

// Response is the result of executing one console line.
type Response struct {
	// Output is the text to show, without a trailing newline.
	Output string
	Err    error
	Quit   bool
	// Edit asks an interactive front end to open the definitions in an
	// editor.
	Edit bool
}

// Session executes console lines against an evaluator.
type Session struct {
	eval   *lang.Evaluator
	logger log.Logger
}

// NewSession returns a Session evaluating with e.
func NewSession(e *lang.Evaluator, logger log.Logger) *Session {
	return &Session{eval: e, logger: logger}
}

// Evaluator returns the session's evaluator.
func (s *Session) Evaluator() *lang.Evaluator { return s.eval }

// Execute runs one line: a meta-command if it starts with '!', an
// expression otherwise. An empty line ends the session.
func (s *Session) Execute(ctx context.Context, line string) Response {
	line = strings.TrimSpace(line)
	if line == "" {
		return Response{Quit: true}
	}

	if strings.HasPrefix(line, "!") {
		return s.meta(ctx, line)
	}

	set, err := s.eval.Evaluate(ctx, line)
	if err != nil {
		return Response{Err: err}
	}

	return Response{Output: set.String()}
}

func (s *Session) meta(ctx context.Context, line string) Response {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	s.logger.TraceContext(ctx, "repl command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "!quit", "!q", "!exit":
		return Response{Quit: true}

	case "!help", "!h":
		return Response{Output: helpMessage()}

	case "!list", "!l":
		return Response{Output: s.list()}

	case "!edit", "!e":
		return Response{Edit: true}

	case "!deps":
		if len(args) != 1 {
			return Response{Err: ErrUsage.Wrap(errors.New("!deps <name>"))}
		}

		return s.deps(ctx, args[0])

	case "!load":
		if len(args) != 1 {
			return Response{Err: ErrUsage.Wrap(errors.New("!load <target>"))}
		}

		return s.load(ctx, args[0])

	case "!save":
		if len(args) != 1 {
			return Response{Err: ErrUsage.Wrap(errors.New("!save <target>"))}
		}

		return s.save(ctx, args[0])

	default:
		return Response{Err: ErrUnknownCommand.Wrap(fmt.Errorf("%s (try !help)", cmd))}
	}
}

func (s *Session) list() string {
	snap := s.eval.Registry().Snapshot()
	if len(snap) == 0 {
		return "(no lists)"
	}

	lines := make([]string, 0, len(snap))
	for _, ent := range snap {
		lines = append(lines, ent.Name+" = "+ent.Body)
	}

	return strings.Join(lines, "\n")
}

func (s *Session) deps(ctx context.Context, name string) Response {
	report, err := s.eval.Describe(ctx, name)
	if err != nil {
		return Response{Err: err}
	}

	if !report.Defined {
		return Response{Output: report.Name + " is not defined"}
	}

	if len(report.Dependencies) == 0 {
		return Response{Output: report.Name + " has no dependencies"}
	}

	return Response{Output: report.Name + ": " + strings.Join(report.Dependencies, ", ")}
}

func (s *Session) load(ctx context.Context, target string) Response {
	st, err := store.Open(ctx, target)
	if err != nil {
		return Response{Err: err}
	}
	defer st.Close()

	before := s.eval.Registry().Len()

	if err := store.Restore(ctx, st, s.eval); err != nil {
		return Response{Err: err}
	}

	return Response{Output: fmt.Sprintf("loaded %s (%d lists, %d new)",
		target, s.eval.Registry().Len(), s.eval.Registry().Len()-before)}
}

func (s *Session) save(ctx context.Context, target string) Response {
	st, err := store.Open(ctx, target)
	if err != nil {
		return Response{Err: err}
	}
	defer st.Close()

	if err := store.Persist(ctx, st, s.eval); err != nil {
		return Response{Err: err}
	}

	return Response{Output: fmt.Sprintf("saved %d lists to %s", s.eval.Registry().Len(), target)}
}

// FormatError renders err for display, including the source snippet of a
// syntax error.
func FormatError(err error) string {
	msg := "error: " + err.Error()

	var se *lang.SyntaxError
	if errors.As(err, &se) {
		msg += "\n" + strings.TrimRight(se.Snippet(), "\n")
	}

	return msg
}
