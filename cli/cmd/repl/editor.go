package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-load-retry loop. It
// writes the committed definitions to a temp file, opens the user's editor
// and loads the result. On error the user is prompted to re-edit.
//
// Loading only adds and redefines lists; deleting a definition from the file
// does not remove the list.
type editCommand struct {
	session   *Session
	ctxFunc   func() context.Context
	logger    log.Logger
	loaded    int
	cancelled bool
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-load-retry loop. If the user declines to re-edit
// after an error, it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()
	eval := c.session.Evaluator()

	var sb strings.Builder
	if err := eval.Save(ctx, &sb); err != nil {
		return err
	}

	original := sb.String()
	content := original

	f, err := os.CreateTemp(os.TempDir(), "maillist-*.lists")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		content = string(data)

		if strings.TrimSpace(content) == "" || content == original {
			c.cancelled = true

			return nil
		}

		before := eval.Registry().Snapshot()
		loadErr := eval.Load(ctx, strings.NewReader(content))

		c.logger.TraceContext(ctx, "editor load attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.loaded = changed(before, eval.Registry().Snapshot())

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", FormatError(loadErr))
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// changed counts the definitions in after that differ from before.
func changed(before, after lang.Snapshot) int {
	prior := make(map[string]string, len(before))
	for _, e := range before {
		prior[e.Name] = e.Body
	}

	n := 0

	for _, e := range after {
		if body, ok := prior[e.Name]; !ok || body != e.Body {
			n++
		}
	}

	return n
}

// runEditor launches the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
