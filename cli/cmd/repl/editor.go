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

	"github.com/ardnew/larf/lang"
	"github.com/ardnew/larf/log"
	"github.com/ardnew/larf/pkg"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop.
// It writes the session source to a temp file, opens the user's editor, and
// parses the result. On a parse error the user is asked to edit again;
// declining returns [ErrEditDeclined].
type editCommand struct {
	proc    *lang.Processor
	ctxFunc func() context.Context
	logger  log.Logger
	source  string
	edited  string
	ok      bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", pkg.Name+"-repl-*.src")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	f.Close()

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(data) == "" {
			return nil
		}

		_, parseErr := c.proc.Parse(ctx, data)

		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.edited, c.ok = data, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", parseErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor opens path in $EDITOR and returns the saved content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return lang.ReadSource(f)
}
