package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Tree is a git tree object id.
type Tree string

func (t Tree) String() string { return string(t) }

// Options controls how trees are synthesized and diffed.
type Options struct {
	ContextLines   int
	FindRenames    int // similarity percent; 0 uses git's default
	Color          string
	ExitCode       bool
	AllowConflicts bool
	Include        []string
	Exclude        []string
}

// Client runs git against a single repository.
type Client struct {
	Dir     string
	Stderr  io.Writer
	Logger  *zap.Logger
	Options Options
}

// New returns a Client for the repository containing dir. An empty dir means
// the current working directory.
func New(dir string, stderr io.Writer, logger *zap.Logger, opts Options) *Client {
	if stderr == nil {
		stderr = os.Stderr
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		Dir:     dir,
		Stderr:  stderr,
		Logger:  logger,
		Options: opts,
	}
}

// CommandError reports a git invocation that exited unsuccessfully. Git's
// stderr has already been written to the client's Stderr.
type CommandError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	name := "git"
	if len(e.Args) > 0 {
		name += " " + e.Args[0]
	}
	return fmt.Sprintf("%s: %v", name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the git exit status carried by err, if any.
func ExitCode(err error) (int, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.ExitCode, true
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode, true
	}
	return 0, false
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	full := args
	if c.Dir != "" {
		full = append([]string{"-C", c.Dir}, args...)
	}
	c.Logger.Debug("running git", zap.Strings("args", full))
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Stderr = c.Stderr
	return cmd
}

// run executes git with stdout sent to w.
func (c *Client) run(ctx context.Context, w io.Writer, args ...string) error {
	cmd := c.command(ctx, args...)
	cmd.Stdout = w
	return wrapExit(args, cmd.Run())
}

// gitOutput executes git and returns its stdout. On a non-zero exit the
// captured stdout is still returned alongside the error.
func (c *Client) gitOutput(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	err := c.run(ctx, &out, args...)
	return out.String(), err
}

func wrapExit(args []string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
}
