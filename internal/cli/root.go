package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes. Backend failures exit with git's own status instead.
const (
	ExitSuccess      = 0
	ExitDifferences  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

const usageLine = "usage: compare-changesets <TARGET> <BASE_A> <TIP_A> <BASE_B> <TIP_B>"

// exitError carries the process exit status out of a command handler.
// When quiet is set the message has already been reported on stderr.
type exitError struct {
	code  int
	err   error
	quiet bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compare-changesets [flags] <TARGET> <BASE_A> <TIP_A> <BASE_B> <TIP_B>",
		Short:         "Compare two change-sets replayed onto a common target",
		Long:          "compare-changesets replays BASE_A..TIP_A and BASE_B..TIP_B onto TARGET without touching the working tree and prints the difference between the two results.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCompare,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	addCompareFlags(root)

	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.quiet {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	// Flag parsing and argument errors from cobra itself.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsageError
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print compare-changesets and git versions",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}
