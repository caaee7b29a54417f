package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dshills/compare-changesets/internal/compare"
	"github.com/dshills/compare-changesets/internal/config"
	"github.com/dshills/compare-changesets/internal/gitctx"
	"github.com/dshills/compare-changesets/internal/logging"
	"github.com/dshills/compare-changesets/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func addCompareFlags(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.StringP("repo", "C", "", "Run as if started in this directory")
	f.String("format", def.Format, "Output format: patch, stat, name-status, json, yaml")
	f.String("color", def.Color, "Color the output: auto, always, never")
	f.IntP("context-lines", "U", 0, "Lines of diff context (0 uses git's default)")
	f.IntP("find-renames", "M", 0, "Rename similarity threshold in percent (0 uses 50)")
	f.Bool("allow-conflicts", false, "Compare trees containing conflict markers instead of failing")
	f.Bool("exit-code", false, "Exit with status 1 when the change-sets differ")
	f.StringSlice("paths", nil, "Only compare paths matching these globs")
	f.StringSlice("exclude", nil, "Skip paths matching these globs")
	f.String("log-level", def.LogLevel, "Diagnostic level: debug, info, warn, error")
	f.Bool("reverse", false, "Swap change-set A and change-set B")
	f.BoolP("verbose", "v", false, "Log each git invocation (same as --log-level debug)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	refs, err := compare.ParseRefs(args)
	if err != nil {
		fmt.Fprintln(stderr, usageLine)
		return &exitError{code: ExitUsageError, err: err, quiet: true}
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.New(level, stderr)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	defer func() { _ = logger.Sync() }()

	if reverse, _ := cmd.Flags().GetBool("reverse"); reverse {
		refs = refs.Swap()
	}
	logger.Debug("comparing change-sets",
		zap.String("target", refs.Target),
		zap.String("a", refs.BaseA+".."+refs.TipA),
		zap.String("b", refs.BaseB+".."+refs.TipB),
		zap.String("format", cfg.Format),
	)

	cmp := compare.New(newBackend(cfg, stderr, logger), logger)
	ctx := cmd.Context()

	if cfg.Format == "patch" {
		return backendError(cmp.Compare(ctx, refs, stdout), logger)
	}

	res, err := cmp.Summarize(ctx, refs)
	if err != nil {
		return backendError(err, logger)
	}
	if err := output.WriteResult(stdout, res, cfg.Format, output.ColorEnabled(cfg.Color, stdout)); err != nil {
		return &exitError{code: ExitRuntimeError, err: err}
	}
	if cfg.ExitCode && len(res.Changes) > 0 {
		return &exitError{code: ExitDifferences, quiet: true}
	}
	return nil
}

// newBackend builds the backend a comparison runs against.
var newBackend = func(cfg config.Config, stderr io.Writer, logger *zap.Logger) compare.Backend {
	return gitctx.New(cfg.Repo, stderr, logger, buildGitOptions(cfg))
}

func buildGitOptions(cfg config.Config) gitctx.Options {
	return gitctx.Options{
		ContextLines:   cfg.ContextLines,
		FindRenames:    cfg.FindRenames,
		Color:          cfg.Color,
		ExitCode:       cfg.ExitCode,
		AllowConflicts: cfg.AllowConflicts,
		Include:        cfg.Include,
		Exclude:        cfg.Exclude,
	}
}

// backendError maps a comparison failure onto an exit status. Git has
// already written its own diagnostics, so its status is passed through
// without further output.
func backendError(err error, logger *zap.Logger) error {
	if err == nil {
		return nil
	}
	if code, ok := gitctx.ExitCode(err); ok {
		if errors.Is(err, gitctx.ErrMergeConflict) {
			logger.Debug("change-set does not apply cleanly", zap.Error(err))
		} else {
			logger.Debug("git failed", zap.Error(err))
		}
		return &exitError{code: code, err: err, quiet: true}
	}
	return &exitError{code: ExitRuntimeError, err: err}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "compare-changesets version %s\n", version)

	client := gitctx.New("", cmd.ErrOrStderr(), nil, gitctx.Options{})
	v, err := client.GitVersion(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: cannot determine git version: %v\n", err)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "git version %s\n", v)
	if !gitctx.SupportsMergeBase(v) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: git %s is older than %s and cannot run merge-tree --merge-base\n", v, gitctx.MinGitVersion)
	}
	return nil
}
