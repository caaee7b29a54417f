package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dshills/compare-changesets/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage compare-changesets configuration",
		Args:  cobra.ArbitraryArgs,
		RunE:  runConfig,
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})
	return configCmd
}

// runConfig handles `config` with no known subcommand. Anything left over is
// most likely a comparison whose TARGET is a branch named config.
func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return &exitError{
		code: ExitUsageError,
		err:  fmt.Errorf("unknown config subcommand %q (spell a ref named config as refs/heads/config)", args[0]),
	}
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return &exitError{code: ExitRuntimeError, err: err}
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
		return nil
	}

	if err := config.Save(config.Default()); err != nil {
		return &exitError{code: ExitRuntimeError, err: fmt.Errorf("writing config: %w", err)}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}

	if err := config.SetField(&cfg, args[0], args[1]); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return &exitError{code: ExitRuntimeError, err: fmt.Errorf("saving config: %w", err)}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
