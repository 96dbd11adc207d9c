// Package cmd provides the CLI commands for wfkit.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/logging"
	"github.com/Aman-CERP/wfkit/pkg/version"
)

// Global flags
var (
	workflowDir    string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the wfkit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wfkit",
		Short: "Toolkit for Alfred workflows",
		Long: `wfkit ranks Script Filter items the way Alfred users expect and
manages the state of installed workflows: settings, cache, Keychain
passwords, logs and self-updates from GitHub releases.

Commands that act on a workflow find it by climbing from the current
directory to its info.plist, or use --dir.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("wfkit version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&workflowDir, "dir", "", "Workflow directory (default: search upwards for info.plist)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	// Ranking
	cmd.AddCommand(newFilterCmd())
	cmd.AddCommand(newTryCmd())

	// Workflow state
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newKeychainCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newLogsCmd())

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs a stderr logger. Only warnings are shown unless
// --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.Config{Level: "warn", WriteToStderr: true}
	if debugMode {
		cfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("debug logging enabled", slog.String("version", version.Short()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}
