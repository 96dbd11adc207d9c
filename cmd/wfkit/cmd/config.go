package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wfkit/configs"
	"github.com/Aman-CERP/wfkit/internal/alfred"
	"github.com/Aman-CERP/wfkit/internal/config"
	"github.com/Aman-CERP/wfkit/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wfkit configuration",
		Long: `Manage wfkit.yaml and the user configuration file.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/wfkit/config.yaml)
  3. Workflow config (wfkit.yaml next to info.plist)
  4. info.plist, for bundle id, name and version
  5. Environment variables (WFKIT_*)`,
		Example: `  # Create wfkit.yaml in the workflow directory
  wfkit config init

  # Create the user config instead
  wfkit config init --user

  # Show effective configuration (merged from all sources)
  wfkit config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Create wfkit.yaml in the workflow directory, or the user configuration
file with --user, from the commented template.

With --force an existing file is backed up and replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())

			path, err := configPath(user)
			if err != nil {
				return err
			}
			if fileExists(path) && !force {
				out.Warning("Configuration already exists")
				out.Statusf("📁", "Location: %s", path)
				out.Newline()
				out.Status("💡", "Use --force to replace it (a backup is kept)")
				return nil
			}

			backup, err := config.WriteTemplate(path, configs.Template, force)
			if err != nil {
				return err
			}

			out.Success("Created configuration")
			out.Statusf("📁", "Location: %s", path)
			if backup != "" {
				out.Statusf("💾", "Backup: %s", backup)
			}
			out.Newline()
			out.Status("📋", "Next steps:")
			out.Status("", "  1. Edit the file to customize settings")
			out.Status("", "  2. Run 'wfkit config show' to verify")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&user, "user", false, "Create the user configuration instead of wfkit.yaml")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Example: `  # Show merged configuration
  wfkit config show

  # Show as JSON
  wfkit config show --json

  # Show only the user config
  wfkit config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, workflow, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(user)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Print the user configuration path")

	return cmd
}

// configPath returns the user config path, or wfkit.yaml in the workflow
// directory.
func configPath(user bool) (string, error) {
	if user {
		return config.GetUserConfigPath(), nil
	}
	dir := workflowDir
	if dir == "" {
		found, err := alfred.FindWorkflowDir("")
		if err != nil {
			return "", fmt.Errorf("not in a workflow directory (use --dir or --user): %w", err)
		}
		dir = found
	}
	return filepath.Join(dir, config.FileName), nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		sourceDesc = "merged (defaults + user + workflow + env)"

	case "user", "workflow":
		path, err := configPath(source == "user")
		if err != nil {
			return err
		}
		if !fileExists(path) {
			out.Warningf("No %s configuration file found", source)
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'wfkit config init' to create one")
			return nil
		}
		cfg = config.NewConfig()
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s config: %w", source, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s config: %w", source, err)
		}
		sourceDesc = fmt.Sprintf("%s (%s)", source, path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, workflow, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
