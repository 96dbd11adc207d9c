package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/output"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change the workflow's settings",
		Long: `Read and change the workflow's settings.json in its data directory.

Keys starting with __workflow_ are used by the workflow runtime, for
example __workflow_autoupdate and __workflow_diacritic_folding.`,
		Example: `  wfkit settings list
  wfkit settings set theme dark
  wfkit settings set max_items 20          # stored as a number
  wfkit settings set --string zip 01234    # stored as a string
  wfkit settings delete theme`,
	}

	cmd.AddCommand(newSettingsListCmd())
	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsDeleteCmd())

	return cmd
}

func newSettingsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			s, err := wf.Settings()
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.All())
			}

			out := output.New(cmd.OutOrStdout())
			if len(s.Keys()) == 0 {
				out.Statusf("📋", "No settings in %s", s.Path())
				return nil
			}
			out.KeyValues(s.All())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			s, err := wf.Settings()
			if err != nil {
				return err
			}
			v, ok := s.Get(args[0])
			if !ok {
				return wferrors.New(wferrors.ErrCodeInvalidInput, fmt.Sprintf("no setting %q", args[0]), nil).
					WithSuggestion("Run 'wfkit settings list' to see all keys")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output.FormatValue(v))
			return err
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var asString bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting. The value is parsed as JSON when possible, so
true, 42 and ["a","b"] keep their types. Anything else, or any value
with --string, is stored as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			s, err := wf.Settings()
			if err != nil {
				return err
			}
			value := parseSettingValue(args[1], asString)
			if err := s.Set(args[0], value); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("%s = %s", args[0], output.FormatValue(value))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asString, "string", false, "Store the value as a string")

	return cmd
}

// parseSettingValue decodes raw as JSON unless asString is set or it is
// not valid JSON.
func parseSettingValue(raw string, asString bool) any {
	if asString {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func newSettingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			s, err := wf.Settings()
			if err != nil {
				return err
			}
			if err := s.Delete(args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Deleted %s", args[0])
			return nil
		},
	}
}
