package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/output"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for and install workflow updates",
		Long: `Check GitHub releases for a newer version of the workflow and install it.

The workflow must set update.github_slug in wfkit.yaml. Releases carry
the workflow as an .alfredworkflow (or .alfred5workflow) asset.`,
	}

	cmd.AddCommand(newUpdateCheckCmd())
	cmd.AddCommand(newUpdateInstallCmd())

	return cmd
}

func newUpdateCheckCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for a newer release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			if !cached {
				if err := wf.CheckUpdate(cmd.Context(), true); err != nil {
					return err
				}
			}
			status, err := wf.UpdateStatus()
			if err != nil {
				return err
			}

			switch {
			case status.CheckedAt.IsZero():
				out.Warning("No update check has run yet")
			case status.Available:
				out.Successf("Update available: %s (installed: %s)", status.Version, wf.Version())
				out.Status("💡", "Run 'wfkit update install' to install it")
			default:
				out.Successf("%s %s is up to date", wf.Name(), wf.Version())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Show the result of the last check without contacting GitHub")

	return cmd
}

func newUpdateInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download and install the newest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			installed, err := wf.StartUpdate(cmd.Context())
			if err != nil {
				return err
			}
			if !installed {
				out.Successf("%s %s is up to date", wf.Name(), wf.Version())
				return nil
			}
			out.Success("Update downloaded and opened in Alfred")
			return nil
		},
	}
}
