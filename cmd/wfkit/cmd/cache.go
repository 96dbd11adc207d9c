package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/output"
	"github.com/Aman-CERP/wfkit/internal/settings"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the workflow's cache and data",
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheResetCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var (
		data bool
		keep []string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached files",
		Long: `Delete the files in the workflow's cache directory, or with --data in
its data directory. settings.json survives --data unless it is cleared
too with 'wfkit cache reset'.`,
		Example: `  wfkit cache clear
  wfkit cache clear --keep '*.log'
  wfkit cache clear --data --keep favourites.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			if data {
				keep = append(keep, settings.FileName)
				if err := wf.ClearData(keepMatching(keep)); err != nil {
					return err
				}
				out.Successf("Cleared %s", wf.DataDir())
				return nil
			}
			if err := wf.ClearCache(keepMatching(keep)); err != nil {
				return err
			}
			out.Successf("Cleared %s", wf.CacheDir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&data, "data", false, "Clear the data directory instead of the cache")
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Glob patterns of files to keep")

	return cmd
}

func newCacheResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the cache, data and settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			if err := wf.Reset(cmd.Context()); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Reset %s", wf.Name())
			return nil
		},
	}
}

// keepMatching returns a keep function for glob patterns, or nil to keep
// nothing.
func keepMatching(patterns []string) func(name string) bool {
	if len(patterns) == 0 {
		return nil
	}
	return func(name string) bool {
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, name); ok {
				return true
			}
		}
		return false
	}
}
