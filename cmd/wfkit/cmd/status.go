package cmd

import (
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/internal/ui"
	"github.com/Aman-CERP/wfkit/pkg/workflow"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the workflow's identity, storage and update state",
		Long: `Display information about the workflow including:
  - Bundle id, name and version
  - Cache and data directories and their sizes
  - Settings, including diacritic folding
  - Update configuration and the result of the last check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			info, err := collectStatus(wf)
			if err != nil {
				return err
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.Colorless(cmd.OutOrStdout()))
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func collectStatus(wf *workflow.Workflow) (ui.StatusInfo, error) {
	info := ui.StatusInfo{
		Name:           wf.Name(),
		BundleID:       wf.BundleID(),
		Version:        wf.Version(),
		Dir:            wf.Dir(),
		CacheDir:       wf.CacheDir(),
		DataDir:        wf.DataDir(),
		LogFile:        wf.LogFile(),
		CacheSize:      getDirSize(wf.CacheDir()),
		DataSize:       getDirSize(wf.DataDir()),
		FoldDiacritics: wf.FoldDiacritics(),
		Prereleases:    wf.Prereleases(),
		UpdateStatus:   ui.UpdateDisabled,
	}

	s, err := wf.Settings()
	if err != nil {
		return info, err
	}
	info.SettingsEntries = len(s.Keys())

	if !wf.UpdatesEnabled() {
		return info, nil
	}
	info.UpdateRepo = wf.Config().Update.GitHubSlug
	info.AutoUpdate = s.GetBool(settings.KeyAutoUpdate, true)

	status, err := wf.UpdateStatus()
	if err != nil {
		return info, err
	}
	switch {
	case status.CheckedAt.IsZero():
		info.UpdateStatus = ui.UpdateUnknown
	case status.Available:
		info.UpdateStatus = ui.UpdateAvailable
		info.LatestVersion = status.Version
	default:
		info.UpdateStatus = ui.UpdateCurrent
	}
	info.LastCheck = status.CheckedAt

	return info, nil
}

// getDirSize returns the total size of all files in a directory.
func getDirSize(path string) int64 {
	var size int64

	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			size += fi.Size()
		}
		return nil
	})

	return size
}
