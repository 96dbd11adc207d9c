package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Update states reported by "wfkit status".
const (
	UpdateAvailable = "available"
	UpdateCurrent   = "current"
	UpdateUnknown   = "unknown"
	UpdateDisabled  = "disabled"
)

// StatusInfo describes an installed workflow.
type StatusInfo struct {
	Name     string `json:"name"`
	BundleID string `json:"bundle_id"`
	Version  string `json:"version,omitempty"`
	Dir      string `json:"dir,omitempty"`

	CacheDir  string `json:"cache_dir"`
	DataDir   string `json:"data_dir"`
	LogFile   string `json:"log_file"`
	CacheSize int64  `json:"cache_size"`
	DataSize  int64  `json:"data_size"`

	UpdateRepo    string    `json:"update_repo,omitempty"`
	UpdateStatus  string    `json:"update_status"`
	LatestVersion string    `json:"latest_version,omitempty"`
	LastCheck     time.Time `json:"last_check,omitzero"`
	AutoUpdate    bool      `json:"auto_update"`
	Prereleases   bool      `json:"prereleases"`

	FoldDiacritics  bool `json:"fold_diacritics"`
	SettingsEntries int  `json:"settings_entries"`
}

// StatusRenderer prints a StatusInfo.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

type field struct{ label, value string }

type section struct {
	title  string
	fields []field
}

func (s *section) add(label, value string) { s.fields = append(s.fields, field{label, value}) }

// Render prints the workflow's identity followed by aligned sections.
func (r *StatusRenderer) Render(info StatusInfo) error {
	title := strings.TrimSpace(info.Name + " " + info.Version)

	identity := section{}
	identity.add("bundle id", info.BundleID)
	if info.Dir != "" {
		identity.add("directory", info.Dir)
	}

	storage := section{title: "Storage"}
	storage.add("cache", fmt.Sprintf("%s (%s)", info.CacheDir, FormatBytes(info.CacheSize)))
	storage.add("data", fmt.Sprintf("%s (%s)", info.DataDir, FormatBytes(info.DataSize)))
	storage.add("log", info.LogFile)

	settings := section{title: "Settings"}
	settings.add("entries", fmt.Sprint(info.SettingsEntries))
	settings.add("fold diacritics", r.onOff(info.FoldDiacritics))

	updates := section{title: "Updates"}
	updates.add("status", r.updateState(info.UpdateStatus))
	if info.UpdateRepo != "" {
		updates.add("repo", info.UpdateRepo)
		updates.add("auto", r.onOff(info.AutoUpdate))
		updates.add("prereleases", r.onOff(info.Prereleases))
	}
	if info.LatestVersion != "" {
		updates.add("latest", info.LatestVersion)
	}
	if !info.LastCheck.IsZero() {
		updates.add("checked", formatTime(info.LastCheck))
	}

	var b strings.Builder
	b.WriteString(r.styles.Header.Render(title) + "\n")
	for _, s := range []section{identity, storage, settings, updates} {
		r.writeSection(&b, s)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *StatusRenderer) writeSection(b *strings.Builder, s section) {
	if s.title != "" {
		b.WriteString("\n" + r.styles.Label.Render(s.title) + "\n")
	}
	width := 0
	for _, f := range s.fields {
		width = max(width, len(f.label))
	}
	for _, f := range s.fields {
		pad := strings.Repeat(" ", width-len(f.label))
		fmt.Fprintf(b, "  %s%s  %s\n", r.styles.Dim.Render(f.label), pad, f.value)
	}
}

// RenderJSON prints info as indented JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.out, "%s\n", data)
	return err
}

func (r *StatusRenderer) updateState(state string) string {
	switch state {
	case UpdateCurrent:
		return r.styles.Success.Render(state)
	case UpdateAvailable:
		return r.styles.Warning.Render(state)
	case UpdateUnknown, UpdateDisabled:
		return r.styles.Dim.Render(state)
	}
	return state
}

func (r *StatusRenderer) onOff(on bool) string {
	if on {
		return r.styles.Success.Render("on")
	}
	return r.styles.Dim.Render("off")
}

var ages = []struct {
	limit time.Duration
	unit  time.Duration
	name  string
}{
	{time.Hour, time.Minute, "minute"},
	{24 * time.Hour, time.Hour, "hour"},
	{7 * 24 * time.Hour, 24 * time.Hour, "day"},
}

// formatTime describes t relative to now, for up to a week.
func formatTime(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	for _, a := range ages {
		if d < a.limit {
			n := int(d / a.unit)
			if n == 1 {
				return "1 " + a.name + " ago"
			}
			return fmt.Sprintf("%d %ss ago", n, a.name)
		}
	}
	return t.Format("2006-01-02 15:04")
}

// FormatBytes formats a size with binary units, e.g. "1.5 KB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	size := float64(n) / 1024
	for _, unit := range []string{"KB", "MB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f GB", size)
}
