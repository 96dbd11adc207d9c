package workflow

import (
	"context"
	"log/slog"
	"time"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/internal/update"
)

// UpdateCheckTimeout bounds the automatic check made by Run.
const UpdateCheckTimeout = 5 * time.Second

// ErrNoVersion is returned by version-dependent methods when the workflow
// has no version number.
var ErrNoVersion = wferrors.New(wferrors.ErrCodeInvalidVersion, "workflow has no version number", nil).
	WithSuggestion("Set a version in info.plist or wfkit.yaml")

func (w *Workflow) version() (update.Version, error) {
	if w.Version() == "" {
		return update.Version{}, ErrNoVersion
	}
	return update.ParseVersion(w.Version())
}

// LastVersionRun returns the version recorded by the last successful run.
// It reports false when none was recorded.
func (w *Workflow) LastVersionRun() (update.Version, bool, error) {
	s, err := w.Settings()
	if err != nil {
		return update.Version{}, false, err
	}
	last := s.GetString(settings.KeyLastVersion, "")
	if last == "" {
		return update.Version{}, false, nil
	}
	v, err := update.ParseVersion(last)
	if err != nil {
		return update.Version{}, false, err
	}
	return v, true, nil
}

// SetLastVersion records version, or the workflow's version when empty,
// as the last one run.
func (w *Workflow) SetLastVersion(version string) error {
	if version == "" {
		version = w.Version()
	}
	if version == "" {
		return ErrNoVersion
	}
	v, err := update.ParseVersion(version)
	if err != nil {
		return err
	}
	s, err := w.Settings()
	if err != nil {
		return err
	}
	slog.Debug("set last run version", slog.String("version", v.String()))
	return s.Set(settings.KeyLastVersion, v.String())
}

// FirstRun reports whether this version of the workflow has not
// completed a run before.
func (w *Workflow) FirstRun() (bool, error) {
	current, err := w.version()
	if err != nil {
		return false, err
	}
	last, ok, err := w.LastVersionRun()
	if err != nil {
		return false, err
	}
	return !ok || !current.Equal(last), nil
}

// Prereleases reports whether updates may install pre-releases.
func (w *Workflow) Prereleases() bool {
	if w.cfg.Update.Prereleases {
		return true
	}
	s, err := w.Settings()
	if err != nil {
		return false
	}
	return s.GetBool(settings.KeyPrereleases, false)
}

// UpdatesEnabled reports whether the workflow is configured to update
// itself from GitHub.
func (w *Workflow) UpdatesEnabled() bool {
	return w.cfg.Update.GitHubSlug != ""
}

func (w *Workflow) checker() (*update.Checker, error) {
	if !w.UpdatesEnabled() {
		return nil, wferrors.New(wferrors.ErrCodeNoUpdate, "workflow is not configured for updates", nil).
			WithSuggestion("Set update.github_slug in wfkit.yaml")
	}
	client := w.updates
	if client == nil {
		client = update.NewClient(update.ClientConfig{Cache: w.cache})
	}
	return update.NewChecker(update.CheckerConfig{
		Client:        client,
		Cache:         w.cache,
		Repo:          w.cfg.Update.GitHubSlug,
		Current:       w.Version(),
		Prereleases:   w.Prereleases(),
		AlfredVersion: w.env.Version,
		DownloadDir:   w.cacheDir,
		Opener: func(ctx context.Context, path string) error {
			return w.runCmd(ctx, "open", path)
		},
	})
}

// UpdateStatus returns the result of the last update check. The zero
// Status means no check has run yet.
func (w *Workflow) UpdateStatus() (update.Status, error) {
	c, err := w.checker()
	if err != nil {
		return update.Status{}, err
	}
	return c.Status()
}

// UpdateAvailable reports whether the last check found a newer release.
func (w *Workflow) UpdateAvailable() bool {
	status, err := w.UpdateStatus()
	return err == nil && status.Available
}

// CheckUpdate looks for a newer release if a check is due, or always when
// force is set. Users can turn automatic checks off with
// workflow:noautoupdate.
func (w *Workflow) CheckUpdate(ctx context.Context, force bool) error {
	c, err := w.checker()
	if err != nil {
		return err
	}

	if !force {
		if s, err := w.Settings(); err == nil && !s.GetBool(settings.KeyAutoUpdate, true) {
			slog.Debug("auto update turned off by user")
			return nil
		}
		frequency := time.Duration(w.cfg.Update.FrequencyDays) * 24 * time.Hour
		if !c.Due(frequency) {
			slog.Debug("update check not due")
			return nil
		}
	}

	slog.Info("checking for update")
	status, err := c.Check(ctx)
	if err != nil {
		return err
	}
	if status.Available {
		slog.Info("update available", slog.String("version", status.Version))
	}
	return nil
}

// StartUpdate checks for a newer release and installs it.
// It reports false when there is nothing to install.
func (w *Workflow) StartUpdate(ctx context.Context) (bool, error) {
	c, err := w.checker()
	if err != nil {
		return false, err
	}
	status, err := c.Check(ctx)
	if err != nil {
		return false, err
	}
	if !status.Available {
		return false, nil
	}
	return c.Install(ctx)
}
