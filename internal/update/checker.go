package update

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/storage"
)

// StatusKey names the cache entry holding the last Status.
const StatusKey = "__workflow_latest_version"

// DefaultFrequency is how often an update check is due.
const DefaultFrequency = 24 * time.Hour

// Opener hands a downloaded workflow file to Alfred for installation.
type Opener func(ctx context.Context, path string) error

// OpenWithFinder installs a workflow file with open(1).
func OpenWithFinder(ctx context.Context, path string) error {
	return exec.CommandContext(ctx, "open", path).Run()
}

// CheckerConfig holds configuration for a Checker.
type CheckerConfig struct {
	// Client fetches releases. Required.
	Client *Client

	// Cache stores the Status. Required.
	Cache *storage.Cache

	// Repo is the GitHub "owner/repo" slug.
	Repo string

	// Current is the installed workflow version.
	Current string

	// Prereleases allows updating to pre-release versions.
	Prereleases bool

	// AlfredVersion limits downloads to ones this Alfred can install.
	// Empty accepts all.
	AlfredVersion string

	// DownloadDir receives downloaded files (default: os.TempDir()).
	DownloadDir string

	// Opener installs a downloaded file (default: OpenWithFinder).
	Opener Opener
}

// Checker compares the installed version with the latest GitHub release.
type Checker struct {
	config  CheckerConfig
	current Version
	now     func() time.Time
}

// NewChecker validates cfg and returns a Checker.
func NewChecker(cfg CheckerConfig) (*Checker, error) {
	if cfg.Client == nil || cfg.Cache == nil {
		return nil, wferrors.InternalError("update checker needs a client and a cache", nil)
	}
	if _, err := cfg.Client.ReleasesURL(cfg.Repo); err != nil {
		return nil, err
	}
	current, err := ParseVersion(cfg.Current)
	if err != nil {
		return nil, err
	}
	if cfg.Opener == nil {
		cfg.Opener = OpenWithFinder
	}
	return &Checker{config: cfg, current: current, now: time.Now}, nil
}

// Due reports whether the last check is older than frequency.
func (c *Checker) Due(frequency time.Duration) bool {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	return !c.config.Cache.Fresh(StatusKey, frequency)
}

// Status returns the result of the last check, of any age.
func (c *Checker) Status() (Status, error) {
	var status Status
	if _, err := c.config.Cache.Load(StatusKey, &status, 0); err != nil {
		return Status{}, err
	}
	return status, nil
}

// Check fetches releases and records whether a newer version exists.
func (c *Checker) Check(ctx context.Context) (Status, error) {
	dls, err := c.config.Client.Downloads(ctx, c.config.Repo)
	if err != nil {
		return Status{}, err
	}

	status := Status{CheckedAt: c.now()}
	if len(dls) == 0 {
		slog.Warn("no valid downloads", slog.String("repo", c.config.Repo))
		return status, c.save(status)
	}
	slog.Info("found downloads", slog.String("repo", c.config.Repo), slog.Int("count", len(dls)))

	dl, ok := Latest(dls, c.config.AlfredVersion, c.config.Prereleases)
	if !ok {
		slog.Warn("no compatible downloads", slog.String("repo", c.config.Repo))
		return status, c.save(status)
	}

	slog.Debug("comparing versions",
		slog.String("latest", dl.Version.String()),
		slog.String("installed", c.current.String()))
	if c.current.LessThan(dl.Version) {
		status.Available = true
		status.Version = dl.Version.String()
		status.Download = &dl
	}
	return status, c.save(status)
}

// Install downloads and opens the update found by the last Check.
// It reports false when no update is pending.
func (c *Checker) Install(ctx context.Context) (bool, error) {
	status, err := c.Status()
	if err != nil {
		return false, err
	}
	if !status.Available || status.Download == nil {
		slog.Info("no update available")
		return false, nil
	}

	path, err := c.config.Client.Fetch(ctx, *status.Download, c.config.DownloadDir)
	if err != nil {
		return false, err
	}

	slog.Info("installing updated workflow", slog.String("version", status.Version))
	if err := c.config.Opener(ctx, path); err != nil {
		return false, wferrors.New(wferrors.ErrCodeInstallFailed, "cannot open workflow file", err).
			WithDetail("path", path)
	}
	return true, c.save(Status{CheckedAt: c.now()})
}

func (c *Checker) save(status Status) error {
	return c.config.Cache.Save(StatusKey, status)
}
