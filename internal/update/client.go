package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/storage"
	"github.com/Aman-CERP/wfkit/pkg/version"
)

// Client defaults
const (
	DefaultAPIBase        = "https://api.github.com"
	DefaultRequestTimeout = 20 * time.Second
	ReleasesMaxAge        = 60 * time.Second // GitHub allows 60 unauthenticated requests per hour
)

// GitHub rejects API requests without a User-Agent
var userAgent = version.UserAgent()

// ClientConfig holds configuration for the release client.
type ClientConfig struct {
	// APIBase is the GitHub API root (default: https://api.github.com)
	APIBase string

	// Cache stores release lists. Nil disables caching.
	Cache *storage.Cache

	// HTTPClient replaces the default client.
	HTTPClient *http.Client

	// Retry controls retries of failed requests.
	Retry wferrors.RetryConfig

	// RequestTimeout bounds each request (default: 20s).
	RequestTimeout time.Duration
}

// Client fetches release information and files from GitHub.
type Client struct {
	http   *http.Client
	config ClientConfig
}

// NewClient creates a release client. A zero Retry uses the default.
func NewClient(cfg ClientConfig) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry = wferrors.DefaultRetryConfig()
	}
	if cfg.Retry.ShouldRetry == nil {
		cfg.Retry.ShouldRetry = wferrors.IsRetryable
	}

	// Timeouts are set per request through the context.
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    4,
				IdleConnTimeout: 30 * time.Second,
			},
		}
	}
	return &Client{http: client, config: cfg}
}

// ReleasesURL returns the releases endpoint for slug ("owner/repo").
func (c *Client) ReleasesURL(slug string) (string, error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", wferrors.New(wferrors.ErrCodeInvalidRepo, fmt.Sprintf("invalid GitHub repo: %q", slug), nil).
			WithSuggestion("Use the form 'owner/repo'")
	}
	return fmt.Sprintf("%s/repos/%s/releases", c.config.APIBase, slug), nil
}

// Downloads returns the workflow files of slug's releases, newest first.
// Results are cached for ReleasesMaxAge.
func (c *Client) Downloads(ctx context.Context, slug string) ([]Download, error) {
	url, err := c.ReleasesURL(slug)
	if err != nil {
		return nil, err
	}

	fetch := func() ([]Download, error) {
		slog.Info("retrieving releases", slog.String("repo", slug))
		data, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}
		return DownloadsFromReleases(data)
	}

	if c.config.Cache == nil {
		return fetch()
	}
	key := "github-releases-" + strings.ReplaceAll(slug, "/", "-")
	return storage.Cached(c.config.Cache, key, ReleasesMaxAge, fetch)
}

// Fetch downloads dl into dir and returns the file's path.
func (c *Client) Fetch(ctx context.Context, dl Download, dir string) (string, error) {
	if !IsWorkflowFile(dl.Filename) || filepath.Base(dl.Filename) != dl.Filename {
		return "", wferrors.New(wferrors.ErrCodeInvalidInput, "attachment is not a workflow", nil).
			WithDetail("filename", dl.Filename)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, dl.Filename)

	slog.Debug("downloading update", slog.String("url", dl.URL), slog.String("path", path))
	data, err := c.get(ctx, dl.URL)
	if err != nil {
		return "", err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", wferrors.IOError("cannot save download", err).WithDetail("path", path)
	}
	return path, nil
}

// get performs a GET with retries and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return wferrors.RetryWithResult(ctx, c.config.Retry, func() ([]byte, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return nil, wferrors.New(wferrors.ErrCodeInvalidInput, "cannot create request", err)
		}
		req.Header.Set("User-Agent", userAgent)
		if strings.HasPrefix(url, c.config.APIBase) {
			req.Header.Set("Accept", "application/vnd.github+json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if reqCtx.Err() != nil {
				return nil, wferrors.New(wferrors.ErrCodeNetworkTimeout, "request timed out", err).
					WithDetail("url", url)
			}
			return nil, wferrors.NetworkError("request failed", err).WithDetail("url", url)
		}
		defer func() { _ = resp.Body.Close() }()

		if err := checkStatus(resp); err != nil {
			return nil, err.WithDetail("url", url)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, wferrors.New(wferrors.ErrCodeDownloadFailed, "cannot read response", err)
		}
		return body, nil
	})
}

func checkStatus(resp *http.Response) *wferrors.WorkflowError {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return wferrors.New(wferrors.ErrCodeRateLimited, "GitHub rate limit exceeded", nil).
			WithSuggestion("Wait an hour or check less frequently")
	case resp.StatusCode == http.StatusNotFound:
		return wferrors.New(wferrors.ErrCodeInvalidRepo, "not found on GitHub", nil)
	case resp.StatusCode >= 500:
		return wferrors.New(wferrors.ErrCodeNetworkUnavailable, fmt.Sprintf("server error: %s", resp.Status), nil)
	default:
		return wferrors.New(wferrors.ErrCodeDownloadFailed, fmt.Sprintf("unexpected status: %s", resp.Status), nil)
	}
}
