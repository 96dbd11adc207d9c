package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wfkit/internal/config"
	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/internal/update"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
)

// testEnv builds an Alfred environment with private cache and data dirs.
func testEnv(t *testing.T, extra map[string]string) map[string]string {
	t.Helper()
	env := map[string]string{
		"alfred_workflow_bundleid": "net.example.demo",
		"alfred_workflow_name":     "Demo",
		"alfred_workflow_version":  "1.2.0",
		"alfred_workflow_cache":    filepath.Join(t.TempDir(), "cache"),
		"alfred_workflow_data":     filepath.Join(t.TempDir(), "data"),
		"alfred_version":           "5.5",
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

type commandLog struct {
	calls [][]string
}

func (c *commandLog) run(_ context.Context, name string, args ...string) error {
	c.calls = append(c.calls, append([]string{name}, args...))
	return nil
}

type testWorkflow struct {
	*Workflow
	out  *bytes.Buffer
	cmds *commandLog
}

func newTestWorkflow(t *testing.T, env map[string]string, opts ...Option) *testWorkflow {
	t.Helper()
	if env == nil {
		env = testEnv(t, nil)
	}
	out := &bytes.Buffer{}
	cmds := &commandLog{}

	base := []Option{
		WithDir(t.TempDir()),
		WithConfig(config.NewConfig()),
		WithEnv(func(key string) string { return env[key] }),
		WithArgs(),
		WithOutput(out),
		WithCommandRunner(cmds.run),
		WithLogging(false),
	}
	wf, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(wf.Close)
	return &testWorkflow{Workflow: wf, out: out, cmds: cmds}
}

func decodeFeedback(t *testing.T, out *bytes.Buffer) *feedback.Feedback {
	t.Helper()
	fb, err := feedback.Parse(out)
	require.NoError(t, err)
	return fb
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_ReadsAlfredEnvironment(t *testing.T) {
	env := testEnv(t, nil)
	wf := newTestWorkflow(t, env)

	assert.Equal(t, "net.example.demo", wf.BundleID())
	assert.Equal(t, "Demo", wf.Name())
	assert.Equal(t, "1.2.0", wf.Version())
	assert.Equal(t, env["alfred_workflow_cache"], wf.CacheDir())
	assert.Equal(t, env["alfred_workflow_data"], wf.DataDir())
	assert.DirExists(t, wf.CacheDir())
	assert.DirExists(t, wf.DataDir())
	assert.Equal(t, filepath.Join(wf.CacheDir(), "net.example.demo.log"), wf.LogFile())
	assert.Equal(t, "net.example.demo", wf.Keychain().Service())
}

func TestNew_ConfigIdentityWinsOverEnvironment(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Workflow.Name = "Configured"

	wf := newTestWorkflow(t, nil, WithConfig(cfg))

	assert.Equal(t, "Configured", wf.Name())
	assert.Equal(t, "net.example.demo", wf.BundleID())
}

func TestNew_WithoutBundleID(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := New(
		WithDir(t.TempDir()),
		WithConfig(config.NewConfig()),
		WithEnv(func(string) string { return "" }),
		WithArgs(),
		WithLogging(false),
	)

	assert.Equal(t, wferrors.ErrCodeNoBundleID, wferrors.GetCode(err))
}

func TestNew_LoadsWorkflowConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(`
filter:
  match_on: startswith
storage:
  cache_serializer: yaml
`), 0o644))
	env := testEnv(t, nil)

	wf, err := New(
		WithDir(dir),
		WithEnv(func(key string) string { return env[key] }),
		WithArgs(),
		WithLogging(false),
	)
	require.NoError(t, err)

	assert.Equal(t, "startswith", wf.Config().Filter.MatchOn)
	assert.Equal(t, filepath.Join(wf.CacheDir(), "x.yaml"), wf.Cache().Path("x"))
}

func TestNew_UnknownSerializer(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.DataSerializer = "pickle"
	env := testEnv(t, nil)

	_, err := New(
		WithDir(t.TempDir()),
		WithConfig(cfg),
		WithEnv(func(key string) string { return env[key] }),
		WithArgs(),
		WithLogging(false),
	)

	assert.Equal(t, wferrors.ErrCodeUnknownFormat, wferrors.GetCode(err))
}

func TestNew_WritesLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	wf := newTestWorkflow(t, nil, WithLogging(true))

	wf.Run(func(*Workflow) error { return nil })
	wf.Close()

	assert.FileExists(t, wf.LogFile())
}

func TestArgs_AreNFC(t *testing.T) {
	// Given: a decomposed "café" as macOS passes it
	wf := newTestWorkflow(t, nil, WithArgs("cafe\u0301", "x"))

	assert.Equal(t, []string{"café", "x"}, wf.Args())
	assert.Equal(t, "café", wf.Query())
}

// =============================================================================
// Feedback and session
// =============================================================================

func TestSendFeedback(t *testing.T) {
	wf := newTestWorkflow(t, nil)
	wf.SetVar("mode", "search")
	wf.AddItem("Result").SetArg("r").SetValid(true)
	wf.Rerun(1)

	require.NoError(t, wf.SendFeedback())

	fb := decodeFeedback(t, wf.out)
	require.Equal(t, 1, fb.Len())
	assert.Equal(t, "Result", fb.Items[0].Title)
	assert.Equal(t, "search", fb.Variables["mode"])
	assert.Equal(t, 1.0, fb.Rerun)
	assert.Equal(t, "search", wf.GetVar("mode", ""))
}

func TestSendFeedback_PrettyWhenDebugging(t *testing.T) {
	wf := newTestWorkflow(t, testEnv(t, map[string]string{"alfred_debug": "1"}))
	wf.WarnEmpty("Nothing", "")

	require.NoError(t, wf.SendFeedback())

	assert.Contains(t, wf.out.String(), "\n  \"items\"")
}

func TestSessionID(t *testing.T) {
	t.Run("new session", func(t *testing.T) {
		wf := newTestWorkflow(t, nil)

		id := wf.SessionID()

		assert.Len(t, id, 32)
		assert.Equal(t, id, wf.SessionID())
		assert.Equal(t, id, wf.GetVar(SessionVar, ""))
	})

	t.Run("continued session", func(t *testing.T) {
		wf := newTestWorkflow(t, testEnv(t, map[string]string{SessionVar: "abc123"}))

		assert.Equal(t, "abc123", wf.SessionID())
		assert.Equal(t, "abc123", wf.GetVar(SessionVar, ""))
	})
}

func TestClearSessionCache(t *testing.T) {
	// Given: data cached by this and another session
	wf := newTestWorkflow(t, testEnv(t, map[string]string{SessionVar: "mine"}))
	require.NoError(t, wf.SessionCache().Save("results", []string{"a"}))
	require.NoError(t, wf.Cache().WithSession("other").Save("results", []string{"b"}))
	require.NoError(t, wf.Cache().Save("shared", 1))

	// When: clearing old sessions
	require.NoError(t, wf.ClearSessionCache(false))

	// Then: only the other session's file is gone
	assert.FileExists(t, wf.SessionCache().Path("results"))
	assert.NoFileExists(t, wf.Cache().WithSession("other").Path("results"))
	assert.FileExists(t, wf.Cache().Path("shared"))

	require.NoError(t, wf.ClearSessionCache(true))
	assert.NoFileExists(t, wf.SessionCache().Path("results"))
}

func TestCached(t *testing.T) {
	wf := newTestWorkflow(t, nil)
	calls := 0
	fetch := func() ([]string, error) {
		calls++
		return []string{"Safari", "Mail"}, nil
	}

	first, err := Cached(wf.Workflow, "apps", time.Minute, fetch)
	require.NoError(t, err)
	second, err := Cached(wf.Workflow, "apps", time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = SessionCached(wf.Workflow, "apps", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

// =============================================================================
// Filtering
// =============================================================================

func TestFilter_UsesFoldingSetting(t *testing.T) {
	items := []string{"Café", "Costa"}
	key := func(s string) string { return s }

	// Given: folding enabled by default
	wf := newTestWorkflow(t, nil)
	assert.Equal(t, []string{"Café"}, Filter(wf.Workflow, "cafe", items, key))

	// When: the user turns folding off
	s, err := wf.Settings()
	require.NoError(t, err)
	require.NoError(t, s.Set(settings.KeyDiacriticFolding, false))

	// Then: the ASCII query no longer matches
	assert.False(t, wf.FoldDiacritics())
	assert.Empty(t, Filter(wf.Workflow, "cafe", items, key))
}

func TestFilter_AppliesConfiguredRules(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Filter.MatchOn = "startswith"
	cfg.Filter.MaxResults = 1
	wf := newTestWorkflow(t, nil, WithConfig(cfg))

	items := []string{"Maps", "Mail", "Gmail"}
	results := FilterScored(wf.Workflow, "ma", items, func(s string) string { return s })

	require.Len(t, results, 1)
	assert.Contains(t, []string{"Mail", "Maps"}, results[0].Item)
}

// =============================================================================
// Run
// =============================================================================

func TestRun_Success(t *testing.T) {
	wf := newTestWorkflow(t, nil, WithArgs("query"))

	first, err := wf.FirstRun()
	require.NoError(t, err)
	assert.True(t, first)

	code := wf.Run(func(wf *Workflow) error {
		wf.AddItem("Hit: " + wf.Query())
		return wf.SendFeedback()
	})

	assert.Equal(t, 0, code)
	assert.Equal(t, "Hit: query", decodeFeedback(t, wf.out).Items[0].Title)

	// And: the version is recorded
	first, err = wf.FirstRun()
	require.NoError(t, err)
	assert.False(t, first)
	last, ok, err := wf.LastVersionRun()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.2.0", last.String())
}

func TestRun_ErrorBecomesItem(t *testing.T) {
	wf := newTestWorkflow(t, nil)

	code := wf.Run(func(wf *Workflow) error {
		wf.AddItem("partial")
		return errors.New("network is down")
	})

	assert.Equal(t, 1, code)
	fb := decodeFeedback(t, wf.out)
	require.Equal(t, 1, fb.Len())
	assert.Equal(t, "Error in workflow 'Demo'", fb.Items[0].Title)
	assert.Equal(t, "network is down", fb.Items[0].Subtitle)
	assert.Equal(t, feedback.IconError, fb.Items[0].Icon.Path)
}

func TestRun_InfoErrorsUseInfoIcon(t *testing.T) {
	wf := newTestWorkflow(t, nil)

	wf.Run(func(*Workflow) error {
		return wferrors.New(wferrors.ErrCodeNoUpdate, "no update available", nil)
	})

	fb := decodeFeedback(t, wf.out)
	require.Equal(t, 1, fb.Len())
	assert.Equal(t, feedback.IconInfo, fb.Items[0].Icon.Path)
}

func TestRun_TextErrors(t *testing.T) {
	wf := newTestWorkflow(t, nil, WithTextErrors(true))

	code := wf.Run(func(*Workflow) error {
		return wferrors.ValidationError("bad input", nil)
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, wf.out.String(), "bad input")
	assert.False(t, strings.HasPrefix(wf.out.String(), "{"))
}

func TestRun_RecoversPanic(t *testing.T) {
	wf := newTestWorkflow(t, nil)

	code := wf.Run(func(*Workflow) error {
		panic("boom")
	})

	assert.Equal(t, 1, code)
	assert.Contains(t, decodeFeedback(t, wf.out).Items[0].Subtitle, "boom")
}

func TestFirstRun_NoVersion(t *testing.T) {
	env := testEnv(t, nil)
	delete(env, "alfred_workflow_version")
	wf := newTestWorkflow(t, env)

	_, err := wf.FirstRun()

	assert.ErrorIs(t, err, ErrNoVersion)
}

// =============================================================================
// Updates
// =============================================================================

// releaseServer serves one release, v2.0, of owner/demo.
func releaseServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/demo/releases":
			_, _ = fmt.Fprintf(w, `[{"tag_name":"v2.0","prerelease":false,"assets":[
				{"browser_download_url":"%s/dl/Demo.alfredworkflow"}]}]`, srv.URL)
		case "/dl/Demo.alfredworkflow":
			_, _ = w.Write([]byte("zip"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func updatingWorkflow(t *testing.T, args ...string) *testWorkflow {
	t.Helper()
	srv := releaseServer(t)
	cfg := config.NewConfig()
	cfg.Update.GitHubSlug = "owner/demo"
	client := update.NewClient(update.ClientConfig{
		APIBase: srv.URL,
		Retry:   wferrors.RetryConfig{Multiplier: 1},
	})
	return newTestWorkflow(t, nil, WithConfig(cfg), WithUpdateClient(client), WithArgs(args...))
}

func TestRun_ChecksForUpdate(t *testing.T) {
	wf := updatingWorkflow(t)
	assert.False(t, wf.UpdateAvailable())

	code := wf.Run(func(*Workflow) error { return nil })

	assert.Equal(t, 0, code)
	assert.True(t, wf.UpdateAvailable())
}

type panickingTransport struct{}

func (panickingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("transport exploded")
}

func TestRun_PanickingUpdateCheckKeepsResults(t *testing.T) {
	// Given: an update check whose HTTP transport panics
	cfg := config.NewConfig()
	cfg.Update.GitHubSlug = "owner/demo"
	client := update.NewClient(update.ClientConfig{
		APIBase:    "http://releases.invalid",
		HTTPClient: &http.Client{Transport: panickingTransport{}},
	})
	wf := newTestWorkflow(t, nil, WithConfig(cfg), WithUpdateClient(client))

	// When: running
	code := wf.Run(func(wf *Workflow) error {
		wf.AddItem("still here")
		return wf.SendFeedback()
	})

	// Then: the results are sent and no update is reported
	assert.Equal(t, 0, code)
	assert.Equal(t, "still here", decodeFeedback(t, wf.out).Items[0].Title)
	assert.False(t, wf.UpdateAvailable())
}

func TestRun_PanickingFnWaitsForUpdateCheck(t *testing.T) {
	wf := updatingWorkflow(t)

	code := wf.Run(func(*Workflow) error {
		panic("boom")
	})

	// The check finished before Run returned
	assert.Equal(t, 1, code)
	assert.True(t, wf.UpdateAvailable())
}

func TestCheckUpdate_AutoUpdateOff(t *testing.T) {
	wf := updatingWorkflow(t)
	s, err := wf.Settings()
	require.NoError(t, err)
	require.NoError(t, s.Set(settings.KeyAutoUpdate, false))

	require.NoError(t, wf.CheckUpdate(context.Background(), false))
	assert.False(t, wf.UpdateAvailable())

	// Forced checks ignore the setting
	require.NoError(t, wf.CheckUpdate(context.Background(), true))
	assert.True(t, wf.UpdateAvailable())
}

func TestCheckUpdate_NotConfigured(t *testing.T) {
	wf := newTestWorkflow(t, nil)

	err := wf.CheckUpdate(context.Background(), true)

	assert.Equal(t, wferrors.ErrCodeNoUpdate, wferrors.GetCode(err))
	assert.False(t, wf.UpdatesEnabled())
}

func TestPrereleases(t *testing.T) {
	wf := newTestWorkflow(t, nil)
	assert.False(t, wf.Prereleases())

	s, err := wf.Settings()
	require.NoError(t, err)
	require.NoError(t, s.Set(settings.KeyPrereleases, true))

	assert.True(t, wf.Prereleases())
}
