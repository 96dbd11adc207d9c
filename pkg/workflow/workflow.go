package workflow

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/unicode/norm"

	"github.com/Aman-CERP/wfkit/internal/alfred"
	"github.com/Aman-CERP/wfkit/internal/config"
	"github.com/Aman-CERP/wfkit/internal/keychain"
	"github.com/Aman-CERP/wfkit/internal/logging"
	"github.com/Aman-CERP/wfkit/internal/settings"
	"github.com/Aman-CERP/wfkit/internal/storage"
	"github.com/Aman-CERP/wfkit/internal/update"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
	"github.com/Aman-CERP/wfkit/pkg/filter"
)

// SessionVar carries the session id between runs of a Script Filter.
const SessionVar = "_WF_SESSION_ID"

// DefaultMagicPrefix starts every magic argument.
const DefaultMagicPrefix = "workflow:"

// CommandRunner runs an external command such as open(1).
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Workflow is the state of one workflow run.
type Workflow struct {
	mu sync.Mutex

	env      alfred.Env
	cfg      *config.Config
	dir      string
	cacheDir string
	dataDir  string
	args     []string

	cache    *storage.Cache
	store    *storage.Store
	settings *settings.Settings
	defaults map[string]any

	feedback  *feedback.Feedback
	matcher   *filter.Matcher
	sessionID string

	magicPrefix string
	magic       map[string]MagicFunc

	stdout     io.Writer
	tty        bool
	textErrors bool
	runCmd     CommandRunner
	keyRunner  keychain.Runner
	updates    *update.Client
	logCleanup func()
}

type options struct {
	dir         string
	lookup      func(string) string
	cfg         *config.Config
	defaults    map[string]any
	args        []string
	stdout      io.Writer
	textErrors  bool
	magicPrefix string
	runner      CommandRunner
	keyRunner   keychain.Runner
	updates     *update.Client
	logging     bool
	serializers []storage.Serializer
}

// Option configures a Workflow.
type Option func(*options)

// WithDir sets the workflow directory. By default it is found by
// climbing from the working directory to info.plist.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv replaces os.Getenv for reading Alfred's variables.
func WithEnv(lookup func(string) string) Option {
	return func(o *options) { o.lookup = lookup }
}

// WithConfig uses cfg instead of loading wfkit.yaml.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithDefaultSettings sets the values settings.json starts with.
func WithDefaultSettings(defaults map[string]any) Option {
	return func(o *options) { o.defaults = defaults }
}

// WithArgs replaces os.Args[1:].
func WithArgs(args ...string) Option {
	return func(o *options) { o.args = append([]string{}, args...) }
}

// WithOutput replaces os.Stdout as the feedback destination.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithTextErrors makes Run print errors as plain text instead of an
// error item, for workflows that are not Script Filters.
func WithTextErrors(text bool) Option {
	return func(o *options) { o.textErrors = text }
}

// WithMagicPrefix changes the "workflow:" prefix of magic arguments.
func WithMagicPrefix(prefix string) Option {
	return func(o *options) { o.magicPrefix = prefix }
}

// WithCommandRunner replaces the runner used to open files and URLs.
func WithCommandRunner(r CommandRunner) Option {
	return func(o *options) { o.runner = r }
}

// WithKeychainRunner replaces the runner that calls security(1).
func WithKeychainRunner(r keychain.Runner) Option {
	return func(o *options) { o.keyRunner = r }
}

// WithUpdateClient replaces the GitHub release client.
func WithUpdateClient(c *update.Client) Option {
	return func(o *options) { o.updates = c }
}

// WithLogging controls whether New installs the workflow logger as the
// default slog logger. It is on by default.
func WithLogging(enabled bool) Option {
	return func(o *options) { o.logging = enabled }
}

// WithSerializer makes s available to the cache and data store.
func WithSerializer(s storage.Serializer) Option {
	return func(o *options) { o.serializers = append(o.serializers, s) }
}

// New creates a Workflow from Alfred's environment and the workflow's
// configuration. The cache and data directories are created if needed.
func New(opts ...Option) (*Workflow, error) {
	o := options{
		lookup:      os.Getenv,
		magicPrefix: DefaultMagicPrefix,
		runner:      execRunner,
		logging:     true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.args == nil {
		o.args = os.Args[1:]
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}

	env := alfred.LoadEnv(o.lookup)

	dir := o.dir
	if dir == "" {
		found, err := alfred.FindWorkflowDir("")
		if err != nil {
			slog.Debug("no workflow directory", slog.String("error", err.Error()))
		}
		dir = found
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load(dir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyEnvIdentity(cfg, env)

	dirs, err := alfred.NewDirs(env, cfg.Workflow.BundleID)
	if err != nil {
		return nil, err
	}
	cacheDir, err := dirs.CacheDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := dirs.DataDir()
	if err != nil {
		return nil, err
	}

	registry := storage.NewRegistry()
	for _, s := range o.serializers {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	cacheSerializer, err := registry.Get(cfg.Storage.CacheSerializer)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(dataDir, registry, cfg.Storage.DataSerializer)
	if err != nil {
		return nil, err
	}

	wf := &Workflow{
		env:         env,
		cfg:         cfg,
		dir:         dir,
		cacheDir:    cacheDir,
		dataDir:     dataDir,
		args:        normalizeArgs(o.args),
		cache:       storage.NewCache(cacheDir, cacheSerializer),
		store:       store,
		defaults:    o.defaults,
		feedback:    feedback.New(),
		matcher:     filter.NewMatcher(cfg.Filter.PatternCacheSize),
		magicPrefix: o.magicPrefix,
		stdout:      o.stdout,
		tty:         isTerminal(o.stdout),
		textErrors:  o.textErrors,
		runCmd:      o.runner,
		keyRunner:   o.keyRunner,
		updates:     o.updates,
		logCleanup:  func() {},
	}

	if o.logging {
		logCfg := logging.DefaultConfig(wf.LogFile())
		logCfg.Level = cfg.Logging.Level
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		logCfg.MaxFiles = cfg.Logging.MaxFiles
		cleanup, err := logging.SetupScriptFilterMode(logCfg, env.Debugging())
		if err != nil {
			return nil, err
		}
		wf.logCleanup = cleanup
	}

	if id := o.lookup(SessionVar); id != "" {
		wf.sessionID = id
		wf.feedback.SetVar(SessionVar, id)
	}

	wf.registerDefaultMagic()
	return wf, nil
}

// applyEnvIdentity fills identity fields that neither wfkit.yaml nor
// info.plist provided from Alfred's environment.
func applyEnvIdentity(cfg *config.Config, env alfred.Env) {
	if cfg.Workflow.BundleID == "" {
		cfg.Workflow.BundleID = env.WorkflowBundleID
	}
	if cfg.Workflow.Name == "" {
		cfg.Workflow.Name = env.WorkflowName
	}
	if cfg.Workflow.Version == "" {
		cfg.Workflow.Version = env.WorkflowVersion
	}
}

// normalizeArgs converts arguments to NFC. macOS hands scripts decomposed
// text, which would not compare equal to composed keys.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = norm.NFC.String(a)
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close flushes and closes the log file.
func (w *Workflow) Close() {
	w.logCleanup()
}

// Env returns Alfred's environment.
func (w *Workflow) Env() alfred.Env { return w.env }

// Config returns the loaded configuration.
func (w *Workflow) Config() *config.Config { return w.cfg }

// Dir returns the workflow directory, or "" when it is unknown.
func (w *Workflow) Dir() string { return w.dir }

// BundleID returns the workflow's bundle id.
func (w *Workflow) BundleID() string { return w.cfg.Workflow.BundleID }

// Version returns the workflow's version string, possibly empty.
func (w *Workflow) Version() string { return w.cfg.Workflow.Version }

// HelpURL returns the URL opened by workflow:help.
func (w *Workflow) HelpURL() string { return w.cfg.Workflow.HelpURL }

// Name returns the workflow name, falling back to the bundle id.
func (w *Workflow) Name() string {
	if w.cfg.Workflow.Name != "" {
		return w.cfg.Workflow.Name
	}
	return w.cfg.Workflow.BundleID
}

// Debugging reports whether Alfred's debugger is open.
func (w *Workflow) Debugging() bool { return w.env.Debugging() }

// Args returns the script's arguments, NFC-normalised.
func (w *Workflow) Args() []string { return w.args }

// Query returns the first argument, or "".
func (w *Workflow) Query() string {
	if len(w.args) == 0 {
		return ""
	}
	return w.args[0]
}

// CacheDir returns the workflow's cache directory.
func (w *Workflow) CacheDir() string { return w.cacheDir }

// DataDir returns the workflow's data directory.
func (w *Workflow) DataDir() string { return w.dataDir }

// CacheFile returns the path of name in the cache directory.
func (w *Workflow) CacheFile(name string) string { return filepath.Join(w.cacheDir, name) }

// DataFile returns the path of name in the data directory.
func (w *Workflow) DataFile(name string) string { return filepath.Join(w.dataDir, name) }

// LogFile returns the path of the workflow's log file.
func (w *Workflow) LogFile() string {
	return logging.LogPath(w.cacheDir, w.BundleID())
}

// Cache returns the workflow cache.
func (w *Workflow) Cache() *storage.Cache { return w.cache }

// SessionCache returns a cache scoped to the current session.
func (w *Workflow) SessionCache() *storage.Cache {
	return w.cache.WithSession(w.SessionID())
}

// Store returns the persistent data store.
func (w *Workflow) Store() *storage.Store { return w.store }

// Keychain returns the keychain for the workflow's bundle id.
func (w *Workflow) Keychain() *keychain.Keychain {
	if w.keyRunner != nil {
		return keychain.New(w.BundleID(), keychain.WithRunner(w.keyRunner))
	}
	return keychain.New(w.BundleID())
}

// Settings opens settings.json on first use.
func (w *Workflow) Settings() (*settings.Settings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.settings != nil {
		return w.settings, nil
	}
	s, err := settings.Open(w.DataFile(settings.FileName), w.defaults)
	if err != nil {
		return nil, err
	}
	w.settings = s
	return s, nil
}

// Cached returns the cached value for name when younger than maxAge, and
// otherwise calls fetch and caches its result.
func Cached[T any](w *Workflow, name string, maxAge time.Duration, fetch func() (T, error)) (T, error) {
	return storage.Cached(w.cache, name, maxAge, fetch)
}

// SessionCached is Cached scoped to the current session.
func SessionCached[T any](w *Workflow, name string, fetch func() (T, error)) (T, error) {
	return storage.Cached(w.SessionCache(), name, 0, fetch)
}
