package alfred

import (
	"fmt"
	"os"
	"path/filepath"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// Default locations used by Alfred 4 and later when the environment does
// not name them, relative to the user's home directory.
const (
	defaultCacheRoot = "Library/Caches/com.runningwithcrayons.Alfred/Workflow Data"
	defaultDataRoot  = "Library/Application Support/Alfred/Workflow Data"
)

// Dirs resolves the workflow's cache and data directories.
type Dirs struct {
	env      Env
	bundleID string
	home     string
}

// NewDirs returns directory resolution for bundleID.
// Alfred's alfred_workflow_cache/alfred_workflow_data take precedence.
func NewDirs(env Env, bundleID string) (*Dirs, error) {
	if bundleID == "" {
		bundleID = env.WorkflowBundleID
	}
	home, err := os.UserHomeDir()
	if err != nil && (env.WorkflowCache == "" || env.WorkflowData == "") {
		return nil, wferrors.IOError("cannot resolve home directory", err)
	}
	if bundleID == "" && (env.WorkflowCache == "" || env.WorkflowData == "") {
		return nil, wferrors.New(wferrors.ErrCodeNoBundleID, "workflow has no bundle id", nil)
	}
	return &Dirs{env: env, bundleID: bundleID, home: home}, nil
}

// CacheDir returns the cache directory, creating it if needed.
func (d *Dirs) CacheDir() (string, error) {
	dir := d.env.WorkflowCache
	if dir == "" {
		dir = filepath.Join(d.home, defaultCacheRoot, d.bundleID)
	}
	return ensureDir(dir)
}

// DataDir returns the data directory, creating it if needed.
func (d *Dirs) DataDir() (string, error) {
	dir := d.env.WorkflowData
	if dir == "" {
		dir = filepath.Join(d.home, defaultDataRoot, d.bundleID)
	}
	return ensureDir(dir)
}

// CacheFile returns the path of name inside the cache directory.
func (d *Dirs) CacheFile(name string) (string, error) {
	dir, err := d.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DataFile returns the path of name inside the data directory.
func (d *Dirs) DataFile(name string) (string, error) {
	dir, err := d.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		code := wferrors.ErrCodeFileNotFound
		if os.IsPermission(err) {
			code = wferrors.ErrCodeFilePermission
		}
		return "", wferrors.New(code, fmt.Sprintf("cannot create %s", dir), err)
	}
	return dir, nil
}

// FindWorkflowDir climbs from start until it finds a directory holding
// info.plist. An empty start uses the working directory.
func FindWorkflowDir(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", wferrors.IOError("cannot get working directory", err)
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", wferrors.IOError("cannot resolve path", err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, "info.plist")); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", wferrors.New(wferrors.ErrCodeConfigNotFound,
				fmt.Sprintf("info.plist not found above %s", start), nil).
				WithSuggestion("Run wfkit from inside the workflow directory, or pass --dir")
		}
		dir = parent
	}
}
