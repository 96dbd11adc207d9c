package alfred

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

func lookupFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

// =============================================================================
// Environment
// =============================================================================

func TestLoadEnv(t *testing.T) {
	// Given: the variables Alfred sets for a Script Filter
	env := LoadEnv(lookupFrom(map[string]string{
		"alfred_debug":             "1",
		"alfred_version":           "5.5",
		"alfred_version_build":     "2257",
		"alfred_theme_subtext":     "3",
		"alfred_workflow_bundleid": "net.example.apps",
		"alfred_workflow_name":     "App Launcher",
		"alfred_workflow_version":  "1.2.0",
		"alfred_workflow_cache":    "/tmp/cache",
		"alfred_workflow_data":     "/tmp/data",
		"alfred_workflow_uid":      "user.workflow.ABC",
		"alfred_preferences":       "/Users/me/Alfred.alfredpreferences",
	}))

	// Then: every field is populated and numbers are parsed
	assert.Equal(t, 1, env.Debug)
	assert.True(t, env.Debugging())
	assert.True(t, env.InAlfred())
	assert.Equal(t, "5.5", env.Version)
	assert.Equal(t, 2257, env.VersionBuild)
	assert.Equal(t, 3, env.ThemeSubtext)
	assert.Equal(t, "net.example.apps", env.WorkflowBundleID)
	assert.Equal(t, "App Launcher", env.WorkflowName)
	assert.Equal(t, "1.2.0", env.WorkflowVersion)
	assert.Equal(t, "/tmp/cache", env.WorkflowCache)
	assert.Equal(t, "/tmp/data", env.WorkflowData)
	assert.Equal(t, "user.workflow.ABC", env.WorkflowUID)
}

func TestLoadEnv_OutsideAlfred(t *testing.T) {
	env := LoadEnv(lookupFrom(nil))

	assert.Equal(t, Env{}, env)
	assert.False(t, env.Debugging())
	assert.False(t, env.InAlfred())
	assert.Empty(t, env.Map())
}

func TestLoadEnv_BadNumbersAreZero(t *testing.T) {
	env := LoadEnv(lookupFrom(map[string]string{
		"alfred_debug":         "yes",
		"alfred_version_build": "",
	}))

	assert.Zero(t, env.Debug)
	assert.Zero(t, env.VersionBuild)
}

func TestLoadEnv_ProcessEnvironment(t *testing.T) {
	t.Setenv("alfred_workflow_bundleid", "net.example.proc")

	env := LoadEnv(nil)

	assert.Equal(t, "net.example.proc", env.WorkflowBundleID)
}

func TestEnv_Map(t *testing.T) {
	env := Env{Debug: 1, Version: "5.5", WorkflowBundleID: "net.example.apps"}

	assert.Equal(t, map[string]string{
		"debug":             "1",
		"version":           "5.5",
		"workflow_bundleid": "net.example.apps",
	}, env.Map())
}

// =============================================================================
// Directories
// =============================================================================

func TestDirs_FromEnvironment(t *testing.T) {
	// Given: Alfred names both directories
	root := t.TempDir()
	env := Env{
		WorkflowCache: filepath.Join(root, "cache"),
		WorkflowData:  filepath.Join(root, "data"),
	}

	// When: resolving them without a bundle id
	dirs, err := NewDirs(env, "")
	require.NoError(t, err)

	cache, err := dirs.CacheDir()
	require.NoError(t, err)
	data, err := dirs.DataDir()
	require.NoError(t, err)

	// Then: the environment wins and the directories exist
	assert.Equal(t, env.WorkflowCache, cache)
	assert.Equal(t, env.WorkflowData, data)
	assert.DirExists(t, cache)
	assert.DirExists(t, data)

	file, err := dirs.CacheFile("apps.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "apps.json"), file)
}

func TestDirs_Defaults(t *testing.T) {
	// Given: a fake home and no Alfred environment
	home := t.TempDir()
	t.Setenv("HOME", home)

	dirs, err := NewDirs(Env{}, "net.example.apps")
	require.NoError(t, err)

	cache, err := dirs.CacheDir()
	require.NoError(t, err)
	data, err := dirs.DataFile("settings.json")
	require.NoError(t, err)

	// Then: Alfred 4+ default locations are used
	assert.Equal(t, filepath.Join(home, "Library", "Caches", "com.runningwithcrayons.Alfred",
		"Workflow Data", "net.example.apps"), cache)
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "Alfred",
		"Workflow Data", "net.example.apps", "settings.json"), data)
}

func TestDirs_EnvBundleIDUsedWhenNoneGiven(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dirs, err := NewDirs(Env{WorkflowBundleID: "net.example.env"}, "")
	require.NoError(t, err)

	cache, err := dirs.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "net.example.env", filepath.Base(cache))
}

func TestNewDirs_NoBundleID(t *testing.T) {
	_, err := NewDirs(Env{}, "")

	require.Error(t, err)
	assert.Equal(t, wferrors.ErrCodeNoBundleID, wferrors.GetCode(err))
}

// =============================================================================
// Workflow directory discovery
// =============================================================================

func TestFindWorkflowDir(t *testing.T) {
	// Given: a workflow with a nested script directory
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.plist"), []byte("<plist/>"), 0o644))
	nested := filepath.Join(root, "scripts", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// When: searching from the nested directory
	found, err := FindWorkflowDir(nested)

	// Then: the workflow root is found
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindWorkflowDir_WorkingDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "info.plist"), []byte("<plist/>"), 0o644))
	t.Chdir(root)

	found, err := FindWorkflowDir("")

	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	foundResolved, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolved, foundResolved)
}

func TestFindWorkflowDir_NotFound(t *testing.T) {
	_, err := FindWorkflowDir(t.TempDir())

	require.Error(t, err)
	assert.Equal(t, wferrors.ErrCodeConfigNotFound, wferrors.GetCode(err))
}
