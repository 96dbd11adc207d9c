package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wfkit/pkg/workflow"
)

const testInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>bundleid</key>
	<string>net.example.demo</string>
	<key>name</key>
	<string>Demo</string>
	<key>version</key>
	<string>1.2.0</string>
</dict>
</plist>
`

// testWorkflowDir creates a workflow directory with info.plist and points
// Alfred's cache and data variables at private directories. wfkitYAML, if
// not empty, is written as the workflow's wfkit.yaml.
func testWorkflowDir(t *testing.T, wfkitYAML string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.plist"), []byte(testInfoPlist), 0o644))
	if wfkitYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "wfkit.yaml"), []byte(wfkitYAML), 0o644))
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("alfred_workflow_bundleid", "")
	t.Setenv("alfred_workflow_cache", filepath.Join(t.TempDir(), "cache"))
	t.Setenv("alfred_workflow_data", filepath.Join(t.TempDir(), "data"))
	for _, key := range []string{
		"WFKIT_MATCH_ON", "WFKIT_FOLD_DIACRITICS", "WFKIT_MIN_SCORE",
		"WFKIT_MAX_RESULTS", "WFKIT_GITHUB_SLUG", "WFKIT_LOG_LEVEL",
		"NO_COLOR",
	} {
		t.Setenv(key, "")
	}
	return dir
}

// withOptions installs workflow options for the duration of the test.
func withOptions(t *testing.T, opts ...workflow.Option) {
	t.Helper()
	testOptions = opts
	t.Cleanup(func() { testOptions = nil })
}

// executeCommand runs the root command with args and stdin, and returns
// what it wrote to stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// openTestWorkflow opens the workflow in dir the way commands do.
func openTestWorkflow(t *testing.T, dir string) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.New(
		workflow.WithDir(dir),
		workflow.WithArgs(),
		workflow.WithLogging(false),
		workflow.WithOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err)
	t.Cleanup(wf.Close)
	return wf
}
