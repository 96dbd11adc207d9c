package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// Then: every subcommand is reachable
	for _, name := range []string{
		"filter", "try", "status", "settings", "cache",
		"keychain", "update", "logs", "config", "version",
	} {
		t.Run(name, func(t *testing.T) {
			found, _, err := root.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
		})
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, "", "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "wfkit version")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	assert.NotNil(t, root.PersistentFlags().Lookup("dir"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRootCmd_UnknownCommandFails(t *testing.T) {
	_, err := executeCommand(t, "", "nosuchcommand")

	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "workflow error uses code and suggestion",
			err:  wferrors.New(wferrors.ErrCodeInvalidInput, "no setting \"x\"", nil).WithSuggestion("Run 'wfkit settings list'"),
			want: "no setting \"x\"",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "Error: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}

			printError(buf, tt.err)

			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
