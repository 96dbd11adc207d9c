package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wfkit/pkg/version"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, version.String() + "\n"},
		{"short", []string{"--short"}, version.Short() + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, "", append([]string{"version"}, tt.args...)...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := executeCommand(t, "", "version", "--json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.GetInfo(), info)
}

func TestVersionCmd_RejectsConflictingFlags(t *testing.T) {
	_, err := executeCommand(t, "", "version", "--json", "--short")

	assert.Error(t, err)
}
