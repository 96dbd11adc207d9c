package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/wfkit/internal/ui"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
)

func TestChosenValue(t *testing.T) {
	items := []*feedback.Item{
		feedback.NewItem("Safari").SetArg("/Applications/Safari.app"),
		feedback.NewItem("Mail").SetSubtitle("Apple"),
	}

	tests := []struct {
		name string
		row  ui.Row
		want string
	}{
		{"item with arg", ui.Row{Title: "Safari"}, "/Applications/Safari.app"},
		{"item without arg", ui.Row{Title: "Mail", Subtitle: "Apple"}, "Mail"},
		{"unknown row", ui.Row{Title: "Notes"}, "Notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chosenValue(items, tt.row))
		})
	}
}

func TestTryCmd_MissingFile(t *testing.T) {
	dir := testWorkflowDir(t, "")

	_, err := executeCommand(t, "", "--dir", dir, "try", "--file", "/nonexistent/items.txt")

	assert.Error(t, err)
}
