package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("📁", "Location: /tmp/wfkit.yaml")

	// Then: output contains icon and message
	assert.Equal(t, "📁 Location: /tmp/wfkit.yaml\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("", "next step")

	assert.Equal(t, "   next step\n", buf.String())
}

func TestWriter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Successf("Saved %d", 2) }, "✅ Saved 2\n"},
		{"warning", func(w *Writer) { w.Warningf("No %s", "cache") }, "⚠️  No cache\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Buffers are not terminals, so no color codes are written
			buf := &bytes.Buffer{}
			tt.write(New(buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_KeyValues_SortedAndAligned(t *testing.T) {
	// Given: mixed settings values
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: listing them
	w.KeyValues(map[string]any{
		"theme":                 "dark",
		"__workflow_autoupdate": false,
		"count":                 float64(3),
	})

	// Then: keys are sorted, padded, and non-strings are JSON
	assert.Equal(t,
		"__workflow_autoupdate  false\n"+
			"count                  3\n"+
			"theme                  dark\n",
		buf.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", FormatValue("plain"))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, `["a","b"]`, FormatValue([]any{"a", "b"}))
	assert.Equal(t, "null", FormatValue(nil))
}

func TestWriter_Newline(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Newline()
	assert.Equal(t, "\n", buf.String())
}
