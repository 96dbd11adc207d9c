package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a WorkflowError
	err := New(ErrCodeFileNotFound, "settings.json not found", nil)

	// When: formatting for the user
	msg := FormatForUser(err, false)

	// Then: message and code are shown
	assert.Contains(t, msg, "Error: settings.json not found")
	assert.Contains(t, msg, "[ERR_201_FILE_NOT_FOUND]")
}

func TestFormatForUser_WithSuggestion(t *testing.T) {
	err := New(ErrCodeNoBundleID, "bundle ID is not set", nil).
		WithSuggestion("Run the workflow from Alfred or set alfred_workflow_bundleid")

	msg := FormatForUser(err, false)

	assert.Contains(t, msg, "Suggestion: Run the workflow from Alfred")
}

func TestFormatForUser_DebugShowsCauseAndDetails(t *testing.T) {
	err := New(ErrCodeDownloadFailed, "download failed", errors.New("unexpected EOF")).
		WithDetail("url", "https://example.com/a.alfredworkflow").
		WithDetail("attempt", "3")

	normal := FormatForUser(err, false)
	debug := FormatForUser(err, true)

	assert.NotContains(t, normal, "unexpected EOF")
	assert.Contains(t, debug, "Cause: unexpected EOF")
	assert.Contains(t, debug, "  attempt: 3\n  url: https://example.com/a.alfredworkflow\n")
}

func TestFormatForUser_WrappedWorkflowError(t *testing.T) {
	err := fmt.Errorf("load cache: %w", New(ErrCodeFileCorrupt, "cache file is corrupt", nil))

	msg := FormatForUser(err, false)

	assert.Contains(t, msg, "Error: cache file is corrupt")
	assert.Contains(t, msg, "[ERR_204_FILE_CORRUPT]")
}

func TestFormatForUser_StandardError(t *testing.T) {
	assert.Equal(t, "plain failure", FormatForUser(errors.New("plain failure"), false))
}

func TestFormatForUser_NilError(t *testing.T) {
	assert.Empty(t, FormatForUser(nil, false))
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	err := New(ErrCodeInvalidRules, `unknown match rule "fuzzy"`, nil).
		WithSuggestion("Use names like startswith,substring or a number like 96")

	msg := FormatForCLI(err)

	assert.Equal(t, "Error: unknown match rule \"fuzzy\"\n"+
		"  Hint: Use names like startswith,substring or a number like 96\n"+
		"  Code: ERR_404_INVALID_RULES\n", msg)
}

func TestFormatForCLI_StandardErrorIsInternal(t *testing.T) {
	msg := FormatForCLI(errors.New("boom"))

	assert.Contains(t, msg, "Error: boom")
	assert.Contains(t, msg, "Code: ERR_501_INTERNAL")
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForLog(t *testing.T) {
	err := New(ErrCodeKeychainFailed, "security exited with 51", errors.New("exit status 51")).
		WithDetail("service", "com.example.wf")

	fields := map[string]any{}
	for _, a := range FormatForLog(err).Group() {
		fields[a.Key] = a.Value.Any()
	}

	assert.Equal(t, ErrCodeKeychainFailed, fields["code"])
	assert.Equal(t, "KEYCHAIN", fields["category"])
	assert.Equal(t, "exit status 51", fields["cause"])
	assert.Equal(t, false, fields["retryable"])

	plain := FormatForLog(errors.New("plain")).Group()
	assert.Equal(t, []slog.Attr{slog.String("error", "plain")}, plain)
	assert.Equal(t, slog.KindAny, FormatForLog(nil).Kind())
}

func TestWorkflowError_LogValue(t *testing.T) {
	// Given: a JSON logger
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	err := New(ErrCodeDownloadFailed, "download failed", nil).
		WithDetail("url", "https://example.com/a.alfredworkflow")

	// When: logging the error directly
	logger.Error("update failed", slog.Any("error", err))

	// Then: it is written as a nested object
	assert.Contains(t, buf.String(), `"error":{"code":"ERR_303_DOWNLOAD_FAILED","message":"download failed"`)
	assert.Contains(t, buf.String(), `"details":{"url":"https://example.com/a.alfredworkflow"}`)
}
