package errors

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// FormatForUser renders err for people reading a workflow's text output.
// With debug set the cause and details are included too.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}
	we, ok := As(err)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", we.Message)
	if we.Suggestion != "" {
		fmt.Fprintf(&b, "\nSuggestion: %s\n", we.Suggestion)
	}
	if debug {
		if we.Cause != nil {
			fmt.Fprintf(&b, "\nCause: %s\n", we.Cause)
		}
		for _, k := range slices.Sorted(maps.Keys(we.Details)) {
			fmt.Fprintf(&b, "  %s: %s\n", k, we.Details[k])
		}
	}
	fmt.Fprintf(&b, "\n[%s]", we.Code)
	return b.String()
}

// FormatForCLI renders err for the wfkit command line: the message, an
// optional hint and the code. Plain errors are reported as internal.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	we, ok := As(err)
	if !ok {
		we = Wrap(ErrCodeInternal, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", we.Message)
	if we.Suggestion != "" {
		fmt.Fprintf(&b, "  Hint: %s\n", we.Suggestion)
	}
	fmt.Fprintf(&b, "  Code: %s\n", we.Code)
	return b.String()
}

// FormatForLog returns err as a log group. WorkflowErrors carry their code,
// classification, cause and details; other errors only their text.
func FormatForLog(err error) slog.Value {
	if err == nil {
		return slog.Value{}
	}
	if we, ok := As(err); ok {
		return we.LogValue()
	}
	return slog.GroupValue(slog.String("error", err.Error()))
}

// LogValue implements slog.LogValuer.
func (e *WorkflowError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("message", e.Message),
		slog.String("category", string(e.Category)),
		slog.String("severity", string(e.Severity)),
		slog.Bool("retryable", e.Retryable),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	if e.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", e.Suggestion))
	}
	if len(e.Details) > 0 {
		details := make([]any, 0, len(e.Details))
		for _, k := range slices.Sorted(maps.Keys(e.Details)) {
			details = append(details, slog.String(k, e.Details[k]))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}
	return slog.GroupValue(attrs...)
}

var _ slog.LogValuer = (*WorkflowError)(nil)
