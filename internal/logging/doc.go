// Package logging configures structured JSON logging for workflows.
//
// Logs go to a size-rotated file in the workflow's cache directory and to
// stderr, which Alfred shows in its workflow debugger. Stdout is never
// written: it carries the Script Filter JSON.
package logging
