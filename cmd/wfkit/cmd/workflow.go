package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/alfred"
	"github.com/Aman-CERP/wfkit/internal/config"
	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
	"github.com/Aman-CERP/wfkit/pkg/workflow"
)

// testOptions are appended to every workflow opened by a command.
// Tests use them to replace external commands and servers.
var testOptions []workflow.Option

// openWorkflow opens the workflow in --dir, or the one containing the
// working directory. The CLI's logger stays installed.
func openWorkflow(cmd *cobra.Command) (*workflow.Workflow, error) {
	opts := []workflow.Option{
		workflow.WithArgs(),
		workflow.WithLogging(false),
		workflow.WithOutput(cmd.OutOrStdout()),
	}
	if workflowDir != "" {
		opts = append(opts, workflow.WithDir(workflowDir))
	}
	opts = append(opts, testOptions...)

	return workflow.New(opts...)
}

// loadConfig loads the configuration of the workflow in --dir or the
// working directory. Outside a workflow the user config and defaults apply.
func loadConfig() (*config.Config, error) {
	dir := workflowDir
	if dir == "" {
		dir, _ = alfred.FindWorkflowDir("")
	}
	return config.Load(dir)
}

// readItems reads Script Filter items from r. With jsonInput, r holds a
// feedback document or a JSON array of items. Otherwise each non-blank
// line becomes a valid item whose title and arg are the line.
func readItems(r io.Reader, jsonInput bool) ([]*feedback.Item, error) {
	if jsonInput {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, wferrors.IOError("cannot read items", err)
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			return nil, nil
		}
		if data[0] == '[' {
			var items []*feedback.Item
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, wferrors.ValidationError("invalid item array", err)
			}
			return items, nil
		}
		fb, err := feedback.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, wferrors.ValidationError("invalid feedback document", err)
		}
		return fb.Items, nil
	}

	var items []*feedback.Item
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		items = append(items, feedback.NewItem(line).SetArg(line).SetValid(true))
	}
	if err := scanner.Err(); err != nil {
		return nil, wferrors.IOError("cannot read items", err)
	}
	return items, nil
}

// itemKey returns the search key of an item: its match field when set,
// otherwise its title.
func itemKey(it *feedback.Item) string {
	if it.Match != "" {
		return it.Match
	}
	return it.Title
}

// printError writes err the way the CLI reports failures.
func printError(w io.Writer, err error) {
	if _, ok := wferrors.As(err); ok {
		_, _ = io.WriteString(w, wferrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
