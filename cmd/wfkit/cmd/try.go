package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/ui"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
	"github.com/Aman-CERP/wfkit/pkg/filter"
)

func newTryCmd() *cobra.Command {
	var (
		opts filterOptions
		file string
	)

	cmd := &cobra.Command{
		Use:   "try [query]",
		Short: "Preview rankings interactively",
		Long: `Open an interactive preview that re-ranks items as you type.

Items are read from --file, or from stdin when it is not a terminal.
The chosen item's arg (or title) is printed on exit.`,
		Example: `  ls /Applications | wfkit try
  wfkit try --file items.json --json --scores`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runTry(cmd, query, file, opts)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read items from this file instead of stdin")
	cmd.Flags().BoolVar(&opts.jsonInput, "json", false, "Read items as Alfred JSON")
	cmd.Flags().StringVar(&opts.matchOn, "match-on", "", "Match rules, e.g. all, startswith,atom or 96")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Drop results scoring at or below this")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "Maximum number of results (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.noFold, "no-fold", false, "Do not fold diacritics")
	cmd.Flags().BoolVar(&opts.scores, "scores", false, "Show scores and matching rules")

	return cmd
}

func runTry(cmd *cobra.Command, query, file string, opts filterOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	filterOpts, err := filterOptionsFor(cmd, cfg, opts)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open items: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	} else if in == os.Stdin && ui.IsTTY(os.Stdin) {
		return fmt.Errorf("no items: pipe them to stdin or use --file")
	}

	items, err := readItems(in, opts.jsonInput)
	if err != nil {
		return err
	}
	search := func(q string) []ui.Row {
		return toRows(filter.FilterScored(q, items, itemKey, filterOpts...))
	}

	row, err := ui.RunTry(cmd.Context(), ui.TryConfig{
		Search:     search,
		Query:      query,
		ShowScores: opts.scores,
	})
	if err != nil || row == nil {
		return err
	}

	// Print what Alfred would pass on for the chosen item
	_, err = fmt.Fprintln(cmd.OutOrStdout(), chosenValue(items, *row))
	return err
}

// chosenValue returns the first arg of the item behind row, or its title.
func chosenValue(items []*feedback.Item, row ui.Row) string {
	for _, it := range items {
		if it.Title == row.Title && it.Subtitle == row.Subtitle {
			if len(it.Arg) > 0 {
				return it.Arg[0]
			}
			break
		}
	}
	return row.Title
}
