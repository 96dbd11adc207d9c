package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/config"
	"github.com/Aman-CERP/wfkit/internal/ui"
	"github.com/Aman-CERP/wfkit/pkg/feedback"
	"github.com/Aman-CERP/wfkit/pkg/filter"
)

// Output formats of the filter command.
const (
	formatAuto   = "auto"
	formatAlfred = "alfred"
	formatTable  = "table"
	formatPlain  = "plain"
)

type filterOptions struct {
	jsonInput  bool
	matchOn    string
	ascending  bool
	minScore   float64
	maxResults int
	noFold     bool
	scores     bool
	format     string
	pretty     bool
}

func newFilterCmd() *cobra.Command {
	var opts filterOptions

	cmd := &cobra.Command{
		Use:   "filter [query]",
		Short: "Rank items read from stdin against a query",
		Long: `Rank Script Filter items against a query.

Items are read from stdin, one title per line, or as JSON with --json
(a feedback document or an array of items). Items with a "match" field
are searched on it instead of the title.

Defaults for the match rules, diacritic folding, minimum score and
maximum results come from the workflow's wfkit.yaml when there is one.

Output is Alfred feedback JSON, or a table when stdout is a terminal.`,
		Example: `  # Rank application names
  ls /Applications | wfkit filter saf

  # Only match on prefixes and initials, show scores
  ls /Applications | wfkit filter --match-on startswith,initials --scores gc

  # Re-rank another Script Filter's output
  ./list-items.sh | wfkit filter --json "$1"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runFilter(cmd, query, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonInput, "json", false, "Read items as Alfred JSON")
	cmd.Flags().StringVar(&opts.matchOn, "match-on", "", "Match rules, e.g. all, startswith,atom or 96")
	cmd.Flags().BoolVar(&opts.ascending, "ascending", false, "Show worst matches first")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Drop results scoring at or below this")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "Maximum number of results (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.noFold, "no-fold", false, "Do not fold diacritics")
	cmd.Flags().BoolVar(&opts.scores, "scores", false, "Show scores and matching rules")
	cmd.Flags().StringVar(&opts.format, "format", formatAuto, "Output format: auto, alfred, table, plain")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent Alfred JSON output")

	return cmd
}

func runFilter(cmd *cobra.Command, query string, opts filterOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	filterOpts, err := filterOptionsFor(cmd, cfg, opts)
	if err != nil {
		return err
	}

	items, err := readItems(cmd.InOrStdin(), opts.jsonInput)
	if err != nil {
		return err
	}

	results := filter.FilterScored(query, items, itemKey, filterOpts...)
	return writeResults(cmd.OutOrStdout(), query, results, opts)
}

// filterOptionsFor combines the configured filter defaults with the
// flags the user set.
func filterOptionsFor(cmd *cobra.Command, cfg *config.Config, opts filterOptions) ([]filter.Option, error) {
	fc := cfg.Filter
	flags := cmd.Flags()
	if flags.Changed("match-on") {
		fc.MatchOn = opts.matchOn
	}
	if flags.Changed("min-score") {
		fc.MinScore = opts.minScore
	}
	if flags.Changed("max-results") {
		fc.MaxResults = opts.maxResults
	}
	fold := !opts.noFold && foldDefault(cmd, cfg)

	filterOpts, err := fc.Options(fold)
	if err != nil {
		return nil, err
	}
	return append(filterOpts,
		filter.WithAscending(opts.ascending),
		filter.WithMatcher(filter.NewMatcher(fc.PatternCacheSize)),
	), nil
}

// foldDefault is the workflow's own folding choice, including the user's
// workflow:foldingon/foldingoff setting. Outside a workflow wfkit.yaml
// and the user config decide.
func foldDefault(cmd *cobra.Command, cfg *config.Config) bool {
	wf, err := openWorkflow(cmd)
	if err != nil {
		return cfg.Filter.FoldDiacriticsEnabled()
	}
	defer wf.Close()
	return wf.FoldDiacritics()
}

func writeResults(out io.Writer, query string, results []filter.Result[*feedback.Item], opts filterOptions) error {
	format := opts.format
	if format == formatAuto {
		if ui.IsTTY(out) {
			// Table, or plain text under CI
			return ui.NewRenderer(ui.NewConfig(out)).Render(query, toRows(results), opts.scores)
		}
		format = formatAlfred
	}

	switch format {
	case formatAlfred:
		fb := feedback.New()
		for _, r := range results {
			if opts.scores {
				r.Item.SetVar("score", ui.FormatScore(r.Score)).SetVar("rule", r.Rule.String())
			}
			fb.Items = append(fb.Items, r.Item)
		}
		return fb.Write(out, opts.pretty)
	case formatTable:
		return ui.NewTableRenderer(ui.NewConfig(out, ui.WithNoColor(ui.DetectNoColor()))).
			Render(query, toRows(results), opts.scores)
	case formatPlain:
		return ui.NewPlainRenderer(ui.NewConfig(out)).Render(query, toRows(results), opts.scores)
	default:
		return fmt.Errorf("unknown format %q (use: %s)", opts.format,
			strings.Join([]string{formatAuto, formatAlfred, formatTable, formatPlain}, ", "))
	}
}

func toRows(results []filter.Result[*feedback.Item]) []ui.Row {
	rows := make([]ui.Row, len(results))
	for i, r := range results {
		rows[i] = ui.Row{
			Title:    r.Item.Title,
			Subtitle: r.Item.Subtitle,
			Score:    r.Score,
		}
		if r.Rule != filter.MatchNone {
			rows[i].Rule = r.Rule.String()
		}
	}
	return rows
}
