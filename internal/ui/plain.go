package ui

import (
	"fmt"
	"io"
	"strconv"
)

// PlainRenderer writes one tab-separated line per result, for pipes and
// scripts.
type PlainRenderer struct {
	out io.Writer
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Render implements Renderer. Lines are "title[\tsubtitle]" or, with
// showScores, "score\trule\ttitle[\tsubtitle]".
func (r *PlainRenderer) Render(_ string, rows []Row, showScores bool) error {
	for _, row := range rows {
		line := row.Title
		if row.Subtitle != "" {
			line += "\t" + row.Subtitle
		}
		if showScores {
			line = FormatScore(row.Score) + "\t" + row.Rule + "\t" + line
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatScore formats a score with two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

var _ Renderer = (*PlainRenderer)(nil)
