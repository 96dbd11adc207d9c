package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
)

// TableRenderer draws results as a bordered table.
type TableRenderer struct {
	out    io.Writer
	styles Styles
	width  int
}

// NewTableRenderer creates a table renderer.
func NewTableRenderer(cfg Config) *TableRenderer {
	return &TableRenderer{
		out:    cfg.Output,
		styles: GetStyles(cfg.NoColor),
		width:  cfg.Width,
	}
}

// Render implements Renderer.
func (r *TableRenderer) Render(query string, rows []Row, showScores bool) error {
	_, err := fmt.Fprintln(r.out, RenderTable(r.styles, query, rows, showScores, r.width))
	return err
}

// RenderTable returns the table for rows as a string.
func RenderTable(styles Styles, query string, rows []Row, showScores bool, width int) string {
	header := styles.Header.Render(fmt.Sprintf("%d results", len(rows)))
	if query != "" {
		header = styles.Header.Render(fmt.Sprintf("%d results for %q", len(rows), query))
	}
	if len(rows) == 0 {
		return header + "\n" + styles.Dim.Render("no matches")
	}

	headers := []string{"#", "Title", "Subtitle"}
	if showScores {
		headers = append(headers, "Score", "Rule")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Label.Padding(0, 1)
			}
			switch col {
			case 0:
				return styles.Dim.Padding(0, 1)
			case 1:
				return styles.Title.Padding(0, 1)
			case 2:
				return styles.Subtitle.Padding(0, 1)
			case 3:
				return styles.Score.Padding(0, 1)
			default:
				return styles.Rule.Padding(0, 1)
			}
		})
	if width > 0 {
		t = t.Width(width)
	}

	for i, row := range rows {
		cells := []string{fmt.Sprint(i + 1), Truncate(row.Title, 60), Truncate(row.Subtitle, 60)}
		if showScores {
			cells = append(cells, FormatScore(row.Score), row.Rule)
		}
		t.Row(cells...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, t.Render())
}

// Truncate shortens s to at most max terminal cells, ending in "…" when
// cut. Wide runes count as two cells.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(max), "…")
}

var _ Renderer = (*TableRenderer)(nil)
