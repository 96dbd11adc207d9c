package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchFunc ranks the candidate items for query.
type SearchFunc func(query string) []Row

// TryConfig configures the interactive filter preview.
type TryConfig struct {
	// Input defaults to the controlling terminal so items can be piped in
	// on stdin.
	Input      io.Reader
	Output     io.Writer
	Search     SearchFunc
	Query      string
	ShowScores bool
	NoColor    bool
}

// RunTry runs an interactive preview that re-ranks items on every
// keystroke. It returns the row chosen with enter, or nil when the user
// quits.
func RunTry(ctx context.Context, cfg TryConfig) (*Row, error) {
	if cfg.Search == nil {
		return nil, fmt.Errorf("no search function")
	}
	model := newTryModel(cfg)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	} else {
		opts = append(opts, tea.WithInputTTY())
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("interactive preview failed: %w", err)
	}
	return final.(*tryModel).chosen, nil
}

// tryModel is the bubbletea model for the interactive preview.
type tryModel struct {
	input      textinput.Model
	search     SearchFunc
	rows       []Row
	elapsed    time.Duration
	cursor     int
	chosen     *Row
	quitting   bool
	showScores bool
	styles     Styles
	width      int
	height     int
}

func newTryModel(cfg TryConfig) *tryModel {
	styles := GetStyles(cfg.NoColor || DetectNoColor())

	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "› "
	ti.PromptStyle = styles.Prompt
	ti.SetValue(cfg.Query)
	ti.Focus()

	m := &tryModel{
		input:      ti,
		search:     cfg.Search,
		showScores: cfg.ShowScores,
		styles:     styles,
		width:      80,
		height:     24,
	}
	m.refresh()
	return m
}

// refresh re-runs the search for the current input.
func (m *tryModel) refresh() {
	start := time.Now()
	m.rows = m.search(m.input.Value())
	m.elapsed = time.Since(start)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// Init implements tea.Model.
func (m *tryModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *tryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.rows) > 0 {
				row := m.rows[m.cursor]
				m.chosen = &row
			}
			m.quitting = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *tryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%d results in %s", len(m.rows), m.elapsed.Round(time.Microsecond))))
	b.WriteString("\n\n")

	// prompt, status and help lines
	visible := max(m.height-5, 1)
	for i, row := range m.rows {
		if i >= visible {
			b.WriteString(m.styles.Dim.Render(fmt.Sprintf("  … %d more", len(m.rows)-visible)))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Dim.Render("↑/↓ select • enter choose • esc quit"))
	return b.String()
}

func (m *tryModel) renderRow(i int, row Row) string {
	marker := "  "
	title := m.styles.Title.Render(Truncate(row.Title, m.width/2))
	if i == m.cursor {
		marker = m.styles.Active.Render("▸ ")
		title = m.styles.Active.Render(Truncate(row.Title, m.width/2))
	}

	line := marker + title
	if row.Subtitle != "" {
		line += "  " + m.styles.Subtitle.Render(Truncate(row.Subtitle, m.width/3))
	}
	if m.showScores {
		line += "  " + m.styles.Score.Render(FormatScore(row.Score))
		if row.Rule != "" {
			line += " " + m.styles.Rule.Render(row.Rule)
		}
	}
	return line
}
