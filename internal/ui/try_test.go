package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixSearch is a stand-in ranking: items starting with the query.
func prefixSearch(items ...string) SearchFunc {
	return func(query string) []Row {
		var rows []Row
		for _, it := range items {
			if strings.HasPrefix(strings.ToLower(it), strings.ToLower(query)) {
				rows = append(rows, Row{Title: it, Score: 100})
			}
		}
		return rows
	}
}

func typeKeys(m *tryModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTryModel_InitialQuery(t *testing.T) {
	// Given: a preview started with a query
	m := newTryModel(TryConfig{Search: prefixSearch("Safari", "Slack", "Mail"), Query: "s", NoColor: true})

	// Then: results for it are shown immediately
	require.Len(t, m.rows, 2)
	assert.Contains(t, m.View(), "2 results")
}

func TestTryModel_TypingRefilters(t *testing.T) {
	m := newTryModel(TryConfig{Search: prefixSearch("Safari", "Slack", "Mail"), NoColor: true})
	require.Len(t, m.rows, 3)

	typeKeys(m, "sl")

	require.Len(t, m.rows, 1)
	assert.Equal(t, "Slack", m.rows[0].Title)
	assert.Contains(t, m.View(), "Slack")
}

func TestTryModel_CursorAndEnter(t *testing.T) {
	// Given: two results
	m := newTryModel(TryConfig{Search: prefixSearch("Safari", "Slack"), Query: "s", NoColor: true})

	// When: moving down and choosing
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// Then: the second row is chosen (cursor stops at the end) and the program quits
	require.NotNil(t, m.chosen)
	assert.Equal(t, "Slack", m.chosen.Title)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestTryModel_EscapeChoosesNothing(t *testing.T) {
	m := newTryModel(TryConfig{Search: prefixSearch("Safari"), Query: "s", NoColor: true})

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, m.chosen)
	assert.True(t, m.quitting)
}

func TestTryModel_ShowScores(t *testing.T) {
	m := newTryModel(TryConfig{Search: prefixSearch("Safari"), Query: "s", ShowScores: true, NoColor: true})

	assert.Contains(t, m.View(), "100.00")
}

func TestTryModel_LimitsRowsToWindow(t *testing.T) {
	items := make([]string, 30)
	for i := range items {
		items[i] = "Item"
	}
	m := newTryModel(TryConfig{Search: prefixSearch(items...), Query: "i", NoColor: true})

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	assert.Contains(t, m.View(), "25 more")
}

func TestRunTry_RequiresSearch(t *testing.T) {
	_, err := RunTry(t.Context(), TryConfig{})
	assert.Error(t, err)
}
