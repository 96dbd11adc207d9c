package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	Name string
	Path string
}

func appName(a app) string { return a.Name }

var apps = []app{
	{Name: "Google Chrome", Path: "/Applications/Google Chrome.app"},
	{Name: "OmniFocus", Path: "/Applications/OmniFocus.app"},
	{Name: "Adobe Illustrator", Path: "/Applications/Adobe Illustrator.app"},
	{Name: "Adobe Photoshop", Path: "/Applications/Adobe Photoshop.app"},
	{Name: "The Dukes of Hazzard", Path: "/Users/me/Movies/dukes.mp4"},
}

// =============================================================================
// Blank queries
// =============================================================================

func TestFilter_BlankQueryReturnsItemsUnchanged(t *testing.T) {
	for _, q := range []string{"", "   ", "\t"} {
		got := Filter(q, apps, appName)
		assert.Equal(t, apps, got)
	}
}

func TestFilterScored_BlankQueryPassesThrough(t *testing.T) {
	results := FilterScored(" ", apps, appName, WithMinScore(50), WithMaxResults(1))

	require.Len(t, results, len(apps))
	for i, r := range results {
		assert.Equal(t, apps[i], r.Item)
		assert.Zero(t, r.Score)
		assert.Equal(t, MatchNone, r.Rule)
	}
}

func TestFilter_EmptyItems(t *testing.T) {
	tests := []struct {
		name  string
		query string
		items []app
	}{
		{"nil items", "saf", nil},
		{"empty items", "saf", []app{}},
		{"nil items blank query", "", nil},
		{"empty items blank query", "", []app{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Filter(tt.query, tt.items, appName))
			assert.Empty(t, FilterScored(tt.query, tt.items, appName))

			results, err := FilterFunc(tt.query, tt.items, func(a app) (string, error) {
				return a.Name, nil
			})
			assert.NoError(t, err)
			assert.Empty(t, results)
		})
	}
}

// =============================================================================
// Matching and ranking
// =============================================================================

func TestFilterScored_RanksBestFirst(t *testing.T) {
	// Given: a query matching several apps by different rules
	results := FilterScored("o", apps, appName)

	// Then: scores never increase down the list
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.Equal(t, "OmniFocus", results[0].Item.Name)
}

func TestFilterScored_AllWordsMustMatch(t *testing.T) {
	// When: filtering on two words
	results := FilterScored("adobe illust", apps, appName)

	// Then: only the item matching both is returned
	require.Len(t, results, 1)
	assert.Equal(t, "Adobe Illustrator", results[0].Item.Name)
	assert.InDelta(t, (100-17.0/5)+(90-17.0/6), results[0].Score, 1e-9)
	assert.Equal(t, MatchSubstring, results[0].Rule)
}

func TestFilter_NoMatches(t *testing.T) {
	assert.Empty(t, Filter("zzz", apps, appName))
}

func TestFilter_KeysAreTrimmedAndBlankKeysSkipped(t *testing.T) {
	items := []string{"   ", "", "  Google Chrome  "}

	results := FilterScored("goog", items, func(s string) string { return s })

	require.Len(t, results, 1)
	assert.Equal(t, "  Google Chrome  ", results[0].Item)
	assert.InDelta(t, 100-13.0/4, results[0].Score, 1e-9)
}

func TestFilter_KeyFunctionSelectsField(t *testing.T) {
	// Given: a key built from two fields
	key := func(a app) string { return a.Name + " " + a.Path }

	// When: the query only appears in the path
	got := Filter("movies", apps, key)

	// Then: the item is found through the path
	require.Len(t, got, 1)
	assert.Equal(t, "The Dukes of Hazzard", got[0].Name)
}

func TestFilter_WithRules(t *testing.T) {
	// Given: only substring matching
	results := FilterScored("goog", apps, appName, WithRules(MatchSubstring))

	require.Len(t, results, 1)
	assert.Equal(t, MatchSubstring, results[0].Rule)
	assert.InDelta(t, 90-13.0/4, results[0].Score, 1e-9)
}

func TestFilter_WithRulesNone(t *testing.T) {
	assert.Empty(t, Filter("goog", apps, appName, WithRules(MatchNone)))
}

func TestFilter_WithFoldDiacritics(t *testing.T) {
	items := []string{"Café Noir", "Cafeteria"}

	t.Run("default folds", func(t *testing.T) {
		got := Strings("cafe", items)
		assert.ElementsMatch(t, items, got)
	})

	t.Run("disabled", func(t *testing.T) {
		got := Strings("cafe", items, WithFoldDiacritics(false))
		assert.Equal(t, []string{"Cafeteria"}, got)
	})
}

func TestFilter_WithMatcher(t *testing.T) {
	m := NewMatcher(4)

	Strings("gcm", []string{"Google Chrome"}, WithMatcher(m))

	assert.Equal(t, 1, m.CacheLen())
}

// =============================================================================
// Ordering, thresholds and limits
// =============================================================================

func TestFilter_TiesBreakAlphabetically(t *testing.T) {
	// Given: "bob" and "bab" score 97, "b" scores 99
	items := []string{"bob", "bab", "b"}

	t.Run("best first", func(t *testing.T) {
		assert.Equal(t, []string{"b", "bab", "bob"}, Strings("b", items))
	})

	t.Run("ascending keeps alphabetical ties", func(t *testing.T) {
		assert.Equal(t, []string{"bab", "bob", "b"}, Strings("b", items, WithAscending(true)))
	})
}

func TestFilter_TieBreakIgnoresCase(t *testing.T) {
	items := []string{"Bab", "bAa"}

	assert.Equal(t, []string{"bAa", "Bab"}, Strings("b", items))
}

func TestFilter_MinScoreIsExclusive(t *testing.T) {
	items := []string{"bob", "bab", "b"}

	got := FilterScored("b", items, func(s string) string { return s }, WithMinScore(97))

	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Item)
}

func TestFilter_MaxResults(t *testing.T) {
	items := []string{"bob", "bab", "b"}

	tests := []struct {
		name string
		max  int
		want []string
	}{
		{"unlimited", 0, []string{"b", "bab", "bob"}},
		{"negative is unlimited", -1, []string{"b", "bab", "bob"}},
		{"capped", 2, []string{"b", "bab"}},
		{"larger than matches", 10, []string{"b", "bab", "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strings("b", items, WithMaxResults(tt.max)))
		})
	}
}

func TestFilter_MinScoreAppliedBeforeMaxResults(t *testing.T) {
	items := []string{"bob", "bab", "b", "bb"}

	// "b" 99, "bb" 98, "bab"/"bob" 97
	got := Strings("b", items, WithMinScore(97.5), WithMaxResults(5))

	assert.Equal(t, []string{"b", "bb"}, got)
}

// =============================================================================
// Fallible keys
// =============================================================================

func TestFilterFunc_PropagatesKeyError(t *testing.T) {
	errBadKey := errors.New("bad key")
	calls := 0

	results, err := FilterFunc("goog", apps, func(a app) (string, error) {
		calls++
		if a.Name == "OmniFocus" {
			return "", errBadKey
		}
		return a.Name, nil
	})

	assert.Nil(t, results)
	assert.Same(t, errBadKey, err)
	assert.Equal(t, 2, calls)
}

func TestFilterFunc_BlankQueryNeverCallsKey(t *testing.T) {
	results, err := FilterFunc("", apps, func(a app) (string, error) {
		return "", errors.New("unexpected")
	})

	require.NoError(t, err)
	assert.Len(t, results, len(apps))
}
