// Package filter provides the fuzzy query filter used by Script Filters to
// rank result lists against what the user typed.
//
// Each candidate is reduced to a search key by a caller-supplied key function
// and tested against every word of the query under an ordered set of match
// rules:
//
//   - [MatchStartsWith]: key starts with the word
//   - [MatchCapitals]: the key's capital letters and digits start with the word
//   - [MatchAtom]: the word equals one of the key's alphanumeric atoms
//   - [MatchInitialsStartsWith]: the initials of the atoms start with the word
//   - [MatchInitialsContain]: the word is a substring of the initials
//   - [MatchSubstring]: the word is a substring of the key
//   - [MatchAllChars]: all characters of the word appear in order
//
// The first active rule that matches a word decides its score. A candidate
// must match every word; its total score is the sum of the per-word scores.
//
// # Usage
//
//	apps := []App{{Name: "Google Chrome"}, {Name: "OmniFocus"}}
//	results := filter.Filter("of", apps, func(a App) string { return a.Name })
//
//	// Debug the ranking
//	for _, r := range filter.FilterScored("gc", apps, nameOf) {
//	    fmt.Println(r.Item.Name, r.Score, r.Rule)
//	}
//
//	// Skip the expensive in-order character test
//	filter.Strings("chr", names, filter.WithRules(filter.MatchAll&^filter.MatchAllChars))
//
// # Ordering
//
// Results are ordered best match first. Ties are broken alphabetically on the
// lowercase search key, in both sort directions.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The compiled in-order patterns
// are shared through a bounded LRU cache on the [Matcher].
package filter
