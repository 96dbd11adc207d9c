package filter

import (
	"sort"
	"strings"
)

// Result is a matched item with its total score and the rule that matched
// the last word of the query.
type Result[T any] struct {
	Item  T
	Score float64
	Rule  Rule
}

// KeyFunc returns the search key for an item.
type KeyFunc[T any] func(T) string

// Option configures a filter call.
type Option func(*options)

type options struct {
	ascending  bool
	minScore   float64
	maxResults int
	rules      Rule
	fold       bool
	matcher    *Matcher
}

func newOptions(opts []Option) options {
	o := options{
		rules:   MatchAll,
		fold:    true,
		matcher: defaultMatcher,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.matcher == nil {
		o.matcher = defaultMatcher
	}
	return o
}

// WithAscending returns the worst matches first.
func WithAscending(ascending bool) Option {
	return func(o *options) {
		o.ascending = ascending
	}
}

// WithMinScore drops results scoring at or below min. Zero disables it.
func WithMinScore(min float64) Option {
	return func(o *options) {
		o.minScore = min
	}
}

// WithMaxResults caps the number of results. Zero means unlimited.
func WithMaxResults(n int) Option {
	return func(o *options) {
		o.maxResults = n
	}
}

// WithRules selects the active match rules. The default is MatchAll.
func WithRules(rules Rule) Option {
	return func(o *options) {
		o.rules = rules
	}
}

// WithFoldDiacritics controls folding of search keys to ASCII for ASCII-only
// query words. The default is true.
func WithFoldDiacritics(fold bool) Option {
	return func(o *options) {
		o.fold = fold
	}
}

// WithMatcher uses m and its pattern cache instead of the default Matcher.
func WithMatcher(m *Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// Filter returns the items matching query, best match first.
//
// A blank query returns items unchanged.
func Filter[T any](query string, items []T, key KeyFunc[T], opts ...Option) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	results := FilterScored(query, items, key, opts...)
	out := make([]T, len(results))
	for i, r := range results {
		out[i] = r.Item
	}
	return out
}

// FilterScored is like Filter but reports each item's score and rule.
//
// A blank query returns every item in its original order with a zero score.
func FilterScored[T any](query string, items []T, key KeyFunc[T], opts ...Option) []Result[T] {
	results, _ := FilterFunc(query, items, func(item T) (string, error) {
		return key(item), nil
	}, opts...)
	return results
}

// FilterFunc is like FilterScored but accepts a key function that can fail.
// The first key error aborts filtering and is returned unchanged.
func FilterFunc[T any](query string, items []T, key func(T) (string, error), opts ...Option) ([]Result[T], error) {
	o := newOptions(opts)

	query = strings.TrimSpace(query)
	if query == "" {
		return unscored(items), nil
	}
	words := splitWords(query)

	matches := make([]ranked[T], 0, len(items))
	for _, item := range items {
		k, err := key(item)
		if err != nil {
			return nil, err
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		score, rule, ok := o.matcher.scoreWords(k, words, o.rules, o.fold)
		if !ok || score == 0 {
			continue
		}
		matches = append(matches, newRanked(Result[T]{Item: item, Score: score, Rule: rule}, k))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return compareRanked(matches[i].rankKey, matches[j].rankKey, o.ascending) < 0
	})

	results := make([]Result[T], 0, len(matches))
	for _, r := range matches {
		if o.minScore != 0 && r.result.Score <= o.minScore {
			continue
		}
		results = append(results, r.result)
	}

	if o.maxResults > 0 && len(results) > o.maxResults {
		results = results[:o.maxResults]
	}
	return results, nil
}

// Strings filters a slice of strings using each string as its own key.
func Strings(query string, items []string, opts ...Option) []string {
	return Filter(query, items, func(s string) string { return s }, opts...)
}

func unscored[T any](items []T) []Result[T] {
	results := make([]Result[T], len(items))
	for i, item := range items {
		results[i] = Result[T]{Item: item}
	}
	return results
}

// rankKey orders matches: inverted score, then lowercase key, then score.
type rankKey struct {
	inverted float64
	key      string
	score    float64
}

type ranked[T any] struct {
	rankKey
	result Result[T]
}

func newRanked[T any](r Result[T], key string) ranked[T] {
	return ranked[T]{
		rankKey: rankKey{
			inverted: 100.0 / r.Score,
			key:      strings.ToLower(key),
			score:    r.Score,
		},
		result: r,
	}
}

// compareRanked returns a negative number when a sorts before b.
//
// Higher scores come first unless ascending is set. Equal scores are always
// ordered alphabetically by key, so ties read the same in both directions.
func compareRanked(a, b rankKey, ascending bool) int {
	if a.inverted != b.inverted {
		less := a.inverted < b.inverted
		if ascending {
			less = !less
		}
		if less {
			return -1
		}
		return 1
	}

	if a.key != b.key {
		return strings.Compare(a.key, b.key)
	}

	if a.score != b.score {
		less := a.score < b.score
		if ascending {
			less = !less
		}
		if less {
			return -1
		}
		return 1
	}
	return 0
}
