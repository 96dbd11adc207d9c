package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPatternCacheSize is the default number of compiled in-order
// patterns kept by a Matcher. Queries are user-typed, so a few thousand
// distinct words covers a long-lived process.
const DefaultPatternCacheSize = 4096

// Matcher scores search keys against query words. It owns the cache of
// compiled patterns used by MatchAllChars and is safe for concurrent use.
type Matcher struct {
	patterns *lru.Cache[string, *regexp.Regexp]
}

// NewMatcher creates a Matcher caching up to cacheSize compiled patterns.
// A non-positive size selects DefaultPatternCacheSize.
func NewMatcher(cacheSize int) *Matcher {
	if cacheSize <= 0 {
		cacheSize = DefaultPatternCacheSize
	}
	cache, _ := lru.New[string, *regexp.Regexp](cacheSize)
	return &Matcher{patterns: cache}
}

var defaultMatcher = NewMatcher(DefaultPatternCacheSize)

// DefaultMatcher returns the process-wide Matcher used when no WithMatcher
// option is given.
func DefaultMatcher() *Matcher {
	return defaultMatcher
}

// CacheLen returns the number of cached patterns.
func (m *Matcher) CacheLen() int {
	return m.patterns.Len()
}

// Score matches every word of query against key and returns the summed
// score and the rule that matched the last word. ok is false when the query
// has no words or any word fails to match.
func (m *Matcher) Score(key, query string, rules Rule, fold bool) (score float64, rule Rule, ok bool) {
	return m.scoreWords(key, splitWords(query), rules, fold)
}

func (m *Matcher) scoreWords(key string, words []string, rules Rule, fold bool) (float64, Rule, bool) {
	if len(words) == 0 {
		return 0, MatchNone, false
	}

	var total float64
	rule := MatchNone
	for _, word := range words {
		s, r := m.MatchWord(key, word, rules, fold)
		if s == 0 {
			return 0, MatchNone, false
		}
		total += s
		rule = r
	}
	return total, rule, true
}

// MatchWord scores value against a single query word using the active rules
// in priority order. The first rule producing a nonzero score wins. It returns
// (0, MatchNone) when nothing matches.
//
// When fold is set and word is pure ASCII, value is folded to ASCII first.
func (m *Matcher) MatchWord(value, word string, rules Rule, fold bool) (float64, Rule) {
	word = strings.ToLower(word)
	if word == "" {
		return 0, MatchNone
	}

	if fold && IsASCII(word) {
		value = FoldToASCII(value)
	}
	lower := strings.ToLower(value)

	// Cheap rejection before the more expensive rules.
	if !containsAllRunes(lower, word) {
		return 0, MatchNone
	}

	valueLen := float64(utf8.RuneCountInString(value))
	wordLen := float64(utf8.RuneCountInString(word))

	if rules&MatchStartsWith != 0 && strings.HasPrefix(lower, word) {
		return 100.0 - valueLen/wordLen, MatchStartsWith
	}

	if rules&MatchCapitals != 0 {
		caps := strings.ToLower(capitals(value))
		if strings.HasPrefix(caps, word) {
			return 100.0 - float64(len(caps))/wordLen, MatchCapitals
		}
	}

	var atoms []string
	var initials string
	if rules&(MatchAtom|MatchInitials) != 0 {
		atoms = splitAtoms(value)
		initials = initialsOf(atoms)
	}

	if rules&MatchAtom != 0 {
		for _, atom := range atoms {
			if atom == word {
				return 100.0 - valueLen/wordLen, MatchAtom
			}
		}
	}

	if rules&MatchInitialsStartsWith != 0 && strings.HasPrefix(initials, word) {
		return 100.0 - float64(len(initials))/wordLen, MatchInitialsStartsWith
	} else if rules&MatchInitialsContain != 0 && strings.Contains(initials, word) {
		return 95.0 - float64(len(initials))/wordLen, MatchInitialsContain
	}

	if rules&MatchSubstring != 0 && strings.Contains(lower, word) {
		return 90.0 - valueLen/wordLen, MatchSubstring
	}

	if rules&MatchAllChars != 0 {
		if loc := m.pattern(word).FindStringIndex(value); loc != nil {
			start := float64(utf8.RuneCountInString(value[:loc[0]]))
			span := float64(utf8.RuneCountInString(value[loc[0]:loc[1]]))
			return 100.0 / ((1 + start) * (span + 1)), MatchAllChars
		}
	}

	return 0, MatchNone
}

// pattern returns the cached case-insensitive ".*?c1.*?c2..." pattern for word.
func (m *Matcher) pattern(word string) *regexp.Regexp {
	if re, ok := m.patterns.Get(word); ok {
		return re
	}

	var b strings.Builder
	b.WriteString("(?i)")
	for _, r := range word {
		b.WriteString(".*?")
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	re := regexp.MustCompile(b.String())

	m.patterns.Add(word, re)
	return re
}

// splitWords splits a trimmed query on single spaces, dropping empty words.
func splitWords(query string) []string {
	parts := strings.Split(strings.TrimSpace(query), " ")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			words = append(words, p)
		}
	}
	return words
}

// containsAllRunes reports whether every rune of word occurs somewhere in s.
func containsAllRunes(s, word string) bool {
	for _, r := range word {
		if !strings.ContainsRune(s, r) {
			return false
		}
	}
	return true
}

// capitals returns the ASCII upper-case letters and digits of s in order.
func capitals(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitAtoms splits s on every character that is not an ASCII letter or
// digit and lowercases the non-empty pieces.
func splitAtoms(s string) []string {
	atoms := strings.FieldsFunc(s, func(r rune) bool { return !isASCIIAlnum(r) })
	for i, a := range atoms {
		atoms[i] = strings.ToLower(a)
	}
	return atoms
}

// initialsOf concatenates the first character of each non-empty atom.
func initialsOf(atoms []string) string {
	var b strings.Builder
	for _, a := range atoms {
		if a != "" {
			b.WriteByte(a[0])
		}
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
