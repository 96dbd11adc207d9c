package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule is a set of match strategies combined with bitwise OR.
type Rule uint8

// Match rules in evaluation order.
const (
	// MatchNone is the empty rule set. It is also reported for unmatched words.
	MatchNone Rule = 0
	// MatchStartsWith matches keys that start with the query.
	MatchStartsWith Rule = 1
	// MatchCapitals matches keys whose capital letters start with the query,
	// e.g. "of" matches "OmniFocus".
	MatchCapitals Rule = 2
	// MatchAtom matches keys with an alphanumeric "word" equal to the query.
	MatchAtom Rule = 4
	// MatchInitialsStartsWith matches keys whose atom initials start with the
	// query, e.g. "himym" matches "how i met your mother".
	MatchInitialsStartsWith Rule = 8
	// MatchInitialsContain matches keys whose atom initials contain the query,
	// e.g. "doh" matches "The Dukes of Hazzard".
	MatchInitialsContain Rule = 16
	// MatchInitials combines both initials rules.
	MatchInitials = MatchInitialsStartsWith | MatchInitialsContain
	// MatchSubstring matches keys containing the query.
	MatchSubstring Rule = 32
	// MatchAllChars matches keys containing all query characters in order.
	// It is the slowest rule and gives the least accurate results.
	MatchAllChars Rule = 64
	// MatchAll enables every rule.
	MatchAll = MatchStartsWith | MatchCapitals | MatchAtom | MatchInitials | MatchSubstring | MatchAllChars
)

var ruleNames = []struct {
	rule Rule
	name string
}{
	{MatchStartsWith, "startswith"},
	{MatchCapitals, "capitals"},
	{MatchAtom, "atom"},
	{MatchInitialsStartsWith, "initials_startswith"},
	{MatchInitialsContain, "initials_contain"},
	{MatchSubstring, "substring"},
	{MatchAllChars, "allchars"},
}

// Has reports whether every rule in other is enabled in r.
func (r Rule) Has(other Rule) bool {
	return other != MatchNone && r&other == other
}

// String returns the rule names joined with "|".
func (r Rule) String() string {
	switch r {
	case MatchNone:
		return "none"
	case MatchAll:
		return "all"
	}

	var parts []string
	rest := r
	for _, rn := range ruleNames {
		if r&rn.rule != 0 {
			parts = append(parts, rn.name)
			rest &^= rn.rule
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseRules parses a comma or pipe separated list of rule names
// ("startswith,substring"), the aliases "all", "initials" and "none",
// or a decimal bit mask ("96").
func ParseRules(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MatchAll, nil
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return Rule(n), nil
	}

	var rules Rule
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
	for _, field := range fields {
		name := strings.ToLower(strings.TrimSpace(field))
		switch name {
		case "":
			continue
		case "all":
			rules |= MatchAll
			continue
		case "initials":
			rules |= MatchInitials
			continue
		case "none":
			continue
		}

		found := false
		for _, rn := range ruleNames {
			if rn.name == name {
				rules |= rn.rule
				found = true
				break
			}
		}
		if !found {
			return MatchNone, fmt.Errorf("unknown match rule %q", field)
		}
	}
	return rules, nil
}
