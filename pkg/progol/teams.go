package progol

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTeamName normalizes a team name for matching: lowercase, accents
// stripped, punctuation removed, whitespace collapsed. Slate feeds spell the
// same club several ways ("León", "Leon", "Club León"); contests are keyed on
// the normalized form.
func NormalizeTeamName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Strip diacritics (León -> leon, Juárez -> juarez).
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	s = b.String()

	// Drop club-form prefixes that vary between feeds.
	for _, prefix := range []string{"club ", "cf ", "fc ", "cd ", "atletico de "} {
		s = strings.TrimPrefix(s, prefix)
	}

	return strings.Join(strings.Fields(s), " ")
}

// ContestKey returns a canonical identifier for a contest, stable across
// feeds that spell team names differently.
func ContestKey(c Contest) string {
	return NormalizeTeamName(c.Home) + "_vs_" + NormalizeTeamName(c.Away)
}
