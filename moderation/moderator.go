package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// ReservedMatcher detects reserved tokens anywhere inside a callsign.
type ReservedMatcher struct {
	matcher *goahocorasick.Machine
}

// NewReservedMatcher initializes the Aho-Corasick automaton with the normalized reserved tokens.
func NewReservedMatcher(tokens ...string) (ReservedMatcher, error) {
	patterns := make([][]rune, 0, len(tokens))
	for _, token := range tokens {
		if p := normalizeRunes([]rune(token)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return ReservedMatcher{}, err
	}
	return ReservedMatcher{matcher: m}, nil
}

// Contains reports whether text embeds one of the reserved tokens, ignoring case.
func (m ReservedMatcher) Contains(text string) bool {
	if m.matcher == nil {
		return false
	}
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return false
	}
	return len(m.matcher.MultiPatternSearch(normalized, true)) > 0
}

// normalizeRunes upper-cases runes so the match follows the case-insensitive vocabulary.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		out = append(out, unicode.ToUpper(r))
	}
	return out
}
