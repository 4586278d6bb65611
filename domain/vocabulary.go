// Package domain contains core concepts of the chat relay.
// This file defines the closed vocabulary every public text is drawn from.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// ReservedToken is the vocabulary word only moderators may carry in their callsign.
const ReservedToken = "CONTROL"

// ModeratorPrefix is prepended to the callsign of an elevated participant.
const ModeratorPrefix = ReservedToken + " "

var vocabularyWords = []string{
	"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO", "FOXTROT",
	"GOLF", "HOTEL", "INDIA", "JULIET", "KILO", "LIMA", "MIKE",
	"NOVEMBER", "OSCAR", "PAPA", "QUEBEC", "ROMEO", "SIERRA",
	"TANGO", "UNIFORM", "VICTOR", "WHISKEY", "XRAY", "YANKEE", "ZULU",

	"ZERO", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE",

	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",

	ReservedToken,
}

var vocabulary = lo.SliceToMap(vocabularyWords, func(w string) (string, struct{}) {
	return w, struct{}{}
})

// tokenSeparator matches runs of whitespace and commas, including the
// unicode spaces a browser may send (no-break space, ideographic space, BOM).
var tokenSeparator = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF},]+`)

// Vocabulary returns a copy of the closed word list.
func Vocabulary() []string {
	return append([]string(nil), vocabularyWords...)
}

// IsRestrictedVocabulary reports whether every token of text belongs to the vocabulary.
// Leading or trailing separators produce an empty token, so " ALPHA" and "" are rejected.
func IsRestrictedVocabulary(text string) bool {
	tokens := tokenSeparator.Split(strings.ToUpper(text), -1)
	return lo.EveryBy(tokens, func(token string) bool {
		_, ok := vocabulary[token]
		return ok
	})
}
