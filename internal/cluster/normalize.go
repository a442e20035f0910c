package cluster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Normalize lowers, strips punctuation, and tokenizes a headline, dropping
// stopwords. The resulting token set is the comparable key representation
// used for similarity grouping.
func Normalize(title string, stopwords map[string]struct{}) []string {
	folded := foldCaser.String(title)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, folded)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		if len(f) < 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokensMatch reports whether two normalized tokens refer to the same word.
// Besides exact equality it tolerates truncation ("fed" vs "federal") by
// accepting a prefix relationship when the shorter token has at least
// three characters.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	return len(short) >= 3 && strings.HasPrefix(long, short)
}

// Similarity computes the overlap coefficient between two token sets:
// the count of tokens in the smaller set that have a match in the other,
// divided by the smaller set's size. Range [0, 1].
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	matched := 0
	for _, s := range small {
		for _, l := range large {
			if tokensMatch(s, l) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(small))
}
