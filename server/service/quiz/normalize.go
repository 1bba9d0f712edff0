package quiz

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	// Everything except word characters, whitespace and the punctuation that
	// carries meaning in technical answers (brackets, braces, parens, commas,
	// periods, colons, semicolons) is stripped before comparison.
	strippedRE = regexp.MustCompile(`[^\w\s\[\]{}(),.:;]`)
)

// normalizeAnswer canonicalizes an answer for comparison: lowercase, trimmed,
// internal whitespace collapsed to single spaces, and decorative punctuation
// removed. "Paris", " paris " and "Paris!" all normalize to "paris".
func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strippedRE.ReplaceAllString(s, "")
}

// answersMatch reports whether a user answer matches the correct answer
// after normalization. Empty answers on either side never match.
func answersMatch(userAnswer, correctAnswer string) bool {
	if userAnswer == "" || correctAnswer == "" {
		return false
	}
	return normalizeAnswer(userAnswer) == normalizeAnswer(correctAnswer)
}
