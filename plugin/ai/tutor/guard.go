package tutor

import (
	"regexp"
)

// Patterns that suggest the student wants the answer handed over rather
// than explained. In assignment mode such requests get flagged so the
// caller can surface an academic-integrity notice.
var answerSeekingREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bgive me the (full |complete |final )?answer\b`),
	regexp.MustCompile(`(?i)\bjust (the|give|tell me the) answer\b`),
	regexp.MustCompile(`(?i)\b(solve|do|write|complete) (this|my|the) (homework|assignment|exam|test)\b`),
	regexp.MustCompile(`(?i)\bdo it for me\b`),
	regexp.MustCompile(`(?i)\bwithout explain`),
}

// flagAnswerSeeking reports whether a message, in assignment mode, reads
// like a request for a ready-made answer.
func flagAnswerSeeking(mode TaskMode, message string) bool {
	if mode != ModeAssignment {
		return false
	}
	for _, re := range answerSeekingREs {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}
