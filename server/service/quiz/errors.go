package quiz

import (
	"errors"
)

var (
	// ErrQuizNotFound is returned when a quiz UID does not resolve. For
	// SubmitAttempt this is a hard failure: no attempt is recorded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrPersistFailed wraps snapshot write failures. The in-memory mutation
	// that triggered the write has already succeeded and is not rolled back.
	ErrPersistFailed = errors.New("failed to persist quiz snapshot")
)
