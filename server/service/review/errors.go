package review

import (
	"errors"
)

var (
	// ErrDeckNotFound is returned when a deck UID does not resolve.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrCardNotFound is returned when a card UID does not resolve within its deck.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidQuality is returned when a review quality is outside the 0-5 range.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	// ErrPersistFailed wraps snapshot write failures. The in-memory mutation
	// that triggered the write has already succeeded and is not rolled back.
	ErrPersistFailed = errors.New("failed to persist flashcards snapshot")
)
