package review

import (
	"math"
	"time"
)

// Quality is the user's assessment of recall difficulty on a 0-5 scale,
// 0 meaning a complete blackout and 5 a perfect instant recall.
type Quality int

const (
	// MinQuality is the lowest accepted recall quality.
	MinQuality Quality = 0
	// MaxQuality is the highest accepted recall quality.
	MaxQuality Quality = 5
	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality Quality = 3
)

const (
	// DefaultEaseFactor is the initial ease factor for new cards.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	dayMillis = 24 * 60 * 60 * 1000
)

// Valid reports whether q is within the accepted 0-5 range.
func (q Quality) Valid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// Passed reports whether q counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= PassingQuality
}

// applySM2 advances a card's scheduling state for one review at time now.
//
// A failed recall sends the card back through the learning progression
// (1 day, 6 days, then ease-scaled) by resetting the repetition counter,
// not just the interval. The ease factor is updated on every review, pass
// or fail, per the standard SM-2 formula, floored at MinEaseFactor.
func applySM2(card *Flashcard, quality Quality, now time.Time) {
	nowMs := now.UnixMilli()
	card.LastReviewedAt = &nowMs

	if !quality.Passed() {
		card.Repetitions = 0
		card.Interval = 1
	} else {
		switch card.Repetitions {
		case 0:
			card.Interval = 1
		case 1:
			card.Interval = 6
		default:
			card.Interval = int(math.Round(float64(card.Interval) * card.EaseFactor))
		}
		card.Repetitions++
	}

	q := float64(quality)
	card.EaseFactor = math.Max(MinEaseFactor,
		card.EaseFactor+(0.1-(5-q)*(0.08+(5-q)*0.02)))

	card.NextReviewAt = nowMs + int64(card.Interval)*dayMillis
}
