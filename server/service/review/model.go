// Package review implements the flashcard review scheduler: SM-2 spaced
// repetition over decks of flashcards, with due-card selection queries.
package review

// Flashcard is one learnable fact with its scheduling state.
// Timestamps are epoch milliseconds to keep snapshots portable across the
// web client and the server.
type Flashcard struct {
	UID            string  `json:"uid"`
	Front          string  `json:"front"`
	Back           string  `json:"back"`
	Topic          string  `json:"topic"`
	CreatedAt      int64   `json:"createdAt"`
	NextReviewAt   int64   `json:"nextReviewAt"`
	Interval       int     `json:"interval"` // days
	EaseFactor     float64 `json:"easeFactor"`
	Repetitions    int     `json:"repetitions"`
	LastReviewedAt *int64  `json:"lastReviewedAt,omitempty"`
}

// Deck is a named, colored container of flashcards. Decks own their cards
// exclusively; deleting a deck deletes its cards.
type Deck struct {
	UID         string       `json:"uid"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Color       string       `json:"color"`
	CreatedAt   int64        `json:"createdAt"`
	Cards       []*Flashcard `json:"cards"`
}

func (c *Flashcard) clone() *Flashcard {
	cloned := *c
	if c.LastReviewedAt != nil {
		ts := *c.LastReviewedAt
		cloned.LastReviewedAt = &ts
	}
	return &cloned
}

func (d *Deck) clone() *Deck {
	cloned := *d
	cloned.Cards = make([]*Flashcard, 0, len(d.Cards))
	for _, card := range d.Cards {
		cloned.Cards = append(cloned.Cards, card.clone())
	}
	return &cloned
}

func (d *Deck) findCard(uid string) *Flashcard {
	for _, card := range d.Cards {
		if card.UID == uid {
			return card
		}
	}
	return nil
}
