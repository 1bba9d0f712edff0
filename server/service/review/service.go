package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/store"
)

// XP reward policy for review outcomes. Amounts are policy constants, not
// part of the scheduling contract.
const (
	xpDeckCreated    = 10
	xpCardCreated    = 5
	xpReviewEasy     = 10 // quality >= 4
	xpReviewGood     = 5  // quality >= 3
	xpReviewFailed   = 2
	reasonDeckCreate = "deck_created"
	reasonCardCreate = "card_created"
	reasonCardReview = "card_reviewed"
)

// deckPalette are the colors assigned round-robin-by-chance to new decks.
var deckPalette = []string{
	"#6366f1", "#8b5cf6", "#ec4899", "#f43f5e", "#f97316",
	"#eab308", "#22c55e", "#14b8a6", "#06b6d4", "#3b82f6",
}

// SnapshotStore is the persistence collaborator: the whole deck collection
// is written back as one snapshot after every mutation.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, upsert *store.Snapshot) (*store.Snapshot, error)
	GetSnapshot(ctx context.Context, find *store.FindSnapshot) (*store.Snapshot, error)
}

// Awarder receives XP signals for review outcomes. Award failures are the
// awarder's problem; the scheduler never rolls back on them.
type Awarder interface {
	AwardPoints(amount int, reason string)
}

// Service is the review scheduler. All public operations run to completion
// under one lock; no external code reaches into the deck collection.
type Service struct {
	mu      sync.Mutex
	decks   []*Deck
	store   SnapshotStore
	awarder Awarder
	bus     *eventbus.Bus
	now     func() time.Time
}

// NewService creates a review scheduler backed by the given snapshot store.
// awarder and bus may be nil.
func NewService(snapshots SnapshotStore, awarder Awarder, bus *eventbus.Bus) *Service {
	return &Service{
		decks:   []*Deck{},
		store:   snapshots,
		awarder: awarder,
		bus:     bus,
		now:     time.Now,
	}
}

// Load restores the deck collection from the persisted snapshot. A missing
// or corrupt snapshot yields an empty collection and never fails startup.
func (s *Service) Load(ctx context.Context) error {
	snapshot, err := s.store.GetSnapshot(ctx, &store.FindSnapshot{Key: store.SnapshotKeyFlashcards})
	if err != nil {
		return errors.Wrap(err, "failed to load flashcards snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decks = []*Deck{}
	if snapshot == nil || snapshot.Value == "" {
		return nil
	}
	var decks []*Deck
	if err := json.Unmarshal([]byte(snapshot.Value), &decks); err != nil {
		slog.Error("corrupt flashcards snapshot, starting empty", "error", err)
		return nil
	}
	s.decks = decks
	return nil
}

// CreateDeck creates an empty deck. A missing color gets one from the palette.
func (s *Service) CreateDeck(ctx context.Context, name, description, color string) (*Deck, error) {
	if name == "" {
		return nil, errors.New("deck name is required")
	}
	if color == "" {
		color = deckPalette[rand.Intn(len(deckPalette))]
	}

	s.mu.Lock()
	deck := &Deck{
		UID:         shortuuid.New(),
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   s.now().UnixMilli(),
		Cards:       []*Flashcard{},
	}
	s.decks = append(s.decks, deck)
	result := deck.clone()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	s.award(xpDeckCreated, reasonDeckCreate)
	return result, err
}

// DeleteDeck removes a deck and, cascading, all of its cards.
func (s *Service) DeleteDeck(ctx context.Context, deckUID string) error {
	s.mu.Lock()
	index := -1
	for i, deck := range s.decks {
		if deck.UID == deckUID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrDeckNotFound
	}
	s.decks = append(s.decks[:index], s.decks[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// AddCard appends a new card to a deck with default scheduling state,
// immediately due. Topic defaults to the deck name.
func (s *Service) AddCard(ctx context.Context, deckUID, front, back, topic string) (*Flashcard, error) {
	if front == "" || back == "" {
		return nil, errors.New("card front and back are required")
	}

	s.mu.Lock()
	deck := s.findDeckLocked(deckUID)
	if deck == nil {
		s.mu.Unlock()
		return nil, ErrDeckNotFound
	}
	if topic == "" {
		topic = deck.Name
	}
	nowMs := s.now().UnixMilli()
	card := &Flashcard{
		UID:          shortuuid.New(),
		Front:        front,
		Back:         back,
		Topic:        topic,
		CreatedAt:    nowMs,
		NextReviewAt: nowMs,
		Interval:     1,
		EaseFactor:   DefaultEaseFactor,
		Repetitions:  0,
	}
	deck.Cards = append(deck.Cards, card)
	result := card.clone()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	s.award(xpCardCreated, reasonCardCreate)
	return result, err
}

// DeleteCard removes a card from its deck.
func (s *Service) DeleteCard(ctx context.Context, deckUID, cardUID string) error {
	s.mu.Lock()
	deck := s.findDeckLocked(deckUID)
	if deck == nil {
		s.mu.Unlock()
		return ErrDeckNotFound
	}
	index := -1
	for i, card := range deck.Cards {
		if card.UID == cardUID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrCardNotFound
	}
	deck.Cards = append(deck.Cards[:index], deck.Cards[index+1:]...)
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// ReviewCard applies one SM-2 review to a card and reschedules it.
func (s *Service) ReviewCard(ctx context.Context, deckUID, cardUID string, quality Quality) (*Flashcard, error) {
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	s.mu.Lock()
	deck := s.findDeckLocked(deckUID)
	if deck == nil {
		s.mu.Unlock()
		return nil, ErrDeckNotFound
	}
	card := deck.findCard(cardUID)
	if card == nil {
		s.mu.Unlock()
		return nil, ErrCardNotFound
	}
	applySM2(card, quality, s.now())
	result := card.clone()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
	switch {
	case quality >= 4:
		s.award(xpReviewEasy, reasonCardReview)
	case quality.Passed():
		s.award(xpReviewGood, reasonCardReview)
	default:
		s.award(xpReviewFailed, reasonCardReview)
	}
	return result, err
}

// DueCards returns the cards due at the time of the call, most overdue
// first. An empty deckUID selects across all decks. Pure query: the due set
// is derived from stored state and the clock, never from a stored flag.
func (s *Service) DueCards(deckUID string) ([]*Flashcard, error) {
	nowMs := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	var cards []*Flashcard
	if deckUID != "" {
		deck := s.findDeckLocked(deckUID)
		if deck == nil {
			return nil, ErrDeckNotFound
		}
		cards = deck.Cards
	} else {
		for _, deck := range s.decks {
			cards = append(cards, deck.Cards...)
		}
	}

	due := make([]*Flashcard, 0)
	for _, card := range cards {
		if card.NextReviewAt <= nowMs {
			due = append(due, card.clone())
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReviewAt < due[j].NextReviewAt
	})
	return due, nil
}

// DueCount returns the number of due cards across all decks.
func (s *Service) DueCount() int {
	due, _ := s.DueCards("")
	return len(due)
}

// Decks returns a copy of all decks.
func (s *Service) Decks() []*Deck {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Deck, 0, len(s.decks))
	for _, deck := range s.decks {
		list = append(list, deck.clone())
	}
	return list
}

// Deck returns a copy of one deck.
func (s *Service) Deck(deckUID string) (*Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.findDeckLocked(deckUID)
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	return deck.clone(), nil
}

func (s *Service) findDeckLocked(uid string) *Deck {
	for _, deck := range s.decks {
		if deck.UID == uid {
			return deck
		}
	}
	return nil
}

// persistLocked writes the whole deck collection as one snapshot. A failed
// write leaves the in-memory state authoritative; the caller gets the error
// alongside its already-applied result.
func (s *Service) persistLocked(ctx context.Context) error {
	value, err := json.Marshal(s.decks)
	if err != nil {
		return errors.Wrap(err, "failed to marshal flashcards")
	}
	if _, err := s.store.UpsertSnapshot(ctx, &store.Snapshot{
		Key:   store.SnapshotKeyFlashcards,
		Value: string(value),
	}); err != nil {
		slog.Error("failed to persist flashcards snapshot", "error", err)
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func (s *Service) notify() {
	if s.bus != nil {
		s.bus.Notify()
	}
}

func (s *Service) award(amount int, reason string) {
	if s.awarder != nil {
		s.awarder.AwardPoints(amount, reason)
	}
}
