package review

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/store"
)

// memorySnapshots is an in-memory SnapshotStore for tests.
type memorySnapshots struct {
	mu         sync.Mutex
	data       map[string]string
	failWrites bool
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string]string)}
}

func (m *memorySnapshots) UpsertSnapshot(_ context.Context, upsert *store.Snapshot) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return nil, errors.New("disk full")
	}
	m.data[upsert.Key] = upsert.Value
	return upsert, nil
}

func (m *memorySnapshots) GetSnapshot(_ context.Context, find *store.FindSnapshot) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[find.Key]
	if !ok {
		return nil, nil
	}
	return &store.Snapshot{Key: find.Key, Value: value}, nil
}

// recordingAwarder records XP signals for assertions.
type recordingAwarder struct {
	amounts []int
	reasons []string
}

func (r *recordingAwarder) AwardPoints(amount int, reason string) {
	r.amounts = append(r.amounts, amount)
	r.reasons = append(r.reasons, reason)
}

func newTestService(t *testing.T) (*Service, *memorySnapshots, *recordingAwarder) {
	t.Helper()
	snapshots := newMemorySnapshots()
	awarder := &recordingAwarder{}
	svc := NewService(snapshots, awarder, eventbus.New())
	require.NoError(t, svc.Load(context.Background()))
	return svc, snapshots, awarder
}

func TestCreateDeck(t *testing.T) {
	svc, _, awarder := newTestService(t)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, "Capitals", "European capitals", "")
	require.NoError(t, err)
	assert.NotEmpty(t, deck.UID)
	assert.Equal(t, "Capitals", deck.Name)
	assert.NotEmpty(t, deck.Color, "missing color gets one from the palette")
	assert.Empty(t, deck.Cards)

	assert.Equal(t, []int{xpDeckCreated}, awarder.amounts)
	assert.Equal(t, []string{reasonDeckCreate}, awarder.reasons)

	_, err = svc.CreateDeck(ctx, "", "", "")
	require.Error(t, err, "deck name is required")
}

func TestAddCardDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	require.NoError(t, err)

	before := time.Now().UnixMilli()
	card, err := svc.AddCard(ctx, deck.UID, "Capital of France?", "Paris", "")
	require.NoError(t, err)

	assert.Equal(t, "Capitals", card.Topic, "topic defaults to the deck name")
	assert.Equal(t, 1, card.Interval)
	assert.Equal(t, DefaultEaseFactor, card.EaseFactor)
	assert.Equal(t, 0, card.Repetitions)
	assert.GreaterOrEqual(t, card.NextReviewAt, before, "new card is immediately due")
	assert.Nil(t, card.LastReviewedAt)

	_, err = svc.AddCard(ctx, deck.UID, "", "Paris", "")
	require.Error(t, err)
	_, err = svc.AddCard(ctx, "missing", "Q", "A", "")
	require.ErrorIs(t, err, ErrDeckNotFound)
}

func TestReviewCardScenario(t *testing.T) {
	svc, _, awarder := newTestService(t)
	ctx := context.Background()

	now := time.Now()
	svc.now = func() time.Time { return now }

	deck, err := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	require.NoError(t, err)
	card, err := svc.AddCard(ctx, deck.UID, "Capital of France?", "Paris", "")
	require.NoError(t, err)

	// First perfect recall.
	reviewed, err := svc.ReviewCard(ctx, deck.UID, card.UID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.Repetitions)
	assert.Equal(t, 1, reviewed.Interval)
	assert.Equal(t, now.UnixMilli()+dayMillis, reviewed.NextReviewAt)
	assert.Greater(t, reviewed.EaseFactor, 2.5)

	// Second perfect recall.
	reviewed, err = svc.ReviewCard(ctx, deck.UID, card.UID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, reviewed.Repetitions)
	assert.Equal(t, 6, reviewed.Interval)

	// XP: deck(10) + card(5) + two easy reviews (10 each).
	assert.Equal(t, []int{10, 5, 10, 10}, awarder.amounts)
}

func TestReviewCardValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	card, _ := svc.AddCard(ctx, deck.UID, "Q", "A", "")

	_, err := svc.ReviewCard(ctx, deck.UID, card.UID, 6)
	require.ErrorIs(t, err, ErrInvalidQuality)
	_, err = svc.ReviewCard(ctx, deck.UID, card.UID, -1)
	require.ErrorIs(t, err, ErrInvalidQuality)
	_, err = svc.ReviewCard(ctx, "missing", card.UID, 3)
	require.ErrorIs(t, err, ErrDeckNotFound)
	_, err = svc.ReviewCard(ctx, deck.UID, "missing", 3)
	require.ErrorIs(t, err, ErrCardNotFound)

	// Failed lookups must not have touched the card.
	got, err := svc.Deck(deck.UID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cards[0].Repetitions)
	assert.Nil(t, got.Cards[0].LastReviewedAt)
}

func TestDueCardsSelectionAndOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	now := time.Now()
	svc.now = func() time.Time { return now }

	deck, _ := svc.CreateDeck(ctx, "Mixed", "", "#fff")
	overdue, _ := svc.AddCard(ctx, deck.UID, "overdue", "a", "")
	recent, _ := svc.AddCard(ctx, deck.UID, "recent", "b", "")
	future, _ := svc.AddCard(ctx, deck.UID, "future", "c", "")

	// Rewire due dates through direct state: one far overdue, one just due,
	// one in the future.
	svc.mu.Lock()
	svc.decks[0].findCard(overdue.UID).NextReviewAt = now.UnixMilli() - 3*dayMillis
	svc.decks[0].findCard(recent.UID).NextReviewAt = now.UnixMilli()
	svc.decks[0].findCard(future.UID).NextReviewAt = now.UnixMilli() + dayMillis
	svc.mu.Unlock()

	due, err := svc.DueCards(deck.UID)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "overdue", due[0].Front, "most overdue first")
	assert.Equal(t, "recent", due[1].Front)

	assert.Equal(t, 2, svc.DueCount())

	_, err = svc.DueCards("missing")
	require.ErrorIs(t, err, ErrDeckNotFound)
}

func TestDeleteDeckCascades(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	_, err := svc.AddCard(ctx, deck.UID, "Q", "A", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeck(ctx, deck.UID))
	assert.Empty(t, svc.Decks())
	assert.Equal(t, 0, svc.DueCount())

	require.ErrorIs(t, svc.DeleteDeck(ctx, deck.UID), ErrDeckNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	card, _ := svc.AddCard(ctx, deck.UID, "Q", "A", "")
	_, err := svc.ReviewCard(ctx, deck.UID, card.UID, 4)
	require.NoError(t, err)

	// A fresh service over the same store sees identical state.
	restored := NewService(snapshots, nil, nil)
	require.NoError(t, restored.Load(ctx))

	want, _ := json.Marshal(svc.Decks())
	got, _ := json.Marshal(restored.Decks())
	assert.JSONEq(t, string(want), string(got))
}

func TestLoadToleratesCorruptSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.data[store.SnapshotKeyFlashcards] = "{not json"

	svc := NewService(snapshots, nil, nil)
	require.NoError(t, svc.Load(context.Background()))
	assert.Empty(t, svc.Decks())
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	snapshots.failWrites = true
	deck, err := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	require.ErrorIs(t, err, ErrPersistFailed)
	require.NotNil(t, deck, "the in-memory mutation stands")

	got, derr := svc.Deck(deck.UID)
	require.NoError(t, derr)
	assert.Equal(t, "Capitals", got.Name)
}

func TestMutationsNotifySubscribers(t *testing.T) {
	snapshots := newMemorySnapshots()
	bus := eventbus.New()
	svc := NewService(snapshots, nil, bus)
	require.NoError(t, svc.Load(context.Background()))

	notifications := 0
	bus.Subscribe(func() { notifications++ })

	ctx := context.Background()
	deck, _ := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	card, _ := svc.AddCard(ctx, deck.UID, "Q", "A", "")
	_, _ = svc.ReviewCard(ctx, deck.UID, card.UID, 5)
	_ = svc.DeleteCard(ctx, deck.UID, card.UID)
	_ = svc.DeleteDeck(ctx, deck.UID)

	assert.Equal(t, 5, notifications)

	// Pure queries never notify.
	_, _ = svc.DueCards("")
	assert.Equal(t, 5, notifications)
}

func TestCallersGetIsolatedCopies(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "Capitals", "", "#fff")
	card, _ := svc.AddCard(ctx, deck.UID, "Q", "A", "")

	// Mutating a returned card must not reach engine state.
	card.Front = "tampered"
	due, _ := svc.DueCards(deck.UID)
	due[0].Repetitions = 99

	got, _ := svc.Deck(deck.UID)
	assert.Equal(t, "Q", got.Cards[0].Front)
	assert.Equal(t, 0, got.Cards[0].Repetitions)
}
