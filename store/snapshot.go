package store

import (
	"context"
)

// Snapshot is one engine collection serialized as a JSON blob.
// The engines own their state in memory and write it back whole after every
// mutation, so a snapshot is always a complete, consistent collection.
type Snapshot struct {
	Key       string
	Value     string
	UpdatedTs int64
}

// Well-known snapshot keys.
const (
	SnapshotKeyFlashcards   = "flashcards"
	SnapshotKeyQuizzes      = "quizzes"
	SnapshotKeyQuizAttempts = "quiz_attempts"
	SnapshotKeyUserStats    = "user_stats"
)

// FindSnapshot is the find condition for snapshot.
type FindSnapshot struct {
	Key string
}

// UpsertSnapshot writes a snapshot, replacing any previous value for the key.
func (s *Store) UpsertSnapshot(ctx context.Context, upsert *Snapshot) (*Snapshot, error) {
	return s.driver.UpsertSnapshot(ctx, upsert)
}

// GetSnapshot reads a snapshot by key. Returns nil when no snapshot exists.
func (s *Store) GetSnapshot(ctx context.Context, find *FindSnapshot) (*Snapshot, error) {
	return s.driver.GetSnapshot(ctx, find)
}
