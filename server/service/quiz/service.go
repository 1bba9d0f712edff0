package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/store"
)

// XP reward tiers for completed attempts, keyed by percentage score.
const (
	xpQuizBase      = 10
	xpQuizPass      = 20 // >= 50%
	xpQuizGood      = 30 // >= 70%
	xpQuizGreat     = 40 // >= 80%
	xpQuizExcellent = 50 // >= 90%

	reasonQuizCompleted = "quiz_completed"
)

// SnapshotStore is the persistence collaborator. Quizzes and attempts are
// written back as two separate snapshots after every mutation.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, upsert *store.Snapshot) (*store.Snapshot, error)
	GetSnapshot(ctx context.Context, find *store.FindSnapshot) (*store.Snapshot, error)
}

// Awarder receives XP signals for completed attempts.
type Awarder interface {
	AwardPoints(amount int, reason string)
}

// Service is the quiz attempt engine. All public operations run to
// completion under one lock.
type Service struct {
	mu       sync.Mutex
	quizzes  []*Quiz
	attempts []*Attempt
	store    SnapshotStore
	awarder  Awarder
	bus      *eventbus.Bus
	now      func() time.Time
}

// NewService creates a quiz engine backed by the given snapshot store.
// awarder and bus may be nil.
func NewService(snapshots SnapshotStore, awarder Awarder, bus *eventbus.Bus) *Service {
	return &Service{
		quizzes:  []*Quiz{},
		attempts: []*Attempt{},
		store:    snapshots,
		awarder:  awarder,
		bus:      bus,
		now:      time.Now,
	}
}

// Load restores quizzes and attempts from their persisted snapshots. Missing
// or corrupt snapshots yield empty collections and never fail startup.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quizzes = []*Quiz{}
	s.attempts = []*Attempt{}
	if err := loadSnapshot(ctx, s.store, store.SnapshotKeyQuizzes, &s.quizzes); err != nil {
		return err
	}
	return loadSnapshot(ctx, s.store, store.SnapshotKeyQuizAttempts, &s.attempts)
}

func loadSnapshot(ctx context.Context, snapshots SnapshotStore, key string, dest any) error {
	snapshot, err := snapshots.GetSnapshot(ctx, &store.FindSnapshot{Key: key})
	if err != nil {
		return errors.Wrapf(err, "failed to load %s snapshot", key)
	}
	if snapshot == nil || snapshot.Value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(snapshot.Value), dest); err != nil {
		slog.Error("corrupt snapshot, starting empty", "key", key, "error", err)
	}
	return nil
}

// Create builds and registers a new quiz. Questions without a UID get one
// assigned.
func (s *Service) Create(ctx context.Context, title, topic string, questions []*Question, timeLimit int) (*Quiz, error) {
	if title == "" {
		return nil, errors.New("quiz title is required")
	}
	if len(questions) == 0 {
		return nil, errors.New("quiz needs at least one question")
	}

	quiz := &Quiz{
		UID:       shortuuid.New(),
		Title:     title,
		Topic:     topic,
		TimeLimit: timeLimit,
		CreatedAt: s.now().UnixMilli(),
	}
	for _, question := range questions {
		q := question.clone()
		if q.UID == "" {
			q.UID = shortuuid.New()
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return s.Register(ctx, quiz)
}

// Register adds an externally built quiz, assigning a UID when missing.
// A quiz must be registered before attempts can be submitted against it.
// A quiz with no questions is accepted; attempts against it score 0 of 0.
func (s *Service) Register(ctx context.Context, quiz *Quiz) (*Quiz, error) {
	if quiz == nil {
		return nil, errors.New("quiz is required")
	}
	registered := quiz.clone()
	if registered.UID == "" {
		registered.UID = shortuuid.New()
	}
	if registered.CreatedAt == 0 {
		registered.CreatedAt = s.now().UnixMilli()
	}

	s.mu.Lock()
	replaced := false
	for i, existing := range s.quizzes {
		if existing.UID == registered.UID {
			s.quizzes[i] = registered
			replaced = true
			break
		}
	}
	if !replaced {
		s.quizzes = append(s.quizzes, registered)
	}
	result := registered.clone()
	err := s.persistQuizzesLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return result, err
}

// Delete removes a quiz and, cascading, all attempts recorded against it.
func (s *Service) Delete(ctx context.Context, quizUID string) error {
	s.mu.Lock()
	index := -1
	for i, quiz := range s.quizzes {
		if quiz.UID == quizUID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrQuizNotFound
	}
	s.quizzes = append(s.quizzes[:index], s.quizzes[index+1:]...)
	kept := s.attempts[:0]
	for _, attempt := range s.attempts {
		if attempt.QuizUID != quizUID {
			kept = append(kept, attempt)
		}
	}
	s.attempts = kept
	err := s.persistAllLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

// SubmitAttempt scores a submission against a registered quiz and records
// the attempt. An unregistered quiz is a hard failure: nothing is recorded.
// Answers are keyed by question UID; an omitted answer is graded incorrect.
func (s *Service) SubmitAttempt(ctx context.Context, quizUID string, answers map[string]string, timeTaken int) (*Attempt, error) {
	// Copy the submission so the recorded attempt is detached from the
	// caller's map.
	submitted := make(map[string]string, len(answers))
	for uid, answer := range answers {
		submitted[uid] = answer
	}

	s.mu.Lock()
	quiz := s.findQuizLocked(quizUID)
	if quiz == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizUID)
	}

	attempt := &Attempt{
		UID:            shortuuid.New(),
		QuizUID:        quizUID,
		Answers:        submitted,
		TotalQuestions: len(quiz.Questions),
		TimeTaken:      timeTaken,
		CompletedAt:    s.now().UnixMilli(),
	}
	for _, question := range quiz.Questions {
		userAnswer := submitted[question.UID]
		correct := answersMatch(userAnswer, question.CorrectAnswer)
		if correct {
			attempt.Score++
		}
		attempt.QuestionResults = append(attempt.QuestionResults, &QuestionResult{
			QuestionUID:   question.UID,
			Correct:       correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	s.attempts = append(s.attempts, attempt)
	result := attempt.clone()
	err := s.persistAttemptsLocked(ctx)
	s.mu.Unlock()

	s.notify()
	s.award(xpForPercentage(result.Percentage()), reasonQuizCompleted)
	return result, err
}

func xpForPercentage(percentage float64) int {
	switch {
	case percentage >= 90:
		return xpQuizExcellent
	case percentage >= 80:
		return xpQuizGreat
	case percentage >= 70:
		return xpQuizGood
	case percentage >= 50:
		return xpQuizPass
	default:
		return xpQuizBase
	}
}

// Quizzes returns a copy of all registered quizzes.
func (s *Service) Quizzes() []*Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		list = append(list, quiz.clone())
	}
	return list
}

// Quiz returns a copy of one quiz.
func (s *Service) Quiz(quizUID string) (*Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz := s.findQuizLocked(quizUID)
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz.clone(), nil
}

// Attempts returns recorded attempts, filtered by quiz when quizUID is
// non-empty, in submission order.
func (s *Service) Attempts(quizUID string) []*Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Attempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		if quizUID != "" && attempt.QuizUID != quizUID {
			continue
		}
		list = append(list, attempt.clone())
	}
	return list
}

// BestScore returns the highest percentage achieved on a quiz, 0 when it
// has no attempts.
func (s *Service) BestScore(quizUID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := 0.0
	for _, attempt := range s.attempts {
		if attempt.QuizUID != quizUID {
			continue
		}
		if p := attempt.Percentage(); p > best {
			best = p
		}
	}
	return best
}

// AverageScore returns the mean percentage across all attempts, 0 when
// there are none.
func (s *Service) AverageScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.attempts) == 0 {
		return 0
	}
	total := 0.0
	for _, attempt := range s.attempts {
		total += attempt.Percentage()
	}
	return total / float64(len(s.attempts))
}

// TotalCompleted returns the number of recorded attempts.
func (s *Service) TotalCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *Service) findQuizLocked(uid string) *Quiz {
	for _, quiz := range s.quizzes {
		if quiz.UID == uid {
			return quiz
		}
	}
	return nil
}

func (s *Service) persistQuizzesLocked(ctx context.Context) error {
	return s.persistSnapshotLocked(ctx, store.SnapshotKeyQuizzes, s.quizzes)
}

func (s *Service) persistAttemptsLocked(ctx context.Context) error {
	return s.persistSnapshotLocked(ctx, store.SnapshotKeyQuizAttempts, s.attempts)
}

func (s *Service) persistAllLocked(ctx context.Context) error {
	if err := s.persistQuizzesLocked(ctx); err != nil {
		return err
	}
	return s.persistAttemptsLocked(ctx)
}

// persistSnapshotLocked writes one collection as a snapshot. A failed write
// leaves the in-memory state authoritative; the caller gets the error
// alongside its already-applied result.
func (s *Service) persistSnapshotLocked(ctx context.Context, key string, collection any) error {
	value, err := json.Marshal(collection)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}
	if _, err := s.store.UpsertSnapshot(ctx, &store.Snapshot{
		Key:   key,
		Value: string(value),
	}); err != nil {
		slog.Error("failed to persist snapshot", "key", key, "error", err)
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
