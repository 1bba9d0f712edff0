package quiz

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/store"
)

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

func capitalsQuestions() []*Question {
	return []*Question{
		{
			UID:           "q1",
			Type:          QuestionTypeShortAnswer,
			Question:      "Capital of France?",
			CorrectAnswer: "Paris",
		},
		{
			UID:           "q2",
			Type:          QuestionTypeMCQ,
			Question:      "Capital of Spain?",
			Options:       []string{"Lisbon", "Madrid", "Rome"},
			CorrectAnswer: "Madrid",
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, quiz.UID)
	assert.Len(t, quiz.Questions, 2)
	assert.NotZero(t, quiz.CreatedAt)

	_, err = svc.Create(ctx, "", "geography", capitalsQuestions(), 0)
	require.Error(t, err)
	_, err = svc.Create(ctx, "Empty", "geography", nil, 0)
	require.Error(t, err)
}

func TestRegisterAssignsUIDAndReplaces(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, err := svc.Register(ctx, &Quiz{Title: "Capitals", Questions: capitalsQuestions()})
	require.NoError(t, err)
	assert.NotEmpty(t, quiz.UID)

	// Registering the same UID again replaces instead of duplicating.
	quiz.Title = "Capitals v2"
	_, err = svc.Register(ctx, quiz)
	require.NoError(t, err)
	require.Len(t, svc.Quizzes(), 1)
	got, _ := svc.Quiz(quiz.UID)
	assert.Equal(t, "Capitals v2", got.Title)
}

func TestSubmitAttemptScoring(t *testing.T) {
	svc, _, awarder := newTestService(t)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	require.NoError(t, err)
	q1, q2 := quiz.Questions[0].UID, quiz.Questions[1].UID

	// Normalization accepts " paris " for "Paris"; q2 is wrong.
	attempt, err := svc.SubmitAttempt(ctx, quiz.UID, map[string]string{
		q1: " paris ",
		q2: "Rome",
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 2, attempt.TotalQuestions)
	assert.Equal(t, 42, attempt.TimeTaken)
	require.Len(t, attempt.QuestionResults, 2)
	assert.True(t, attempt.QuestionResults[0].Correct)
	assert.False(t, attempt.QuestionResults[1].Correct)
	assert.InDelta(t, 50.0, attempt.Percentage(), 1e-9)

	// 50% lands in the xpQuizPass tier.
	assert.Equal(t, []int{xpQuizPass}, awarder.amounts)
	assert.Equal(t, []string{reasonQuizCompleted}, awarder.reasons)
}

func TestSubmitAttemptOmittedAnswersAreWrong(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, _ := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)

	attempt, err := svc.SubmitAttempt(ctx, quiz.UID, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Score)
	assert.Equal(t, 2, attempt.TotalQuestions)
	for _, result := range attempt.QuestionResults {
		assert.False(t, result.Correct)
		assert.Empty(t, result.UserAnswer)
	}
}

func TestSubmitAttemptDetachesCallerAnswers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, _ := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	q1 := quiz.Questions[0].UID

	answers := map[string]string{q1: "Paris"}
	_, err := svc.SubmitAttempt(ctx, quiz.UID, answers, 0)
	require.NoError(t, err)

	// Mutating the caller's map must not reach the recorded attempt.
	answers[q1] = "Lyon"
	recorded := svc.Attempts("")
	require.Len(t, recorded, 1)
	assert.Equal(t, "Paris", recorded[0].Answers[q1])
}

func TestRegisterAcceptsQuizWithoutQuestions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, err := svc.Register(ctx, &Quiz{Title: "Placeholder"})
	require.NoError(t, err)
	assert.Empty(t, quiz.Questions)

	// Attempts against it score 0 of 0.
	attempt, err := svc.SubmitAttempt(ctx, quiz.UID, map[string]string{"q1": "x"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Score)
	assert.Equal(t, 0, attempt.TotalQuestions)
	assert.Zero(t, attempt.Percentage())
}

func TestSubmitAttemptUnknownQuizRecordsNothing(t *testing.T) {
	svc, _, awarder := newTestService(t)

	_, err := svc.SubmitAttempt(context.Background(), "missing", map[string]string{"q1": "x"}, 0)
	require.ErrorIs(t, err, ErrQuizNotFound)
	assert.Empty(t, svc.Attempts(""))
	assert.Empty(t, awarder.amounts)
}

func TestXPForPercentageTiers(t *testing.T) {
	tests := []struct {
		percentage float64
		want       int
	}{
		{100, 50}, {90, 50},
		{89.9, 40}, {80, 40},
		{79, 30}, {70, 30},
		{69, 20}, {50, 20},
		{49, 10}, {0, 10},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, xpForPercentage(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestDeleteQuizCascadesAttempts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	keep, _ := svc.Create(ctx, "Keep", "a", capitalsQuestions(), 0)
	drop, _ := svc.Create(ctx, "Drop", "b", capitalsQuestions(), 0)
	_, err := svc.SubmitAttempt(ctx, keep.UID, nil, 0)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, drop.UID, nil, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, drop.UID))
	assert.Len(t, svc.Quizzes(), 1)
	require.Len(t, svc.Attempts(""), 1)
	assert.Equal(t, keep.UID, svc.Attempts("")[0].QuizUID)

	require.ErrorIs(t, svc.Delete(ctx, drop.UID), ErrQuizNotFound)
}

func TestScoreAggregates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	quiz, _ := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	q1, q2 := quiz.Questions[0].UID, quiz.Questions[1].UID

	assert.Zero(t, svc.BestScore(quiz.UID))
	assert.Zero(t, svc.AverageScore())
	assert.Zero(t, svc.TotalCompleted())

	_, err := svc.SubmitAttempt(ctx, quiz.UID, map[string]string{q1: "Paris"}, 0) // 50%
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, quiz.UID, map[string]string{q1: "Paris", q2: "Madrid"}, 0) // 100%
	require.NoError(t, err)

	assert.InDelta(t, 100.0, svc.BestScore(quiz.UID), 1e-9)
	assert.InDelta(t, 75.0, svc.AverageScore(), 1e-9)
	assert.Equal(t, 2, svc.TotalCompleted())
	assert.Len(t, svc.Attempts(quiz.UID), 2)
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	quiz, _ := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 60)
	_, err := svc.SubmitAttempt(ctx, quiz.UID, map[string]string{"q1": "Paris"}, 30)
	require.NoError(t, err)

	restored := NewService(snapshots, nil, nil)
	require.NoError(t, restored.Load(ctx))
	require.Len(t, restored.Quizzes(), 1)
	require.Len(t, restored.Attempts(""), 1)
	assert.Equal(t, 1, restored.Attempts("")[0].Score)
	assert.InDelta(t, 50.0, restored.BestScore(quiz.UID), 1e-9)
}

func TestLoadToleratesCorruptSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.data[store.SnapshotKeyQuizzes] = "{not json"

	svc := NewService(snapshots, nil, nil)
	require.NoError(t, svc.Load(context.Background()))
	assert.Empty(t, svc.Quizzes())
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	svc, snapshots, _ := newTestService(t)
	ctx := context.Background()

	snapshots.failWrites = true
	quiz, err := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	require.ErrorIs(t, err, ErrPersistFailed)
	require.NotNil(t, quiz)

	got, gerr := svc.Quiz(quiz.UID)
	require.NoError(t, gerr)
	assert.Equal(t, "Capitals", got.Title)
}

func TestMutationsNotifySubscribers(t *testing.T) {
	snapshots := newMemorySnapshots()
	bus := eventbus.New()
	svc := NewService(snapshots, nil, bus)
	require.NoError(t, svc.Load(context.Background()))

	notifications := 0
	bus.Subscribe(func() { notifications++ })

	ctx := context.Background()
	quiz, _ := svc.Create(ctx, "Capitals", "geography", capitalsQuestions(), 0)
	_, _ = svc.SubmitAttempt(ctx, quiz.UID, nil, 0)
	_ = svc.Delete(ctx, quiz.UID)

	assert.Equal(t, 3, notifications)

	// Pure queries never notify.
	_ = svc.AverageScore()
	assert.Equal(t, 3, notifications)
}
