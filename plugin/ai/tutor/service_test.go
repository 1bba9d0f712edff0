package tutor

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywithme/studywithme/plugin/ai"
)

func TestChatBuildsPrompt(t *testing.T) {
	llm := &MockLLM{Responses: []string{"A binary tree is..."}}
	svc := NewService(llm)

	resp, err := svc.Chat(context.Background(), &ChatRequest{
		Message: "What is a binary tree?",
		Context: "CS101 data structures",
		Depth:   DepthApplied,
		Mode:    ModeLearning,
		History: []ai.Message{
			ai.UserMessage("hi"),
			ai.AssistantMessage("hello, what shall we study?"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "A binary tree is...", resp.Text)
	assert.False(t, resp.EthicsFlag)

	require.Len(t, llm.Requests, 1)
	messages := llm.Requests[0]
	require.Len(t, messages, 4, "system + 2 history + user")
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "StudyWithMe")
	assert.Contains(t, messages[0].Content, "DEPTH: APPLIED")
	assert.Contains(t, messages[0].Content, "INTERACTIVE LEARNING")
	assert.Contains(t, messages[3].Content, "Context: CS101 data structures")
	assert.Contains(t, messages[3].Content, "Student Question: What is a binary tree?")
}

func TestChatDefaultsDepthAndMode(t *testing.T) {
	llm := &MockLLM{Responses: []string{"ok"}}
	svc := NewService(llm)

	_, err := svc.Chat(context.Background(), &ChatRequest{Message: "teach me recursion"})
	require.NoError(t, err)
	system := llm.Requests[0][0].Content
	assert.Contains(t, system, "DEPTH: CORE")
}

func TestChatAssignmentModeFlagsAnswerSeeking(t *testing.T) {
	llm := &MockLLM{Responses: []string{"Let's think about it together."}}
	svc := NewService(llm)

	resp, err := svc.Chat(context.Background(), &ChatRequest{
		Message: "Just give me the answer to problem 3",
		Mode:    ModeAssignment,
	})
	require.NoError(t, err)
	assert.True(t, resp.EthicsFlag)
	assert.Contains(t, llm.Requests[0][0].Content, "ASSIGNMENT HELP")

	// The same message in learning mode is not flagged.
	resp, err = svc.Chat(context.Background(), &ChatRequest{
		Message: "Just give me the answer to problem 3",
		Mode:    ModeLearning,
	})
	require.NoError(t, err)
	assert.False(t, resp.EthicsFlag)
}

func TestChatValidation(t *testing.T) {
	svc := NewService(&MockLLM{})
	_, err := svc.Chat(context.Background(), nil)
	require.Error(t, err)
	_, err = svc.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
}

func TestChatPropagatesLLMError(t *testing.T) {
	svc := NewService(&MockLLM{Err: errors.New("rate limited")})
	_, err := svc.Chat(context.Background(), &ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateQuiz(t *testing.T) {
	llm := &MockLLM{Responses: []string{sampleQuizText}}
	svc := NewService(llm)

	questions, err := svc.GenerateQuiz(context.Background(), "geography", 2, "easy")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Paris", questions[0].CorrectAnswer)

	prompt := llm.Requests[0][1].Content
	assert.Contains(t, prompt, `"geography"`)
	assert.Contains(t, prompt, "exactly 2 multiple choice questions")
	assert.Contains(t, prompt, "easy difficulty")
}

func TestGenerateQuizDefaultsAndLimits(t *testing.T) {
	llm := &MockLLM{Responses: []string{sampleQuizText}}
	svc := NewService(llm)

	_, err := svc.GenerateQuiz(context.Background(), "go", 0, "")
	require.NoError(t, err)
	assert.Contains(t, llm.Requests[0][1].Content, "exactly 5 multiple choice questions")
	assert.Contains(t, llm.Requests[0][1].Content, "medium difficulty")

	_, err = svc.GenerateQuiz(context.Background(), "go", 500, "hard")
	require.NoError(t, err)
	assert.Contains(t, llm.Requests[1][1].Content, "exactly 20 multiple choice questions")

	_, err = svc.GenerateQuiz(context.Background(), "", 5, "medium")
	require.Error(t, err, "topic is required")
}

func TestGenerateQuizUnparseableOutput(t *testing.T) {
	svc := NewService(&MockLLM{Responses: []string{"Sorry, I can't do that."}})
	_, err := svc.GenerateQuiz(context.Background(), "geography", 5, "medium")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no parseable"))
}

func TestGenerateFlashcards(t *testing.T) {
	llm := &MockLLM{Responses: []string{sampleCardText}}
	svc := NewService(llm)

	cards, err := svc.GenerateFlashcards(context.Background(), "go concurrency", 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is a goroutine?", cards[0].Front)

	assert.Contains(t, llm.Requests[0][1].Content, `"go concurrency"`)
	assert.Contains(t, llm.Requests[0][1].Content, "Create 2 flashcards")

	_, err = svc.GenerateFlashcards(context.Background(), "", 5)
	require.Error(t, err)
}
