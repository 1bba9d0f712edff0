// Package tutor implements the AI study companion: depth-aware chat,
// assignment guardrails, and quiz/flashcard generation from a topic.
package tutor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/plugin/ai"
)

// Defaults applied when a request leaves fields unset.
const (
	defaultQuestionCount = 5
	defaultCardCount     = 5
	defaultDifficulty    = "medium"

	maxQuestionCount = 20
	maxCardCount     = 30
)

// ChatRequest is one tutoring turn. History carries the prior conversation
// turns in order; Context optionally scopes the question to material the
// student is working on.
type ChatRequest struct {
	Message string
	Context string
	Depth   DepthLevel
	Mode    TaskMode
	History []ai.Message
}

// ChatResponse carries the tutor's reply. EthicsFlag is set when an
// assignment-mode request looked like answer fishing.
type ChatResponse struct {
	Text       string
	EthicsFlag bool
}

// Service is the tutoring front end over an LLM.
type Service struct {
	llm ai.LLM
}

// NewService creates a tutor over the given LLM.
func NewService(llm ai.LLM) *Service {
	return &Service{llm: llm}
}

// Chat runs one tutoring turn.
func (s *Service) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil || req.Message == "" {
		return nil, errors.New("message is required")
	}
	depth := req.Depth
	if !depth.Valid() {
		depth = DepthCore
	}
	mode := req.Mode
	if !mode.Valid() {
		mode = ModeLearning
	}

	messages := []ai.Message{ai.SystemMessage(buildSystemInstruction(depth, mode))}
	messages = append(messages, req.History...)
	messages = append(messages, ai.UserMessage(formatUserMessage(req.Message, req.Context)))

	text, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, errors.Wrap(err, "tutor chat failed")
	}
	return &ChatResponse{
		Text:       text,
		EthicsFlag: flagAnswerSeeking(mode, req.Message),
	}, nil
}

// GenerateQuiz asks the model for MCQs about a topic and parses them into
// structured questions.
func (s *Service) GenerateQuiz(ctx context.Context, topic string, questionCount int, difficulty string) ([]*GeneratedQuestion, error) {
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}
	if questionCount > maxQuestionCount {
		questionCount = maxQuestionCount
	}
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	raw, err := s.llm.Chat(ctx, []ai.Message{
		ai.SystemMessage(buildSystemInstruction(DepthCore, ModeLearning)),
		ai.UserMessage(quizPrompt(topic, questionCount, difficulty)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "quiz generation failed")
	}

	questions := parseQuizText(raw)
	if len(questions) == 0 {
		return nil, errors.New("model returned no parseable questions")
	}
	return questions, nil
}

// GenerateFlashcards asks the model for FRONT/BACK cards about a topic and
// parses them into card pairs.
func (s *Service) GenerateFlashcards(ctx context.Context, topic string, count int) ([]*GeneratedCard, error) {
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if count <= 0 {
		count = defaultCardCount
	}
	if count > maxCardCount {
		count = maxCardCount
	}

	raw, err := s.llm.Chat(ctx, []ai.Message{
		ai.SystemMessage(buildSystemInstruction(DepthCore, ModeLearning)),
		ai.UserMessage(flashcardPrompt(topic, count)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "flashcard generation failed")
	}

	cards := parseFlashcardText(raw)
	if len(cards) == 0 {
		return nil, errors.New("model returned no parseable flashcards")
	}
	return cards, nil
}
