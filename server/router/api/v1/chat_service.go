package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/plugin/ai/tutor"
	"github.com/studywithme/studywithme/server/service/quiz"
	"github.com/studywithme/studywithme/server/service/review"
)

func (s *APIV1Service) registerChatRoutes(g *echo.Group) {
	g.GET("/conversations", s.listConversations)
	g.POST("/conversations", s.createConversation)
	g.DELETE("/conversations/:conversationUid", s.deleteConversation)
	g.GET("/conversations/:conversationUid/messages", s.listMessages)
	g.POST("/conversations/:conversationUid/messages", s.sendMessage)

	g.POST("/ai/quizzes/generate", s.generateQuiz)
	g.POST("/ai/flashcards/generate", s.generateFlashcards)
}

func (s *APIV1Service) aiUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, &errorResponse{
		Message: "AI tutor is not enabled; configure an API key to use this endpoint",
	})
}

type createConversationRequest struct {
	Title string `json:"title"`
	Depth string `json:"depth"`
}

func (s *APIV1Service) createConversation(c echo.Context) error {
	request := &createConversationRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}

	conversation, err := s.Chat.CreateConversation(c.Request().Context(), request.Title, tutor.DepthLevel(request.Depth))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusCreated, conversation)
}

func (s *APIV1Service) listConversations(c echo.Context) error {
	conversations, err := s.Chat.ListConversations(c.Request().Context())
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, conversations)
}

func (s *APIV1Service) deleteConversation(c echo.Context) error {
	if err := s.Chat.DeleteConversation(c.Request().Context(), c.Param("conversationUid")); err != nil {
		return replyError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) listMessages(c echo.Context) error {
	messages, err := s.Chat.Messages(c.Request().Context(), c.Param("conversationUid"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
	Context string `json:"context"`
}

func (s *APIV1Service) sendMessage(c echo.Context) error {
	if !s.Chat.Enabled() {
		return s.aiUnavailable(c)
	}
	request := &sendMessageRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Message == "" {
		return badRequest(c, "message is required")
	}

	reply, err := s.Chat.SendMessage(c.Request().Context(),
		c.Param("conversationUid"), request.Message, tutor.TaskMode(request.Mode), request.Context)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

type generateQuizRequest struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

// generateQuiz asks the tutor for questions about a topic and registers the
// result as a playable quiz.
func (s *APIV1Service) generateQuiz(c echo.Context) error {
	if s.Tutor == nil {
		return s.aiUnavailable(c)
	}
	request := &generateQuizRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Topic == "" {
		return badRequest(c, "topic is required")
	}

	generated, err := s.Tutor.GenerateQuiz(c.Request().Context(), request.Topic, request.QuestionCount, request.Difficulty)
	if err != nil {
		return replyError(c, err)
	}

	questions := make([]*quiz.Question, 0, len(generated))
	for _, question := range generated {
		questions = append(questions, &quiz.Question{
			Type:          quiz.QuestionTypeMCQ,
			Question:      question.Question,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
			Difficulty:    request.Difficulty,
			Topic:         request.Topic,
		})
	}
	created, err := s.Quiz.Create(c.Request().Context(),
		fmt.Sprintf("%s Quiz", request.Topic), request.Topic, questions, 0)
	return replyMaybePersisted(c, http.StatusCreated, created, err)
}

type generateFlashcardsRequest struct {
	Topic   string `json:"topic"`
	Count   int    `json:"count"`
	DeckUID string `json:"deckUid"`
}

// generateFlashcards asks the tutor for cards about a topic. When a deck is
// given the cards are added to it; otherwise a new deck is created.
func (s *APIV1Service) generateFlashcards(c echo.Context) error {
	if s.Tutor == nil {
		return s.aiUnavailable(c)
	}
	request := &generateFlashcardsRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Topic == "" {
		return badRequest(c, "topic is required")
	}

	generated, err := s.Tutor.GenerateFlashcards(c.Request().Context(), request.Topic, request.Count)
	if err != nil {
		return replyError(c, err)
	}

	ctx := c.Request().Context()
	var persistErr error
	deckUID := request.DeckUID
	if deckUID == "" {
		deck, err := s.Review.CreateDeck(ctx, request.Topic, fmt.Sprintf("Generated cards about %s", request.Topic), "")
		if err != nil {
			if !errors.Is(err, review.ErrPersistFailed) {
				return replyError(c, err)
			}
			persistErr = err
		}
		deckUID = deck.UID
	}
	for _, card := range generated {
		if _, err := s.Review.AddCard(ctx, deckUID, card.Front, card.Back, request.Topic); err != nil {
			if errors.Is(err, review.ErrPersistFailed) {
				persistErr = err
				continue
			}
			return replyError(c, err)
		}
	}

	deck, err := s.Review.Deck(deckUID)
	if err != nil {
		return replyError(c, err)
	}
	return replyMaybePersisted(c, http.StatusCreated, deck, persistErr)
}
