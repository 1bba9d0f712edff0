// Package v1 exposes the REST API: decks and spaced-repetition reviews,
// quizzes and attempts, gamification stats, and the AI tutor.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/profile"
	"github.com/studywithme/studywithme/plugin/ai"
	"github.com/studywithme/studywithme/plugin/ai/tutor"
	"github.com/studywithme/studywithme/server/service/chat"
	"github.com/studywithme/studywithme/server/service/gamification"
	"github.com/studywithme/studywithme/server/service/quiz"
	"github.com/studywithme/studywithme/server/service/review"
	"github.com/studywithme/studywithme/store"
)

type APIV1Service struct {
	Profile      *profile.Profile
	Store        *store.Store
	Review       *review.Service
	Quiz         *quiz.Service
	Gamification *gamification.Service
	Chat         *chat.Service
	// Tutor and AIProvider are nil when AI is disabled; AI endpoints then
	// return 503.
	Tutor      *tutor.Service
	AIProvider *ai.Provider
}

func NewAPIV1Service(
	profile *profile.Profile,
	store *store.Store,
	reviewService *review.Service,
	quizService *quiz.Service,
	gamificationService *gamification.Service,
	chatService *chat.Service,
	tutorService *tutor.Service,
	aiProvider *ai.Provider,
) *APIV1Service {
	return &APIV1Service{
		Profile:      profile,
		Store:        store,
		Review:       reviewService,
		Quiz:         quizService,
		Gamification: gamificationService,
		Chat:         chatService,
		Tutor:        tutorService,
		AIProvider:   aiProvider,
	}
}

// RegisterRoutes registers all v1 routes on the given group.
func (s *APIV1Service) RegisterRoutes(g *echo.Group) {
	s.registerReviewRoutes(g)
	s.registerQuizRoutes(g)
	s.registerStatsRoutes(g)
	s.registerChatRoutes(g)
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Message string `json:"message"`
}

// replyError maps service errors onto HTTP status codes.
func replyError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, review.ErrDeckNotFound),
		errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, quiz.ErrQuizNotFound),
		errors.Is(err, chat.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, review.ErrInvalidQuality):
		status = http.StatusBadRequest
	}
	return c.JSON(status, &errorResponse{Message: err.Error()})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, &errorResponse{Message: message})
}

// replyMaybePersisted returns the mutation result, downgrading a failed
// snapshot write to a warning header: the in-memory mutation stands, so the
// client gets its result, but sees that durability is not guaranteed.
func replyMaybePersisted(c echo.Context, status int, body any, err error) error {
	if err != nil {
		if errors.Is(err, review.ErrPersistFailed) || errors.Is(err, quiz.ErrPersistFailed) {
			c.Response().Header().Set("Warning", `199 - "state not persisted"`)
		} else {
			return replyError(c, err)
		}
	}
	if body == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, body)
}
