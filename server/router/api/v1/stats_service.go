package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studywithme/studywithme/server/service/gamification"
)

func (s *APIV1Service) registerStatsRoutes(g *echo.Group) {
	g.GET("/stats", s.getStats)
	g.GET("/dashboard/metrics", s.getDashboardMetrics)
	g.GET("/ai/usage", s.getAIUsage)
}

func (s *APIV1Service) getAIUsage(c echo.Context) error {
	if s.AIProvider == nil {
		return s.aiUnavailable(c)
	}
	return c.JSON(http.StatusOK, s.AIProvider.Usage())
}

func (s *APIV1Service) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Gamification.Stats())
}

// dashboardMetrics aggregates the numbers the dashboard shows on one screen.
type dashboardMetrics struct {
	Stats           *gamification.Stats `json:"stats"`
	DueCards        int                 `json:"dueCards"`
	DeckCount       int                 `json:"deckCount"`
	QuizCount       int                 `json:"quizCount"`
	QuizzesTaken    int                 `json:"quizzesTaken"`
	AverageScore    float64             `json:"averageScore"`
	TotalFlashcards int                 `json:"totalFlashcards"`
}

func (s *APIV1Service) getDashboardMetrics(c echo.Context) error {
	decks := s.Review.Decks()
	totalCards := 0
	for _, deck := range decks {
		totalCards += len(deck.Cards)
	}

	return c.JSON(http.StatusOK, &dashboardMetrics{
		Stats:           s.Gamification.Stats(),
		DueCards:        s.Review.DueCount(),
		DeckCount:       len(decks),
		QuizCount:       len(s.Quiz.Quizzes()),
		QuizzesTaken:    s.Quiz.TotalCompleted(),
		AverageScore:    s.Quiz.AverageScore(),
		TotalFlashcards: totalCards,
	})
}
