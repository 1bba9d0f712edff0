package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studywithme/studywithme/server/service/quiz"
)

func (s *APIV1Service) registerQuizRoutes(g *echo.Group) {
	g.GET("/quizzes", s.listQuizzes)
	g.POST("/quizzes", s.createQuiz)
	g.GET("/quizzes/:quizUid", s.getQuiz)
	g.DELETE("/quizzes/:quizUid", s.deleteQuiz)
	g.POST("/quizzes/:quizUid/attempts", s.submitAttempt)
	g.GET("/quizzes/:quizUid/attempts", s.listQuizAttempts)
	g.GET("/attempts", s.listAllAttempts)
}

type createQuizRequest struct {
	Title     string           `json:"title"`
	Topic     string           `json:"topic"`
	Questions []*quiz.Question `json:"questions"`
	TimeLimit int              `json:"timeLimit"`
}

func (s *APIV1Service) createQuiz(c echo.Context) error {
	request := &createQuizRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Title == "" {
		return badRequest(c, "quiz title is required")
	}
	if len(request.Questions) == 0 {
		return badRequest(c, "quiz needs at least one question")
	}

	created, err := s.Quiz.Create(c.Request().Context(), request.Title, request.Topic, request.Questions, request.TimeLimit)
	return replyMaybePersisted(c, http.StatusCreated, created, err)
}

func (s *APIV1Service) listQuizzes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Quiz.Quizzes())
}

func (s *APIV1Service) getQuiz(c echo.Context) error {
	found, err := s.Quiz.Quiz(c.Param("quizUid"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

func (s *APIV1Service) deleteQuiz(c echo.Context) error {
	if err := s.Quiz.Delete(c.Request().Context(), c.Param("quizUid")); err != nil {
		return replyMaybePersisted(c, http.StatusNoContent, nil, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type submitAttemptRequest struct {
	Answers   map[string]string `json:"answers"`
	TimeTaken int               `json:"timeTaken"`
}

func (s *APIV1Service) submitAttempt(c echo.Context) error {
	request := &submitAttemptRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}

	attempt, err := s.Quiz.SubmitAttempt(c.Request().Context(), c.Param("quizUid"), request.Answers, request.TimeTaken)
	return replyMaybePersisted(c, http.StatusCreated, attempt, err)
}

func (s *APIV1Service) listQuizAttempts(c echo.Context) error {
	quizUID := c.Param("quizUid")
	if _, err := s.Quiz.Quiz(quizUID); err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, s.Quiz.Attempts(quizUID))
}

func (s *APIV1Service) listAllAttempts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Quiz.Attempts(""))
}
