package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studywithme/studywithme/server/service/review"
)

func (s *APIV1Service) registerReviewRoutes(g *echo.Group) {
	g.GET("/decks", s.listDecks)
	g.POST("/decks", s.createDeck)
	g.GET("/decks/:deckUid", s.getDeck)
	g.DELETE("/decks/:deckUid", s.deleteDeck)
	g.POST("/decks/:deckUid/cards", s.addCard)
	g.DELETE("/decks/:deckUid/cards/:cardUid", s.deleteCard)
	g.POST("/decks/:deckUid/cards/:cardUid/review", s.reviewCard)
	g.GET("/decks/:deckUid/due", s.listDueCards)
	g.GET("/due", s.listAllDueCards)
}

type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (s *APIV1Service) createDeck(c echo.Context) error {
	request := &createDeckRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Name == "" {
		return badRequest(c, "deck name is required")
	}

	deck, err := s.Review.CreateDeck(c.Request().Context(), request.Name, request.Description, request.Color)
	return replyMaybePersisted(c, http.StatusCreated, deck, err)
}

func (s *APIV1Service) listDecks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Review.Decks())
}

func (s *APIV1Service) getDeck(c echo.Context) error {
	deck, err := s.Review.Deck(c.Param("deckUid"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, deck)
}

func (s *APIV1Service) deleteDeck(c echo.Context) error {
	if err := s.Review.DeleteDeck(c.Request().Context(), c.Param("deckUid")); err != nil {
		return replyMaybePersisted(c, http.StatusNoContent, nil, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type addCardRequest struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Topic string `json:"topic"`
}

func (s *APIV1Service) addCard(c echo.Context) error {
	request := &addCardRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.Front == "" || request.Back == "" {
		return badRequest(c, "card front and back are required")
	}

	card, err := s.Review.AddCard(c.Request().Context(), c.Param("deckUid"), request.Front, request.Back, request.Topic)
	return replyMaybePersisted(c, http.StatusCreated, card, err)
}

func (s *APIV1Service) deleteCard(c echo.Context) error {
	err := s.Review.DeleteCard(c.Request().Context(), c.Param("deckUid"), c.Param("cardUid"))
	if err != nil {
		return replyMaybePersisted(c, http.StatusNoContent, nil, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type reviewCardRequest struct {
	Quality int `json:"quality"`
}

func (s *APIV1Service) reviewCard(c echo.Context) error {
	request := &reviewCardRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c, "malformed request body")
	}

	card, err := s.Review.ReviewCard(c.Request().Context(),
		c.Param("deckUid"), c.Param("cardUid"), review.Quality(request.Quality))
	return replyMaybePersisted(c, http.StatusOK, card, err)
}

func (s *APIV1Service) listDueCards(c echo.Context) error {
	cards, err := s.Review.DueCards(c.Param("deckUid"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (s *APIV1Service) listAllDueCards(c echo.Context) error {
	cards, err := s.Review.DueCards("")
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}
