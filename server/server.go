// Package server assembles the HTTP server: engines, store, AI tutor and
// the v1 REST API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/internal/profile"
	"github.com/studywithme/studywithme/plugin/ai"
	"github.com/studywithme/studywithme/plugin/ai/tutor"
	"github.com/studywithme/studywithme/server/middleware"
	apiv1 "github.com/studywithme/studywithme/server/router/api/v1"
	"github.com/studywithme/studywithme/server/service/chat"
	"github.com/studywithme/studywithme/server/service/gamification"
	"github.com/studywithme/studywithme/server/service/quiz"
	"github.com/studywithme/studywithme/server/service/review"
	"github.com/studywithme/studywithme/store"
)

// Server is the assembled application.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo

	Review       *review.Service
	Quiz         *quiz.Service
	Gamification *gamification.Service
	Chat         *chat.Service
}

// NewServer wires the engines to the store, loads their snapshots, and
// registers the API routes.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	echoServer.Use(middleware.NewRequestLogger(func(method, path string, status int, latency time.Duration, err error) {
		if err != nil {
			slog.Warn("request failed", "method", method, "path", path, "status", status, "latency", latency, "error", err)
			return
		}
		slog.Debug("request", "method", method, "path", path, "status", status, "latency", latency)
	}))
	echoServer.Use(middleware.NewRateLimiter(10, 20).Middleware())

	bus := eventbus.New()
	gamificationService := gamification.NewService(store, bus)
	reviewService := review.NewService(store, gamificationService, bus)
	quizService := quiz.NewService(store, gamificationService, bus)

	if err := gamificationService.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to load gamification state")
	}
	if err := reviewService.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to load review state")
	}
	if err := quizService.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to load quiz state")
	}

	var tutorService *tutor.Service
	var aiProvider *ai.Provider
	if profile.IsAIEnabled() {
		aiProvider = ai.NewProvider(&ai.Config{
			BaseURL:   profile.AIBaseURL,
			APIKey:    profile.AIAPIKey,
			ChatModel: profile.AIChatModel,
		})
		tutorService = tutor.NewService(aiProvider)
		slog.Info("AI tutor enabled", "model", profile.AIChatModel)
	} else {
		slog.Info("AI tutor disabled")
	}
	chatService := chat.NewService(store, tutorOrNil(tutorService))

	server := &Server{
		Profile:      profile,
		Store:        store,
		echoServer:   echoServer,
		Review:       reviewService,
		Quiz:         quizService,
		Gamification: gamificationService,
		Chat:         chatService,
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiService := apiv1.NewAPIV1Service(profile, store, reviewService, quizService, gamificationService, chatService, tutorService, aiProvider)
	apiService.RegisterRoutes(echoServer.Group("/api/v1"))

	return server, nil
}

// tutorOrNil keeps a typed-nil *tutor.Service from leaking into the chat
// service's interface field.
func tutorOrNil(t *tutor.Service) chat.Tutor {
	if t == nil {
		return nil
	}
	return t
}

// Start begins serving. It blocks until the listener fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}
