// Package api exposes accounts, progress and scoring over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/typechallenge/internal/attempt"
	"github.com/verte-zerg/typechallenge/internal/auth"
	"github.com/verte-zerg/typechallenge/internal/health"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/model"
	"github.com/verte-zerg/typechallenge/internal/progress"
)

// UserDirectory resolves usernames to accounts.
type UserDirectory interface {
	UserByUsername(ctx context.Context, username string) (model.User, error)
}

// Server holds the handler dependencies.
type Server struct {
	Auth    *auth.Service
	Users   UserDirectory
	Tracker *progress.Tracker
	Catalog *levels.Catalog
	Health  *health.Handler
	Logger  *slog.Logger

	// Revalidate makes /progress/save re-score the transcript instead of
	// trusting the submitted numbers.
	Revalidate bool

	// Clock and TickInterval drive live attempts; zero values use the
	// system clock and one second.
	Clock        attempt.Clock
	TickInterval time.Duration
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(corsMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})
	r.Route("/progress", func(r chi.Router) {
		r.Post("/save", s.handleSaveProgress)
		r.Get("/load/{username}", s.handleLoadProgress)
		r.Post("/reset", s.handleResetProgress)
	})
	r.Post("/score", s.handleScore)
	r.Get("/levels", s.handleLevels)
	r.Get("/ws/attempt", s.handleAttemptWS)

	if s.Health != nil {
		r.Get("/healthz", s.Health.Healthz)
		r.Get("/readyz", s.Health.Readyz)
	}
	return r
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) clock() attempt.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return attempt.SystemClock()
}

func (s *Server) tickInterval() time.Duration {
	if s.TickInterval > 0 {
		return s.TickInterval
	}
	return time.Second
}
