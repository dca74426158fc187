// Package server contains everything related to the Server
package server

import (
	"net/http"

	"github.com/starquake/quizgen/internal/config"
	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/manage"
	"github.com/starquake/quizgen/internal/quiz"
	"github.com/starquake/quizgen/internal/session"
)

// Deps holds what the handlers need.
type Deps struct {
	Config   *config.Config
	Store    quiz.Store
	Manage   *manage.Service
	Sessions *session.Service
}

// NewDeps builds the services on top of store.
func NewDeps(cfg *config.Config, store quiz.Store, logger *logging.Logger) *Deps {
	return &Deps{
		Config:   cfg,
		Store:    store,
		Manage:   manage.NewService(store, logger),
		Sessions: session.NewService(store, logger, session.WithTTL(cfg.SessionTTL)),
	}
}

// NewServer creates a new server.
func NewServer(logger *logging.Logger, deps *Deps) http.Handler {
	mux := http.NewServeMux()
	AddRoutes(mux, logger, deps)
	var handler http.Handler = mux

	return handler
}
