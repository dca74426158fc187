package server

import (
	"net/http"

	"github.com/starquake/quizgen/cmd/server/health"
	"github.com/starquake/quizgen/internal/admin"
	"github.com/starquake/quizgen/internal/client"
	"github.com/starquake/quizgen/internal/clientapi"
	"github.com/starquake/quizgen/internal/logging"
)

// AddRoutes registers all routes on mux.
func AddRoutes(
	mux *http.ServeMux,
	logger *logging.Logger,
	deps *Deps,
) {
	mux.Handle("GET /healthz", health.HandleHealthz(logger.Slog(), deps.Store))

	mux.Handle("GET /admin", admin.HandleIndex(logger, deps.Manage))
	mux.Handle("GET /admin/questions", admin.HandleQuestionList(logger, deps.Manage))
	mux.Handle("GET /admin/questions/new", admin.HandleQuestionCreate(logger))
	mux.Handle("POST /admin/questions", admin.HandleQuestionSave(logger, deps.Manage))
	mux.Handle("POST /admin/questions/{index}/edit", admin.HandleQuestionEdit(logger, deps.Manage))
	mux.Handle("GET /admin/questions/{index}/delete", admin.HandleQuestionDeleteConfirm(logger, deps.Manage))
	mux.Handle("POST /admin/questions/{index}/delete", admin.HandleQuestionDelete(logger, deps.Manage))
	mux.Handle("/admin/", admin.HandleNotFound(logger))

	mux.Handle("GET /api/questions/count", clientapi.HandleQuestionCount(logger.Slog(), deps.Manage))
	mux.Handle("POST /api/sessions", clientapi.HandleSessionCreate(logger.Slog(), deps.Sessions))
	mux.Handle("GET /api/sessions/{sessionID}/question", clientapi.HandleSessionQuestion(logger.Slog(), deps.Sessions))
	mux.Handle("POST /api/sessions/{sessionID}/answer", clientapi.HandleSessionAnswer(logger.Slog(), deps.Sessions))
	mux.Handle("DELETE /api/sessions/{sessionID}", clientapi.HandleSessionEnd(logger.Slog(), deps.Sessions))

	mux.Handle("GET /client/", client.Handler(deps.Config, logger))
	mux.Handle("GET /{$}", http.RedirectHandler("/client/", http.StatusFound))
	mux.Handle("/", http.NotFoundHandler())
}
