// Package health provides health check endpoints.
package health

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/quizgen/internal/httputil"
	"github.com/starquake/quizgen/internal/quiz"
)

// HandleHealthz returns a handler that reports whether the question store is reachable.
func HandleHealthz(logger *slog.Logger, store quiz.Store) http.HandlerFunc {
	type healthStatus struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		httpStatus := http.StatusOK
		health := healthStatus{
			Status: "ok",
			Checks: make(map[string]string),
		}

		if err := store.Ping(ctx); err != nil {
			health.Status = "degraded"
			health.Checks["store"] = fmt.Sprintf("unhealthy: %v", err)
			httpStatus = http.StatusServiceUnavailable
			logger.WarnContext(ctx, "health check failed", slog.Any("err", err))
		} else {
			health.Checks["store"] = "healthy"
		}

		if err := httputil.EncodeJSON(w, httpStatus, health); err != nil {
			logger.ErrorContext(ctx, "error encoding health status", slog.Any("err", err))
		}
	}
}
