package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/pkg/service"
)

// NewRouter mounts the administrative API. When adminAPIKey is empty
// the routes are unprotected, which is only sensible for local
// single-user deployments.
func NewRouter(svc *service.Service, adminAPIKey string, logger *zap.Logger) http.Handler {
	prune := NewPruneHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		if adminAPIKey != "" {
			r.Use(adminKeyMiddleware(adminAPIKey))
		}
		r.Post("/prune/", prune.PruneData)
	})

	return r
}

// adminKeyMiddleware requires the configured admin key as a bearer
// token.
func adminKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+key {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
