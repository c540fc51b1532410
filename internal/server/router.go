package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legal-eagles/govwatch/internal/api"
	"github.com/legal-eagles/govwatch/internal/api/handlers"
	"github.com/legal-eagles/govwatch/internal/api/middleware"
)

type RouterConfig struct {
	MonitorHandler *handlers.MonitorHandler
	SearchHandler  *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/monitor", func(r chi.Router) {
		r.Post("/run", cfg.MonitorHandler.Run)
		r.Post("/check-url", cfg.MonitorHandler.CheckURL)
		r.Get("/status", cfg.MonitorHandler.Status)
		r.Get("/changes", cfg.MonitorHandler.Changes)
		r.Post("/discover", cfg.MonitorHandler.Discover)
	})

	r.Post("/search", cfg.SearchHandler.Search)

	return r
}
