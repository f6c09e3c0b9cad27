package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/vikor/internal/config"
	"github.com/MikeSquared-Agency/vikor/internal/ranker"
)

func NewRouter(svc *ranker.Service, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Limits.RateLimitPerMinute))

	rank := NewRankHandler(svc, cfg.Limits, logger)
	admin := NewAdminHandler(svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rank", rank.Rank)
		r.Post("/rank/batch", rank.Batch)
		r.Post("/rank/upload", rank.Upload)
		r.Post("/rank/export", rank.Export)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
