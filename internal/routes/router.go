package routes

import (
	"context"
	"net/http"
	"time"

	"soultrack/followup/internal/api"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the HTTP handler. ctx bounds the background cleanup
// of the public rate limiter.
func RegisterRoutes(ctx context.Context, deps *api.Dependencies, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	var cachePinger api.Pinger
	if rc, ok := deps.Cache.(*common.RedisCacheService); ok {
		cachePinger = rc
	}
	r.Get("/healthCheck", api.HealthCheckHandler(deps.SqlDB, cachePinger, upSince))

	handlers := api.NewHandlers(deps)
	jobsHandler := api.NewJobsHandler(deps)

	limiter := middleware.NewIPRateLimiter(deps.Config.PublicIntakeRPS, deps.Config.PublicIntakeBurst)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup(30 * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	RegisterAPIRoutes(r, deps, handlers, jobsHandler, limiter)

	return r
}
