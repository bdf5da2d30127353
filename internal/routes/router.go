package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"low-altitude/uavops/internal/api"
	"low-altitude/uavops/internal/config"
	"low-altitude/uavops/internal/logging"
	"low-altitude/uavops/internal/middleware"
)

func NewRouter(deps *api.Dependencies, cfg config.Config) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if cfg.AppEnv == "development" {
		r.Use(middleware.Logging)
	}

	// health check and scrape endpoint stay outside the rate limiter
	r.Get("/healthCheck", api.HealthCheckHandler(deps))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	RegisterAPIRoutes(r, deps, limiter)

	logging.Info("Router initialized", "env", cfg.AppEnv)
	return r
}
