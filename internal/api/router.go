package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/api/handler"
	"github.com/shelfcheck/item-audit/internal/api/middleware"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter assembles the HTTP surface: webhook intake, operational
// read endpoints, health probes, and the metrics scrape endpoint.
func NewRouter(
	webhook *handler.WebhookHandler,
	ops *handler.OpsHandler,
	health *handler.HealthHandler,
	registry *prometheus.Registry,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/webhooks/items", func(r chi.Router) {
		r.Get("/", webhook.Challenge)
		r.Post("/", webhook.Receive)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/staged/{check}", ops.ListStaged)
		r.Get("/runs", ops.ListRuns)
		r.Get("/runs/{id}", ops.GetRun)
		r.Post("/runs/trigger", ops.TriggerSweep)
	})

	return r
}
