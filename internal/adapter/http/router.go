package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/chequebook/internal/adapter/http/handler"
	"github.com/iho/chequebook/internal/adapter/http/middleware"
	"github.com/iho/chequebook/internal/domain"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ChequeHandler *handler.ChequeHandler
	ViewHandler   *handler.ViewHandler
	HealthHandler *handler.HealthHandler
	Logger        zerolog.Logger

	// Optional.
	Idempotency *middleware.IdempotencyMiddleware
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		chequeRoutes(r, cfg, domain.KindOutgoing, "complete")
		chequeRoutes(r, cfg, domain.KindIncoming, "deposit")

		r.Get("/summary", cfg.ViewHandler.Summary)
		r.Get("/due", cfg.ViewHandler.Due)
		r.Get("/reports/summary.pdf", cfg.ViewHandler.SummaryPDF)
	})

	return r
}

func chequeRoutes(r chi.Router, cfg RouterConfig, kind domain.Kind, action string) {
	r.Route("/"+string(kind), func(r chi.Router) {
		r.Get("/", cfg.ChequeHandler.List(kind))
		r.Post("/", cfg.ChequeHandler.Create(kind))
		r.Get("/active", cfg.ViewHandler.Active(kind))
		r.Get("/history", cfg.ViewHandler.History(kind))
		r.Post("/{id}/"+action, cfg.ChequeHandler.Settle(kind))
		r.Post("/{id}/delete", cfg.ChequeHandler.Delete(kind))
	})
}
