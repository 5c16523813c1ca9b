package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/validator-node/internal/server/httpserver/handler"
	"github.com/yndnr/validator-node/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Health reports network client liveness for /health.
	Health handler.HealthSource

	// Relay backs /metrics.
	Relay handler.MetricsExporter

	// NodeRegistry, when set, is exposed in full at /metrics/node.
	NodeRegistry *prometheus.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// GlobalRateLimit caps requests per second (0 = unlimited).
	GlobalRateLimit int
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 100,
	}
}

// NewRouter creates the HTTP router with all routes and middleware.
// Order: Recover -> RequestID -> RateLimit -> AccessLog -> Handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Health, cfg.Relay, log)

	mux := http.NewServeMux()
	mux.Handle("GET /health", h)
	mux.Handle("GET /metrics", h)
	if cfg.NodeRegistry != nil {
		mux.Handle("GET /metrics/node", metric.Handler(cfg.NodeRegistry))
	}

	middlewares := []Middleware{Recover(log), RequestID()}
	if cfg.GlobalRateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.GlobalRateLimit))
	}
	middlewares = append(middlewares, AccessLog(log))

	return Chain(mux, middlewares...)
}
