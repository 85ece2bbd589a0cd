// Package router assembles the HTTP routes of the webhook server.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/channels/whatsapp"
	httpmiddleware "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/http/middleware"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/observability/metrics"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// RootMessage is the plain-text banner served at GET /.
const RootMessage = "TurboBot webhook running (no spam, only on request)"

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Metrics        *metrics.BotMetrics
	Webhook        *whatsapp.WebhookHandler
	TokenValid     func() bool
	MetricsHandler http.Handler
	// RateLimiter guards POST /webhook when set.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Metrics))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(RootMessage))
	})
	r.Get("/health", healthHandler(cfg.TokenValid))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Webhook != nil {
		r.Route("/webhook", func(wh chi.Router) {
			wh.Get("/", cfg.Webhook.HandleVerification)
			post := wh.With()
			if cfg.RateLimiter != nil {
				post = wh.With(cfg.RateLimiter.Middleware)
			}
			post.Post("/", cfg.Webhook.HandleInbound)
		})
	}
	return r
}

type healthResponse struct {
	Status             string `json:"status"`
	WhatsAppTokenValid bool   `json:"whatsapp_token_valid"`
}

func healthHandler(tokenValid func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{Status: "ok"}
		if tokenValid != nil {
			resp.WhatsAppTokenValid = tokenValid()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
