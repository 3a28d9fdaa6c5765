package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/swatto/hooktomattermost/internal/mattermost"
	"github.com/swatto/hooktomattermost/internal/notify"
	"github.com/swatto/hooktomattermost/internal/telephony"
)

// maxBodySize is the maximum allowed request body size (5 MB).
// Datto block payloads with long trigger details stay well below it.
const maxBodySize = 5 << 20

// Handler handles HTTP requests for the hooktomattermost service
type Handler struct {
	Config    *Config
	Relay     mattermost.Relay
	StartTime time.Time
	Version   string

	normalizers map[notify.Source]Normalizer
	metrics     *Metrics
	now         func() time.Time
}

// New creates a new Handler with the given configuration. The relay is nil
// when no webhook URL is configured.
func New(cfg *Config, version string) *Handler {
	var relay mattermost.Relay
	if cfg.WebhookURL != "" {
		relay = mattermost.NewClient(cfg.WebhookURL, cfg.RelayTimeout)
	}
	return NewWithRelay(cfg, relay, version)
}

// NewWithRelay creates a new Handler with a custom Relay (useful for testing)
func NewWithRelay(cfg *Config, relay mattermost.Relay, version string) *Handler {
	return &Handler{
		Config:    cfg,
		Relay:     relay,
		StartTime: time.Now(),
		Version:   version,
		normalizers: map[notify.Source]Normalizer{
			notify.SourceDatto:     AlertNormalizer,
			notify.SourceOpenPhone: telephony.Normalizer{InboxURL: cfg.InboxURL},
		},
		metrics: NewMetrics(),
		now:     time.Now,
	}
}

// RegisterRoutes registers all HTTP routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Ping)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())

	routes := map[string]notify.Source{
		"/webhook/datto":     notify.SourceDatto,
		"/webhook/openphone": notify.SourceOpenPhone,
		"/api/index":         notify.SourceDatto,
		"/api/openphone":     notify.SourceOpenPhone,
	}
	var limiter func(http.Handler) http.Handler
	if h.Config.RateLimit > 0 {
		limiter = RateLimit(h.Config.RateLimit)
	}
	for path, source := range routes {
		var hook http.Handler = h.Webhook(source)
		if limiter != nil {
			hook = limiter(hook)
		}
		if h.Config.WebhookSecret != "" {
			hook = RequireWebhookAuth(h.Config.WebhookSecret, hook)
		}
		mux.Handle(path, hook)
	}
}

// Ping handles the ping endpoint
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if _, err := io.WriteString(w, "ping"); err != nil {
		slog.Error("ping: failed to write response", "error", err)
	}
}

// Health handles the health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime).Round(time.Second)
	response := HealthResponse{
		Status:     "ok",
		Version:    h.Version,
		Uptime:     uptime.String(),
		Configured: h.Relay != nil || h.Config.DryRun,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode JSON response", "error", err)
	}
}
