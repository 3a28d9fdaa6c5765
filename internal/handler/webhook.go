package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/swatto/hooktomattermost/internal/alert"
	"github.com/swatto/hooktomattermost/internal/mattermost"
	"github.com/swatto/hooktomattermost/internal/notify"
)

// ErrNotConfigured is returned when a webhook arrives but no Mattermost URL
// is configured. The relay is never invoked in that case.
var ErrNotConfigured = errors.New("MATTERMOST_WEBHOOK_URL environment variable not configured")

// Normalizer turns a raw webhook body into a notify.Event.
type Normalizer interface {
	Normalize(payload []byte, now time.Time) (notify.Event, error)
}

// NormalizerFunc adapts a plain function to Normalizer.
type NormalizerFunc func(payload []byte, now time.Time) (notify.Event, error)

// Normalize calls f.
func (f NormalizerFunc) Normalize(payload []byte, now time.Time) (notify.Event, error) {
	return f(payload, now)
}

// AlertNormalizer handles Datto RMM block payloads.
var AlertNormalizer Normalizer = NormalizerFunc(alert.Normalize)

// Result is what one webhook invocation produced.
type Result struct {
	Event    notify.Event
	Document mattermost.Document
}

// Render normalizes payload and builds its document without relaying it.
func (h *Handler) Render(source notify.Source, payload []byte) (*Result, error) {
	n, ok := h.normalizers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	if !json.Valid(payload) {
		return nil, notify.Invalid("Invalid JSON payload")
	}
	ev, err := n.Normalize(payload, h.now())
	if err != nil {
		return nil, err
	}
	return &Result{Event: ev, Document: mattermost.Build(ev)}, nil
}

// Process renders payload and relays the document exactly once. In dry-run
// mode the document is logged instead. The returned Result is non-nil
// whenever rendering succeeded, even if delivery failed.
func (h *Handler) Process(ctx context.Context, source notify.Source, payload []byte) (*Result, error) {
	res, err := h.Render(source, payload)
	if err != nil {
		return nil, err
	}

	if h.Config.DryRun {
		doc, _ := json.Marshal(res.Document)
		slog.Info("dry-run: would post to Mattermost",
			"source", source,
			"title", res.Event.Title,
			"priority", res.Event.Priority,
			"document", string(doc),
		)
		return res, nil
	}
	if h.Relay == nil {
		return res, ErrNotConfigured
	}

	start := time.Now()
	err = h.Relay.Send(ctx, &res.Document)
	h.metrics.ObserveRelay(source, time.Since(start), err)
	if err != nil {
		return res, err
	}
	slog.Info("Notification sent",
		"source", source,
		"title", res.Event.Title,
		"priority", res.Event.Priority,
	)
	return res, nil
}

// Webhook returns the HTTP handler for one source integration.
func (h *Handler) Webhook(source notify.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w.Header())
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed - use POST"})
			return
		}

		defer func() {
			if err := r.Body.Close(); err != nil {
				slog.Error("webhook: failed to close request body", "error", err)
			}
		}()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			h.fail(w, source, fmt.Errorf("failed to read request body: %w", err))
			return
		}

		code, resp := h.Handle(r.Context(), source, body)
		writeJSON(w, code, resp)
	}
}

// Handle runs one invocation and returns the status code and JSON body to
// answer with. It is shared by the HTTP and Lambda entry points.
func (h *Handler) Handle(ctx context.Context, source notify.Source, body []byte) (int, any) {
	h.metrics.IncReceived(source)
	if h.Config.LogPayloads {
		slog.Debug("webhook: payload received", "source", source, "body", string(body))
	}

	res, err := h.Process(ctx, source, body)
	if err != nil {
		return h.failure(source, err)
	}
	if !h.Config.DryRun {
		h.metrics.IncSent(source, res.Event.Priority)
	}
	return http.StatusOK, successResponse(source, res, h.Config.DryRun)
}

func (h *Handler) fail(w http.ResponseWriter, source notify.Source, err error) {
	code, resp := h.failure(source, err)
	writeJSON(w, code, resp)
}

// failure logs err and maps every aborting error kind to a 500.
func (h *Handler) failure(source notify.Source, err error) (int, ErrorResponse) {
	reason := failureReason(err)
	h.metrics.IncFailed(source, reason)
	slog.Error("webhook: proxy failed", "source", source, "reason", reason, "error", err)
	return http.StatusInternalServerError, ErrorResponse{
		Error:     "Webhook proxy failed",
		Message:   err.Error(),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
}

func failureReason(err error) string {
	var validationErr *notify.ValidationError
	var relayErr *mattermost.RelayError
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.Is(err, ErrNotConfigured):
		return "configuration"
	case errors.As(err, &relayErr):
		return "relay"
	default:
		return "internal"
	}
}

func successResponse(source notify.Source, res *Result, dryRun bool) SuccessResponse {
	ev := res.Event
	resp := SuccessResponse{Success: true, DryRun: dryRun}
	switch source {
	case notify.SourceDatto:
		resp.Message = "Alert successfully forwarded to Mattermost"
		resp.Alert = &AlertSummary{
			Device:   ev.DeviceOrContact,
			Site:     ev.SiteOrLocation,
			Type:     ev.AlertType,
			Priority: string(ev.Priority),
		}
	default:
		resp.Message = "OpenPhone event successfully forwarded to Mattermost"
		resp.Event = &EventSummary{
			Type:      ev.Kind,
			Direction: string(notify.ParseDirection(string(ev.Direction))),
			From:      ev.From,
			To:        ev.To,
			Status:    ev.Status,
		}
	}
	if dryRun {
		resp.Message = "Dry run: notification rendered but not sent"
	}
	return resp
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("webhook: failed to encode JSON response", "error", err)
	}
}
