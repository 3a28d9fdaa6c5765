package handler

import (
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// accessLog receives nginx-format access lines.
var accessLog io.Writer = os.Stdout

// RateLimit returns middleware allowing requestsPerMinute requests per client
// IP, with bursts up to the same amount. Rejected requests get 429.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(
		float64(requestsPerMinute)/60,
		&limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour},
	)
	lmt.SetBurst(requestsPerMinute)
	lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	lmt.SetMessage("rate limit exceeded")
	lmt.SetOnLimitReached(func(_ http.ResponseWriter, r *http.Request) {
		slog.Warn("rate limit exceeded", "method", r.Method, "path", r.URL.Path)
	})
	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}

// RequireWebhookAuth rejects requests whose Authorization header is not
// "Bearer <secret>". CORS preflight requests pass through unauthenticated.
func RequireWebhookAuth(secret string, next http.Handler) http.Handler {
	want := []byte("Bearer " + secret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		got := []byte(strings.TrimSpace(r.Header.Get("Authorization")))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			slog.Warn("webhook: unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Bearer realm="webhook"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LogRequests returns middleware that logs each HTTP request and tags it with
// a request ID (taken from X-Request-ID or generated).
// format selects the output style:
//   - "simple" (or ""): structured slog line with method, path, status, bytes, duration
//   - "nginx": nginx combined log format followed by the request ID
func LogRequests(format string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		start := time.Now()
		m := httpsnoop.CaptureMetrics(next, w, r)

		if format == "nginx" {
			orDash := func(s string) string {
				if s == "" {
					return "-"
				}
				return s
			}
			if _, err := fmt.Fprintf(accessLog, "%s - - [%s] \"%s %s %s\" %d %d \"%s\" \"%s\" \"%s\" %s\n",
				r.RemoteAddr,
				start.Format("02/Jan/2006:15:04:05 -0700"),
				r.Method,
				r.RequestURI,
				r.Proto,
				m.Code,
				m.Written,
				orDash(r.Referer()),
				orDash(r.UserAgent()),
				orDash(r.Header.Get("X-Forwarded-For")),
				reqID,
			); err != nil {
				slog.Error("failed to write access log", "error", err)
			}
		} else {
			slog.Info("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.RequestURI,
				"status", m.Code,
				"bytes", m.Written,
				"duration", m.Duration,
			)
		}
	})
}
