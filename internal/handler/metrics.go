package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swatto/hooktomattermost/internal/notify"
)

const namespace = "hooktomattermost"

// Metrics holds Prometheus collectors for the service. Each Handler owns its
// registry so tests and multiple handlers never collide. Safe for concurrent
// use.
type Metrics struct {
	registry      *prometheus.Registry
	received      *prometheus.CounterVec
	sent          *prometheus.CounterVec
	failed        *prometheus.CounterVec
	relayDuration *prometheus.HistogramVec
}

// NewMetrics returns a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Total number of inbound webhook invocations.",
		}, []string{"source"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total notifications delivered to Mattermost.",
		}, []string{"source", "priority"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_failures_total",
			Help:      "Total aborted invocations by reason (validation, configuration, relay, internal).",
		}, []string{"source", "reason"}),
		relayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_duration_seconds",
			Help:      "Duration of the Mattermost webhook POST.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
	}
	m.registry.MustRegister(m.received, m.sent, m.failed, m.relayDuration)
	return m
}

// IncReceived counts one inbound invocation.
func (m *Metrics) IncReceived(source notify.Source) {
	m.received.WithLabelValues(string(source)).Inc()
}

// IncSent counts one delivered notification.
func (m *Metrics) IncSent(source notify.Source, priority notify.Priority) {
	m.sent.WithLabelValues(string(source), string(priority)).Inc()
}

// IncFailed counts one aborted invocation.
func (m *Metrics) IncFailed(source notify.Source, reason string) {
	m.failed.WithLabelValues(string(source), reason).Inc()
}

// ObserveRelay records the duration of one relay call.
func (m *Metrics) ObserveRelay(source notify.Source, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.relayDuration.WithLabelValues(string(source), outcome).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
