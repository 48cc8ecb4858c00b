// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CyclesTotal      *prometheus.CounterVec // outcome=ok|error
	TransitionsTotal *prometheus.CounterVec // direction=live|offline
	MessagesSent     prometheus.Counter
	MessagesEdited   prometheus.Counter

	// Histograms (seconds)
	CycleDuration prometheus.Observer

	// Gauges
	LiveGauge prometheus.Gauge // 1=streamer live, 0=offline
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "notifier_cycles_total", Help: "Reconciliation cycles run, by outcome"}, []string{"outcome"})
		TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "notifier_transitions_total", Help: "Live/offline transitions applied, by direction"}, []string{"direction"})
		MessagesSent = promauto.NewCounter(prometheus.CounterOpts{Name: "notifier_messages_sent_total", Help: "New notification messages sent"})
		MessagesEdited = promauto.NewCounter(prometheus.CounterOpts{Name: "notifier_messages_edited_total", Help: "Notification messages edited in place"})
		CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "notifier_cycle_duration_seconds", Help: "Reconciliation cycle duration seconds", Buckets: prometheus.DefBuckets})
		LiveGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "notifier_streamer_live", Help: "Streamer currently tracked as live (1) or offline (0)"})
	})
}

// The helpers below are nil-guarded so engine code works in tests that never
// call Init.

// IncCycle records one finished cycle.
func IncCycle(ok bool) {
	if CyclesTotal == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	CyclesTotal.WithLabelValues(outcome).Inc()
}

// IncTransition records an applied live/offline transition.
func IncTransition(direction string) {
	if TransitionsTotal != nil {
		TransitionsTotal.WithLabelValues(direction).Inc()
	}
}

// IncMessageSent records a new notification message.
func IncMessageSent() {
	if MessagesSent != nil {
		MessagesSent.Inc()
	}
}

// IncMessageEdited records an in-place edit of the tracked message.
func IncMessageEdited() {
	if MessagesEdited != nil {
		MessagesEdited.Inc()
	}
}

// ObserveCycleDuration records how long a cycle took.
func ObserveCycleDuration(d time.Duration) {
	if CycleDuration != nil {
		CycleDuration.Observe(d.Seconds())
	}
}

// SetLive sets the liveness gauge.
func SetLive(live bool) {
	if LiveGauge == nil {
		return
	}
	if live {
		LiveGauge.Set(1)
	} else {
		LiveGauge.Set(0)
	}
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with the corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
