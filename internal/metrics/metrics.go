// Package metrics exposes Prometheus counters for sessions.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chaoskey",
			Subsystem: "session",
			Name:      "total",
			Help:      "Finished sessions by role and outcome.",
		},
		[]string{"role", "outcome"},
	)
	syncTicks = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chaoskey",
			Subsystem: "sync",
			Name:      "ticks",
			Help:      "Coupled ticks needed to reach synchronization.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		},
		[]string{"role"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chaoskey",
			Subsystem: "cipher",
			Name:      "messages_total",
			Help:      "Messages enciphered or deciphered.",
		},
		[]string{"role"},
	)
	messageBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chaoskey",
			Subsystem: "cipher",
			Name:      "bytes_total",
			Help:      "Plaintext bytes enciphered or deciphered.",
		},
		[]string{"role"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(sessions, syncTicks, messages, messageBytes)
	})
}

// RecordSession counts a finished session. outcome is "completed" or the
// error kind that ended it.
func RecordSession(role, outcome string) {
	RegisterMetrics()
	sessions.WithLabelValues(role, outcome).Inc()
}

func RecordSync(role string, ticks int) {
	RegisterMetrics()
	syncTicks.WithLabelValues(role).Observe(float64(ticks))
}

func RecordMessage(role string, n int) {
	RegisterMetrics()
	messages.WithLabelValues(role).Inc()
	messageBytes.WithLabelValues(role).Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
