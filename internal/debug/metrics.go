package debug

import (
	"context"
	"net/http"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the current user fetches outcomes and durations.
type Metrics struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// ObserveLoad wraps load so that each fetch is accounted.
func (m *Metrics) ObserveLoad(load shell.LoadFunc) shell.LoadFunc {
	return func(ctx context.Context) (*account.User, error) {
		start := time.Now()

		user, err := load(ctx)

		m.duration.Observe(time.Since(start).Seconds())
		m.outcomes.WithLabelValues(shell.NewFetchResult(user, err).Outcome.String()).Inc()

		return user, err
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func NewMetrics(registry *shell.Registry) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breathe",
			Name:      "user_fetch_total",
			Help:      "Current user fetches, by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "breathe",
			Name:      "user_fetch_duration_seconds",
			Help:      "Current user fetches duration",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.outcomes,
		m.duration,
		collectors.NewGoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "breathe",
			Name:      "shells",
			Help:      "Mounted visitor shells",
		}, func() float64 {
			return float64(registry.Len())
		}),
	)

	return m
}
