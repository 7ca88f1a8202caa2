package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal       *prometheus.CounterVec
	refreshDuration    prometheus.Histogram
	parametersCached   *prometheus.GaugeVec
	prefixFailureTotal *prometheus.CounterVec
	updateTotal        *prometheus.CounterVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// InitMetrics registers the cache metrics with the default Prometheus
// registry. Recording before InitMetrics is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		refreshTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envexplorer_cache_refresh_total",
				Help: "Total number of cache refreshes by outcome",
			},
			[]string{"status"},
		)

		refreshDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "envexplorer_cache_refresh_duration_seconds",
				Help:    "Duration of refreshes that replaced the snapshot, in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		parametersCached = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "envexplorer_cache_parameters",
				Help: "Number of parameters in the current snapshot",
			},
			[]string{"visibility"},
		)

		prefixFailureTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envexplorer_cache_prefix_fetch_failures_total",
				Help: "Prefix listings that failed and contributed nothing to a refresh",
			},
			[]string{"prefix"},
		)

		updateTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envexplorer_cache_update_total",
				Help: "Total number of single parameter writes by outcome",
			},
			[]string{"status"},
		)

		metricsRegistered.Store(true)
	})
}

func recordRefresh(status string, started time.Time) {
	if !metricsRegistered.Load() {
		return
	}
	refreshTotal.WithLabelValues(status).Inc()
	// Only refreshes that replaced the snapshot are timed
	if status == "success" || status == "partial" {
		refreshDuration.Observe(time.Since(started).Seconds())
	}
}

func recordSnapshot(total, hidden int) {
	if !metricsRegistered.Load() {
		return
	}
	parametersCached.WithLabelValues("visible").Set(float64(total - hidden))
	parametersCached.WithLabelValues("hidden").Set(float64(hidden))
}

func recordPrefixFailure(prefix string) {
	if !metricsRegistered.Load() {
		return
	}
	prefixFailureTotal.WithLabelValues(prefix).Inc()
}

func recordUpdate(status string) {
	if !metricsRegistered.Load() {
		return
	}
	updateTotal.WithLabelValues(status).Inc()
}

// RefreshCounter returns the refresh counter for tests.
// Returns nil if metrics have not been initialized.
func RefreshCounter() *prometheus.CounterVec {
	return refreshTotal
}

// RefreshDuration returns the refresh duration histogram for tests.
// Returns nil if metrics have not been initialized.
func RefreshDuration() prometheus.Histogram {
	return refreshDuration
}

// UpdateCounter returns the update counter for tests.
// Returns nil if metrics have not been initialized.
func UpdateCounter() *prometheus.CounterVec {
	return updateTotal
}
