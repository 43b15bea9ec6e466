package providers

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API call names used as the "call" label.
const (
	CallListSecrets          = "ListSecrets"
	CallListSecretVersions   = "ListSecretVersions"
	CallAccessSecretVersion  = "AccessSecretVersion"
	CallGetSecret            = "GetSecret"
	CallCreateSecret         = "CreateSecret"
	CallAddSecretVersion     = "AddSecretVersion"
	CallDeleteSecret         = "DeleteSecret"
	CallDestroySecretVersion = "DestroySecretVersion"
	CallTestConnection       = "TestConnection"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec

	metricsRegistry = prometheus.NewRegistry()
	metricsOnce     sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		factory := promauto.With(metricsRegistry)

		apiCallsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudsec_provider_api_calls_total",
				Help: "Total number of secret backend API calls",
			},
			[]string{"provider", "call", "status"},
		)

		apiCallDuration = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudsec_provider_api_call_duration_seconds",
				Help:    "Latency of secret backend API calls in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"provider", "call"},
		)
	})
}

// ObserveAPICall records one backend call that started at start.
func ObserveAPICall(providerName, call string, start time.Time, err error) {
	initMetrics()
	apiCallsTotal.WithLabelValues(providerName, call, deriveStatus(err)).Inc()
	apiCallDuration.WithLabelValues(providerName, call).Observe(time.Since(start).Seconds())
}

// MetricsGatherer exposes the provider metrics registry.
func MetricsGatherer() prometheus.Gatherer {
	initMetrics()
	return metricsRegistry
}

// WriteMetrics writes the provider metrics to path in the Prometheus text
// format, replacing the file atomically.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, MetricsGatherer())
}

func deriveStatus(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
