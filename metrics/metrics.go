// Package metrics exposes Prometheus collectors for the assistant.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets covers inference latencies from 100ms to two minutes.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// InvocationsTotal counts handled invocations by status code and outcome.
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshassist_invocations_total",
			Help: "Handled invocations",
		},
		[]string{"status", "outcome"},
	)

	// InferenceRequestsTotal counts outbound Converse calls by model and result kind.
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshassist_inference_requests_total",
			Help: "Inference requests",
		},
		[]string{"model", "result"},
	)

	// InferenceLatency records Converse call latency in seconds.
	InferenceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meshassist_inference_latency_seconds",
			Help:    "Inference latency",
			Buckets: LLMBuckets,
		},
		[]string{"model"},
	)

	// InferenceTokensTotal counts tokens reported by the service, by direction.
	InferenceTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshassist_inference_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// Queued is the number of invocations waiting for a concurrency slot.
	Queued = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meshassist_queued",
			Help: "Invocations waiting for a slot",
		},
		[]string{"model"},
	)

	// Processing is the number of in-flight inference calls.
	Processing = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meshassist_processing",
			Help: "In-flight inference calls",
		},
		[]string{"model"},
	)
)

// Registry holds every collector above.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		InvocationsTotal,
		InferenceRequestsTotal,
		InferenceLatency,
		InferenceTokensTotal,
		Queued,
		Processing,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
