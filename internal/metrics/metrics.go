package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	arrangementsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorefiler",
			Name:      "arrangements_processed_total",
			Help:      "Arrangements reaching a terminal state, by result (done, all_parts_processed, error)",
		},
		[]string{"result"},
	)

	partsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorefiler",
			Name:      "parts_processed_total",
			Help:      "Parts reaching a terminal state, by result (done, error)",
		},
		[]string{"result"},
	)

	extractReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorefiler",
			Name:      "extract_requests_total",
			Help:      "Metadata extraction requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	extractLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scorefiler",
			Name:      "extract_request_duration_seconds",
			Help:      "Duration of metadata extraction requests by provider and model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	storageReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorefiler",
			Name:      "storage_requests_total",
			Help:      "Storage backend requests by operation and result",
		},
		[]string{"op", "result"},
	)

	storageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scorefiler",
			Name:      "storage_request_duration_seconds",
			Help:      "Duration of storage backend requests by operation",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(arrangementsProcessed, partsProcessed, extractReqs, extractLatency, storageReqs, storageLatency)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncArrangement(result string) { arrangementsProcessed.WithLabelValues(result).Inc() }
func IncPart(result string)        { partsProcessed.WithLabelValues(result).Inc() }

func ObserveExtract(provider, model, result string, dur time.Duration) {
	extractReqs.WithLabelValues(provider, model, result).Inc()
	extractLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func ObserveStorage(op, result string, dur time.Duration) {
	storageReqs.WithLabelValues(op, result).Inc()
	storageLatency.WithLabelValues(op).Observe(dur.Seconds())
}
