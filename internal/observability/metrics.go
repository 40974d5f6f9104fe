// Package observability provides Prometheus metrics for upstream calls and snapshot builds.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity_prism"

var (
	upstreamCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "Total number of upstream calls by upstream, method and outcome",
	}, []string{"upstream", "method", "outcome"})

	upstreamCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "Latency of upstream calls in seconds",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"upstream", "method"})

	snapshotsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "builds_total",
		Help:      "Total number of identity snapshots built by outcome",
	}, []string{"outcome"})

	assetListDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "asset_list_degraded_total",
		Help:      "Snapshots built with an empty asset list after every credential failed",
	})

	priceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "price",
		Name:      "stale_served_total",
		Help:      "Price lookups answered from a stale cache entry after a fetch failure",
	}, []string{"kind"})
)

// ObserveUpstream records one upstream call started at start
func ObserveUpstream(upstream, method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCallsTotal.WithLabelValues(upstream, method, outcome).Inc()
	upstreamCallLatency.WithLabelValues(upstream, method).Observe(time.Since(start).Seconds())
}

// SnapshotBuilt records the outcome of a snapshot build
func SnapshotBuilt(err error) {
	if err != nil {
		snapshotsBuilt.WithLabelValues("error").Inc()
		return
	}
	snapshotsBuilt.WithLabelValues("ok").Inc()
}

// AssetListDegraded records a snapshot built without the asset list
func AssetListDegraded() {
	assetListDegraded.Inc()
}

// StalePriceServed records a price served from a stale entry
func StalePriceServed(kind string) {
	priceFallbacks.WithLabelValues(kind).Inc()
}
