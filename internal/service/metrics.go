package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	baseCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest_calendar",
		Subsystem: "base_cache",
		Name:      "requests_total",
		Help:      "Total number of calendar base lookups broken down by hit/miss.",
	}, []string{"result"})

	baseCacheInvalidate = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest_calendar",
		Subsystem: "base_cache",
		Name:      "invalidate_total",
		Help:      "Total number of calendar base rebuilds broken down by reason.",
	}, []string{"reason"})

	datasetEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quest_calendar",
		Subsystem: "dataset",
		Name:      "events",
		Help:      "Number of events in the currently cached calendar base.",
	})
)

func recordCacheRequest(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	baseCacheRequests.WithLabelValues(result).Inc()
}

func recordCacheInvalidate(reason string) {
	if reason == "" {
		reason = "manual"
	}
	baseCacheInvalidate.WithLabelValues(reason).Inc()
}
