package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/echoogrow/dashboard/metrics"
	"github.com/echoogrow/dashboard/narrator"
	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

var (
	// RenderTotal counts dashboard renders by outcome.
	RenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "echoogrow",
			Name:      "render_total",
			Help:      "Total number of dashboard renders",
		},
		[]string{"status"},
	)

	// RenderDuration measures uncached render duration.
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "echoogrow",
			Name:      "render_duration_seconds",
			Help:      "Duration of dashboard renders in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// CacheHits counts renders served from the cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "echoogrow",
			Name:      "render_cache_hits_total",
			Help:      "Total number of renders served from cache",
		},
	)
)

// RecordRender records one uncached render.
func RecordRender(err error, seconds float64) {
	RenderTotal.WithLabelValues(statusOf(err)).Inc()
	RenderDuration.Observe(seconds)
}

func statusOf(err error) string {
	var (
		le  *records.LoadError
		pe  *records.ParseError
		ee  *metrics.EmptyDatasetError
		ie  *narrator.InsufficientTopicsError
		ute *topics.UnknownTopicError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &le):
		return "load_error"
	case errors.As(err, &pe):
		return "parse_error"
	case errors.As(err, &ee):
		return "empty_dataset"
	case errors.As(err, &ie):
		return "insufficient_topics"
	case errors.As(err, &ute):
		return "unknown_topic"
	default:
		return "error"
	}
}
