// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for assistant turns.
const (
	OutcomeModel    = "model"
	OutcomeFallback = "fallback"
)

type Metrics struct {
	AssistantTurns    *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	SuggestedSlugs    prometheus.Histogram
	LikeToggles       *prometheus.CounterVec
	FeedComposed      *prometheus.CounterVec
	VideoProbes       *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPRequestTiming *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AssistantTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beely_assistant_turns_total",
			Help: "Chat turns answered, by outcome (model or fallback).",
		}, []string{"outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beely_provider_request_seconds",
			Help:    "Latency of language model calls.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"provider", "result"}),
		SuggestedSlugs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beely_suggested_categories",
			Help:    "Number of categories suggested per assistant turn.",
			Buckets: []float64{0, 1, 2, 3},
		}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beely_like_toggles_total",
			Help: "Like toggles, by resulting state.",
		}, []string{"state"}),
		FeedComposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beely_feeds_composed_total",
			Help: "Feeds composed, by mode.",
		}, []string{"mode"}),
		VideoProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beely_video_probes_total",
			Help: "Video URL probes, by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beely_http_requests_total",
			Help: "HTTP requests, by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beely_http_request_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AssistantTurns,
			m.ProviderLatency,
			m.SuggestedSlugs,
			m.LikeToggles,
			m.FeedComposed,
			m.VideoProbes,
			m.HTTPRequests,
			m.HTTPRequestTiming,
		)
	}
	return m
}

// Nop returns unregistered collectors, handy for tests and tools.
func Nop() *Metrics {
	return New(nil)
}
