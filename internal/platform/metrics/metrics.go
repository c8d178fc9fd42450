// Package metrics exposes study activity as Prometheus metrics.
//
// StudyMetrics subscribes to session events, so the study service never
// imports Prometheus directly.
package metrics

import (
	"context"

	"github.com/phrazzld/scry-study/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scry_study"

// StudyMetrics records study session activity.
type StudyMetrics struct {
	sessionsStarted prometheus.Counter
	sessionsEnded   prometheus.Counter
	activeSessions  prometheus.Gauge
	reviewsTotal    *prometheus.CounterVec
	skipsTotal      prometheus.Counter
	responseTime    prometheus.Histogram
	sessionReviews  prometheus.Histogram
}

var _ events.EventHandler = (*StudyMetrics)(nil)

// New registers the study collectors on reg.
func New(reg prometheus.Registerer) *StudyMetrics {
	factory := promauto.With(reg)

	return &StudyMetrics{
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total study sessions started",
		}),
		sessionsEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total study sessions ended",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Study sessions currently in progress",
		}),
		reviewsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Total card reviews by rating",
		}, []string{"rating"}),
		skipsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skips_total",
			Help:      "Total cards skipped during sessions",
		}),
		responseTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_response_seconds",
			Help:      "Time taken to answer a card",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		sessionReviews: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_reviewed_cards",
			Help:      "Cards reviewed or skipped per ended session",
			Buckets:   []float64{0, 5, 10, 20, 50, 100, 200},
		}),
	}
}

// HandleEvent implements events.EventHandler.
func (m *StudyMetrics) HandleEvent(_ context.Context, event *events.SessionEvent) error {
	switch event.Type {
	case events.TypeSessionStarted:
		m.sessionsStarted.Inc()
		m.activeSessions.Inc()
	case events.TypeSessionEnded:
		m.sessionsEnded.Inc()
		m.activeSessions.Dec()
		m.sessionReviews.Observe(float64(len(event.Session.ReviewedCards)))
	case events.TypeCardReviewed:
		m.reviewsTotal.WithLabelValues(string(event.Rating)).Inc()
		m.responseTime.Observe(event.ResponseTime.Seconds())
	case events.TypeCardSkipped:
		m.skipsTotal.Inc()
	}
	return nil
}
