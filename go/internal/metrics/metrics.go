// Package metrics collects runtime counters for timer sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector defines the interface for collecting timer service metrics
type MetricsCollector interface {
	SessionOpened()
	SessionClosed()
	CommandHandled(command string, success bool)
	TickRendered()
	BossFightReached()
	FrameDropped()
	EventPublished(eventType string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) SessionOpened()                              {}
func (n *NoOpMetricsCollector) SessionClosed()                              {}
func (n *NoOpMetricsCollector) CommandHandled(command string, success bool) {}
func (n *NoOpMetricsCollector) TickRendered()                               {}
func (n *NoOpMetricsCollector) BossFightReached()                           {}
func (n *NoOpMetricsCollector) FrameDropped()                               {}
func (n *NoOpMetricsCollector) EventPublished(string, bool, time.Duration)  {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	activeSessions  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	commands        *prometheus.CounterVec
	ticks           prometheus.Counter
	bossFights      prometheus.Counter
	droppedFrames   prometheus.Counter
	eventsPublished *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nightreign_timer_active_sessions",
			Help: "Number of connected timer sessions",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "nightreign_timer_sessions_total",
			Help: "Total number of timer sessions opened",
		}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nightreign_timer_commands_total",
			Help: "Timer commands received from clients",
		}, []string{"command", "status"}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "nightreign_timer_ticks_total",
			Help: "Display updates pushed to sessions",
		}),
		bossFights: factory.NewCounter(prometheus.CounterOpts{
			Name: "nightreign_timer_boss_fights_total",
			Help: "Timers that ran through every phase",
		}),
		droppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "nightreign_timer_dropped_frames_total",
			Help: "Display frames dropped because a client was too slow",
		}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nightreign_timer_events_published_total",
			Help: "Timer lifecycle events handed to the publisher",
		}, []string{"event_type", "status"}),
		publishDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nightreign_timer_event_publish_duration_seconds",
			Help:    "Time spent publishing a lifecycle event",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"event_type"}),
	}
}

func (m *PrometheusMetrics) SessionOpened() {
	m.activeSessions.Inc()
	m.sessionsTotal.Inc()
}

func (m *PrometheusMetrics) SessionClosed() {
	m.activeSessions.Dec()
}

func (m *PrometheusMetrics) CommandHandled(command string, success bool) {
	m.commands.WithLabelValues(command, status(success)).Inc()
}

func (m *PrometheusMetrics) TickRendered() {
	m.ticks.Inc()
}

func (m *PrometheusMetrics) BossFightReached() {
	m.bossFights.Inc()
}

func (m *PrometheusMetrics) FrameDropped() {
	m.droppedFrames.Inc()
}

func (m *PrometheusMetrics) EventPublished(eventType string, success bool, duration time.Duration) {
	m.eventsPublished.WithLabelValues(eventType, status(success)).Inc()
	m.publishDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
