// Package metrics exposes Prometheus metrics for a sipstreak session.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/sipstreak/internal/constants"
)

// Manager owns the sipstreak collectors. It implements tracker.Observer.
type Manager struct {
	namespace   string
	subsystem   string
	buckets     []float64
	constLabels prometheus.Labels
	registry    *prometheus.Registry

	sipsRecorded   prometheus.Counter
	mlRecorded     prometheus.Counter
	undos          prometheus.Counter
	mlUndone       prometheus.Counter
	streakAwards   prometheus.Counter
	eventsPruned   prometheus.Counter
	reminderTicks  prometheus.Counter
	notifyFailures prometheus.Counter

	todayMl     prometheus.Gauge
	ratio       prometheus.Gauge
	streakCount prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager builds a Manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: constants.AppName,
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.sipsRecorded = m.counter("sips_recorded_total", "Number of sips logged")
	m.mlRecorded = m.counter("ml_recorded_total", "Milliliters logged")
	m.undos = m.counter("undos_total", "Number of sips removed by undo")
	m.mlUndone = m.counter("ml_undone_total", "Milliliters removed by undo")
	m.streakAwards = m.counter("streak_awards_total", "Number of streak points awarded")
	m.eventsPruned = m.counter("events_pruned_total", "Events dropped by the retention window")
	m.reminderTicks = m.counter("reminder_ticks_total", "Reminder timer firings")
	m.notifyFailures = m.counter("notify_failures_total", "Reminders that could not be delivered")

	m.todayMl = m.gauge("today_ml", "Milliliters logged today")
	m.ratio = m.gauge("goal_ratio", "Progress toward today's goal, 0 to 1")
	m.streakCount = m.gauge("streak", "Current streak count")

	auto := promauto.With(m.registry)
	labels := []string{"route", "method", "status_code"}
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP API requests by route, method and status",
		ConstLabels: m.constLabels,
	}, labels)
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP API request latency",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) SipRecorded(volumeMl int) {
	m.sipsRecorded.Inc()
	m.mlRecorded.Add(float64(volumeMl))
}

func (m *Manager) SipUndone(volumeMl int) {
	m.undos.Inc()
	m.mlUndone.Add(float64(volumeMl))
}

func (m *Manager) StreakAwarded(count int) {
	m.streakAwards.Inc()
	m.streakCount.Set(float64(count))
}

func (m *Manager) EventsPruned(n int) {
	if n > 0 {
		m.eventsPruned.Add(float64(n))
	}
}

func (m *Manager) ProgressChanged(todayMl int, ratio float64, streak int) {
	m.todayMl.Set(float64(todayMl))
	m.ratio.Set(ratio)
	m.streakCount.Set(float64(streak))
}

// ReminderTick counts a reminder firing and whether delivery failed.
func (m *Manager) ReminderTick(err error) {
	m.reminderTicks.Inc()
	if err != nil {
		m.notifyFailures.Inc()
	}
}

// ObserveHTTP records one API request.
func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}
