package theming

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor collectors. A nil *Metrics records nothing.
type Metrics struct {
	saves          *prometheus.CounterVec
	saveDuration   prometheus.Histogram
	coalescedEdits prometheus.Counter
	openSessions   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fomi",
			Subsystem: "theme_editor",
			Name:      "saves_total",
			Help:      "Override saves by trigger and result.",
		}, []string{"trigger", "result"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fomi",
			Subsystem: "theme_editor",
			Name:      "save_duration_seconds",
			Help:      "Time spent writing a form's override record.",
			Buckets:   prometheus.DefBuckets,
		}),
		coalescedEdits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fomi",
			Subsystem: "theme_editor",
			Name:      "coalesced_edits_total",
			Help:      "Edits that re-armed a pending autosave instead of causing a write.",
		}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fomi",
			Subsystem: "theme_editor",
			Name:      "open_sessions",
			Help:      "Editor sessions currently held in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.saves, m.saveDuration, m.coalescedEdits, m.openSessions)
	}
	return m
}

func (m *Metrics) observeSave(trigger, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(trigger, result).Inc()
	if result != "noop" {
		m.saveDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) editCoalesced() {
	if m == nil {
		return
	}
	m.coalescedEdits.Inc()
}

func (m *Metrics) setOpenSessions(n int) {
	if m == nil {
		return
	}
	m.openSessions.Set(float64(n))
}
