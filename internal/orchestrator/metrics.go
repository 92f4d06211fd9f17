package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aristath/agentboard/internal/scheduler"
)

// Metrics exposes Prometheus collectors that report session activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions        *prometheus.CounterVec
	activationDuration *prometheus.HistogramVec
	staleCompletions   *prometheus.CounterVec
	manualUpdates      prometheus.Counter
	activeAgents       prometheus.Gauge
	blockedTasks       prometheus.Gauge
}

// MustNewMetrics constructs and registers the collectors on reg. Registration
// errors panic, mirroring promauto. Use a fresh registry per session in tests.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "task_transitions_total",
				Help:      "Task status changes, scheduler-driven and manual.",
			},
			[]string{"from", "to"},
		),
		activationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "activation_duration_seconds",
				Help:      "Simulated time an agent spent on one activation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		staleCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "stale_completions_total",
				Help:      "Completion timers that fired against a task no longer in the expected state.",
			},
			[]string{"phase"},
		),
		manualUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "manual_updates_total",
				Help:      "Manual task edits applied.",
			},
		),
		activeAgents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "active_agents",
				Help:      "Tasks currently bound to an agent.",
			},
		),
		blockedTasks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "agentboard",
				Subsystem: "session",
				Name:      "blocked_tasks",
				Help:      "Tasks with at least one dependency not Done.",
			},
		),
	}

	reg.MustRegister(m.transitions, m.activationDuration, m.staleCompletions, m.manualUpdates, m.activeAgents, m.blockedTasks)
	return m
}

func (m *Metrics) observeTransition(from, to scheduler.TaskStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) observeActivation(phase scheduler.Phase, d time.Duration) {
	if m == nil {
		return
	}
	m.activationDuration.WithLabelValues(string(phase)).Observe(d.Seconds())
}

func (m *Metrics) incStale(phase scheduler.Phase) {
	if m == nil {
		return
	}
	m.staleCompletions.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) incManual() {
	if m == nil {
		return
	}
	m.manualUpdates.Inc()
}

func (m *Metrics) setGauges(active, blocked int) {
	if m == nil {
		return
	}
	m.activeAgents.Set(float64(active))
	m.blockedTasks.Set(float64(blocked))
}
