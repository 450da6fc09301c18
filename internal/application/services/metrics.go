package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics counts completed store mutations. A nil *StoreMetrics is
// valid and records nothing, so wiring stays optional.
type StoreMetrics struct {
	tasksCreated prometheus.Counter
	tasksToggled prometheus.Counter
	tasksDeleted prometheus.Counter
	tasksCleared prometheus.Counter
}

// NewStoreMetrics registers the store mutation counters on the given
// registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_created_total",
			Help: "Total number of tasks created",
		}),
		tasksToggled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_toggled_total",
			Help: "Total number of task and sub-task completion toggles",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_deleted_total",
			Help: "Total number of tasks deleted individually",
		}),
		tasksCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_cleared_total",
			Help: "Total number of completed tasks removed by bulk clear",
		}),
	}

	reg.MustRegister(m.tasksCreated, m.tasksToggled, m.tasksDeleted, m.tasksCleared)
	return m
}

func (m *StoreMetrics) incCreated() {
	if m != nil {
		m.tasksCreated.Inc()
	}
}

func (m *StoreMetrics) incToggled() {
	if m != nil {
		m.tasksToggled.Inc()
	}
}

func (m *StoreMetrics) incDeleted() {
	if m != nil {
		m.tasksDeleted.Inc()
	}
}

func (m *StoreMetrics) incCleared(n int) {
	if m != nil {
		m.tasksCleared.Add(float64(n))
	}
}
