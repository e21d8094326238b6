package httpapi

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// unknownEvent labels events no rule in the subsystem reacts to, keeping
// the label set bounded by the rule table.
const unknownEvent = "unknown"

type metrics struct {
	events *prometheus.CounterVec
	saves  *prometheus.CounterVec
}

// newMetrics registers the collectors on reg. Servers sharing a registry
// share the counters.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	events, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automata_events_total",
			Help: "Events dispatched to automaton nodes.",
		},
		[]string{"subsystem", "event", "applied"},
	))
	if err != nil {
		return nil, err
	}
	saves, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automata_save_operations_total",
			Help: "Save slot operations by kind and outcome.",
		},
		[]string{"op", "result"},
	))
	if err != nil {
		return nil, err
	}
	return &metrics{events: events, saves: saves}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *metrics) event(subsystem, event string, applied bool) {
	m.events.WithLabelValues(subsystem, event, strconv.FormatBool(applied)).Inc()
}

func (m *metrics) save(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(op, result).Inc()
}
