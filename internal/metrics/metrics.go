// Package metrics exports engine lifecycle events as Prometheus counters.
package metrics

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the engine counters.
type Collector struct {
	Transitions   *prometheus.CounterVec
	Outcomes      *prometheus.CounterVec
	Hints         *prometheus.CounterVec
	Resets        *prometheus.CounterVec
	Switches      *prometheus.CounterVec
	PersistErrors prometheus.Counter
}

// NewCollector creates the counters and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acheron_transitions_total",
				Help: "Total number of committed choices",
			},
			[]string{"mission", "to_node"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acheron_outcomes_total",
				Help: "Sessions that reached a terminal status",
			},
			[]string{"mission", "status"},
		),
		Hints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acheron_hints_total",
				Help: "Hint requests by whether they were granted",
			},
			[]string{"granted"},
		),
		Resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acheron_resets_total",
				Help: "Session resets by kind",
			},
			[]string{"kind"},
		),
		Switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acheron_mission_switches_total",
				Help: "Mission activations after the first",
			},
			[]string{"mission"},
		),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acheron_persist_errors_total",
			Help: "Failed writes of the saved session",
		}),
	}
	reg.MustRegister(c.Transitions, c.Outcomes, c.Hints, c.Resets, c.Switches, c.PersistErrors)
	return c
}

// Hooks returns lifecycle hooks that feed the counters.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			c.Transitions.WithLabelValues(e.MissionID, e.ToNodeID).Inc()
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			c.Outcomes.WithLabelValues(e.MissionID, string(e.Status)).Inc()
		},
		OnHint: func(ctx context.Context, e *domain.HintEvent) {
			c.Hints.WithLabelValues(strconv.FormatBool(e.Granted)).Inc()
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			kind := "fresh"
			if e.Full {
				kind = "full"
			}
			c.Resets.WithLabelValues(kind).Inc()
		},
		OnMissionSwitch: func(ctx context.Context, e *domain.MissionEvent) {
			c.Switches.WithLabelValues(e.MissionID).Inc()
		},
		OnPersistError: func(ctx context.Context, err error) {
			c.PersistErrors.Inc()
		},
	}
}

// LogHooks returns lifecycle hooks that write one structured log line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Info("transition",
				"mission", e.MissionID,
				"from", e.FromNodeID,
				"to", e.ToNodeID,
				"label", e.Label,
			)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			logger.Info("outcome", "mission", e.MissionID, "node_id", e.NodeID, "status", e.Status)
		},
		OnHint: func(ctx context.Context, e *domain.HintEvent) {
			logger.Debug("hint", "granted", e.Granted, "remaining", e.Remaining)
		},
		OnReset: func(ctx context.Context, e *domain.ResetEvent) {
			logger.Info("reset", "mission", e.MissionID, "full", e.Full, "attempts", e.Attempts)
		},
		OnMissionSwitch: func(ctx context.Context, e *domain.MissionEvent) {
			logger.Info("mission_switch", "mission", e.MissionID, "previous", e.PreviousID)
		},
	}
}
