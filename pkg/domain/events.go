package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition    EventType = "transition"
	EventOutcome       EventType = "outcome"
	EventHint          EventType = "hint"
	EventReset         EventType = "reset"
	EventMissionSwitch EventType = "mission_switch"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	MissionID string    `json:"mission_id"`
}

// TransitionEvent is emitted after a choice is committed.
type TransitionEvent struct {
	EventBase
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
	Label      string `json:"label"`
	// Inferred is true when the outcome came from the node text instead of an explicit result.
	Inferred bool `json:"inferred,omitempty"`
}

// OutcomeEvent is emitted when a session reaches won or failed.
type OutcomeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Status Status `json:"status"`
	Result Result `json:"result,omitempty"`
}

// HintEvent is emitted on every hint request.
type HintEvent struct {
	EventBase
	Granted   bool `json:"granted"`
	Remaining int  `json:"remaining"`
}

// ResetEvent is emitted when the session is re-initialized.
type ResetEvent struct {
	EventBase
	Full     bool `json:"full"`
	Attempts int  `json:"attempts"`
}

// MissionEvent is emitted when another mission becomes active.
type MissionEvent struct {
	EventBase
	PreviousID string `json:"previous_id,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition    func(context.Context, *TransitionEvent)
	OnOutcome       func(context.Context, *OutcomeEvent)
	OnHint          func(context.Context, *HintEvent)
	OnReset         func(context.Context, *ResetEvent)
	OnMissionSwitch func(context.Context, *MissionEvent)
	OnPersistError  func(context.Context, error)
}

// MergeHooks fans every callback out to all given hook sets, in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range all {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnOutcome: func(ctx context.Context, e *OutcomeEvent) {
			for _, h := range all {
				if h.OnOutcome != nil {
					h.OnOutcome(ctx, e)
				}
			}
		},
		OnHint: func(ctx context.Context, e *HintEvent) {
			for _, h := range all {
				if h.OnHint != nil {
					h.OnHint(ctx, e)
				}
			}
		},
		OnReset: func(ctx context.Context, e *ResetEvent) {
			for _, h := range all {
				if h.OnReset != nil {
					h.OnReset(ctx, e)
				}
			}
		},
		OnMissionSwitch: func(ctx context.Context, e *MissionEvent) {
			for _, h := range all {
				if h.OnMissionSwitch != nil {
					h.OnMissionSwitch(ctx, e)
				}
			}
		},
		OnPersistError: func(ctx context.Context, err error) {
			for _, h := range all {
				if h.OnPersistError != nil {
					h.OnPersistError(ctx, err)
				}
			}
		},
	}
}
