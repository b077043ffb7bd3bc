package domain

// StateDiff represents the changes between two session states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// MissionID is always present to identify the target.
	MissionID string `json:"mission_id"`

	CurrentNodeID  *string `json:"current_node_id,omitempty"`
	Status         *Status `json:"status,omitempty"`
	HintsRemaining *int    `json:"hints_remaining,omitempty"`
	Attempts       *int    `json:"attempts,omitempty"`

	// HistoryParams contains only the node ids appended since the old state.
	HistoryParams *HistoryDelta `json:"history,omitempty"`

	// Restarted is set when history was rewritten rather than appended (reset or mission switch).
	Restarted bool `json:"restarted,omitempty"`
}

// HistoryDelta represents changes to the history.
type HistoryDelta struct {
	Appended []string `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(missionID string, oldState, newState *SessionState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{MissionID: missionID}

	if oldState == nil || oldState.CurrentNodeID != newState.CurrentNodeID {
		diff.CurrentNodeID = &newState.CurrentNodeID
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if oldState == nil || oldState.HintsRemaining != newState.HintsRemaining {
		diff.HintsRemaining = &newState.HintsRemaining
	}
	if oldState == nil || oldState.Attempts != newState.Attempts {
		diff.Attempts = &newState.Attempts
	}

	diff.HistoryParams, diff.Restarted = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory treats history as append-only; a prefix mismatch is reported as a restart.
func diffHistory(old, new *SessionState) (*HistoryDelta, bool) {
	if len(new.History) == 0 {
		return nil, false
	}
	if old == nil {
		return &HistoryDelta{Appended: new.History}, false
	}

	oldLen := len(old.History)
	if len(new.History) < oldLen || !hasPrefix(new.History, old.History) {
		return &HistoryDelta{Appended: new.History}, true
	}
	if len(new.History) == oldLen {
		return nil, false
	}
	return &HistoryDelta{Appended: new.History[oldLen:]}, false
}

func hasPrefix(list, prefix []string) bool {
	if len(prefix) > len(list) {
		return false
	}
	for i := range prefix {
		if list[i] != prefix[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil &&
		d.Status == nil &&
		d.HintsRemaining == nil &&
		d.Attempts == nil &&
		d.HistoryParams == nil &&
		!d.Restarted
}
