// Package persistence encodes the saved session record and moves it through a session.Manager.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/acheron/pkg/domain"
)

// DefaultKey is the storage key of the saved record.
// The version suffix keeps incompatible formats from reading each other.
const DefaultKey = "acheron-red-team-sim-state-v2"

// Record is the persisted document. Instants inside State are RFC 3339 strings.
type Record struct {
	CurrentMissionID *string              `json:"currentMissionId"`
	State            *domain.SessionState `json:"state"`
}

// MissionID returns the saved mission key or "".
func (r *Record) MissionID() string {
	if r == nil || r.CurrentMissionID == nil {
		return ""
	}
	return *r.CurrentMissionID
}

// NewRecord builds a record; an empty missionID is saved as null.
func NewRecord(missionID string, state *domain.SessionState) *Record {
	r := &Record{State: state}
	if missionID != "" {
		r.CurrentMissionID = &missionID
	}
	return r
}

// Encode serializes a record.
func Encode(r *Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// Decode parses a record. Anything that is not a usable record yields ErrCorruptRecord.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	if r.State == nil {
		return nil, fmt.Errorf("%w: missing state", domain.ErrCorruptRecord)
	}
	if r.State.CurrentNodeID == "" {
		return nil, fmt.Errorf("%w: missing currentNodeId", domain.ErrCorruptRecord)
	}
	normalize(r.State)
	return &r, nil
}

// normalize fills collections that older saves may have omitted.
func normalize(s *domain.SessionState) {
	if s.History == nil {
		s.History = []string{s.CurrentNodeID}
	}
	if s.BranchDepth != len(s.History) {
		s.BranchDepth = len(s.History)
	}
	if s.CompletedOutcomes == nil {
		s.CompletedOutcomes = []string{}
	}
	if s.PathTaken == nil {
		s.PathTaken = []string{}
	}
	if s.UsedChoiceKeys == nil {
		s.UsedChoiceKeys = []string{}
	}
	if s.Status == "" {
		s.Status = domain.StatusPlaying
	}
	if s.Attempts < 1 {
		s.Attempts = 1
	}
}
