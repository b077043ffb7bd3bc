package domain

import "time"

// Status is the traversal status of a session.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusFailed  Status = "failed"
)

// IsTerminal reports whether no transition is defined out of the status except a reset.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusFailed
}

// DefaultHints is the hint budget of a fresh session.
const DefaultHints = 3

// SessionState represents the traversal record for the active scenario.
// It is replaced as a whole on every mutation, never edited in place by the engine.
type SessionState struct {
	CurrentNodeID string `json:"currentNodeId"`

	// History lists every node visited, start node included. Duplicates are allowed.
	History []string `json:"history"`

	// BranchDepth counts visited nodes, so len(History) == BranchDepth.
	BranchDepth int `json:"branchDepth"`

	// CompletedOutcomes is the ordered set of node ids reached with a won or failed result.
	CompletedOutcomes []string `json:"completedOutcomes"`

	Status    Status     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	// PathTaken holds human-readable transitions: "[from] label -> to".
	PathTaken []string `json:"pathTaken"`

	Attempts       int `json:"attempts"`
	HintsRemaining int `json:"hintsRemaining"`
	HintsUsed      int `json:"hintsUsed"`

	// UsedChoiceKeys is the ordered set of "nodeId::label" keys of every choice taken.
	UsedChoiceKeys []string `json:"usedChoiceKeys"`
}

// NewSessionState creates a clean session positioned at startNodeID.
func NewSessionState(startNodeID string, now time.Time, hints int) *SessionState {
	return &SessionState{
		CurrentNodeID:     startNodeID,
		History:           []string{startNodeID},
		BranchDepth:       1,
		CompletedOutcomes: []string{},
		Status:            StatusPlaying,
		StartTime:         now,
		PathTaken:         []string{},
		Attempts:          1,
		HintsRemaining:    hints,
		UsedChoiceKeys:    []string{},
	}
}

// Clone returns a deep copy that shares no slices with the receiver.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.History = cloneStrings(s.History)
	c.CompletedOutcomes = cloneStrings(s.CompletedOutcomes)
	c.PathTaken = cloneStrings(s.PathTaken)
	c.UsedChoiceKeys = cloneStrings(s.UsedChoiceKeys)
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}

// Elapsed returns the time spent in the session, measured against now while playing.
func (s *SessionState) Elapsed(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	d := end.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// ChoiceKey builds the key recorded in UsedChoiceKeys.
func ChoiceKey(nodeID, label string) string {
	return nodeID + "::" + label
}

// HasUsed reports whether the given choice was already taken from nodeID.
func (s *SessionState) HasUsed(nodeID, label string) bool {
	key := ChoiceKey(nodeID, label)
	for _, k := range s.UsedChoiceKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ChoiceState is one choice of a node as the player sees it.
type ChoiceState struct {
	Index        int    `json:"index"`
	Label        string `json:"label"`
	TargetNodeID string `json:"targetNodeId"`
	Used         bool   `json:"used"`
	Disabled     bool   `json:"disabled"`
}

// Exhausted reports whether every choice of node was already taken from it.
// A node without choices is never exhausted.
func (s *SessionState) Exhausted(node *Node) bool {
	if node == nil || len(node.Choices) == 0 {
		return false
	}
	for _, c := range node.Choices {
		if !s.HasUsed(node.ID, c.Label) {
			return false
		}
	}
	return true
}

// ChoiceStates lists the choices of node in order. A used choice stays
// disabled until every choice of the node has been used.
func (s *SessionState) ChoiceStates(node *Node) []ChoiceState {
	if node == nil {
		return []ChoiceState{}
	}
	exhausted := s.Exhausted(node)
	out := make([]ChoiceState, len(node.Choices))
	for i, c := range node.Choices {
		used := s.HasUsed(node.ID, c.Label)
		out[i] = ChoiceState{
			Index:        i,
			Label:        c.Label,
			TargetNodeID: c.TargetNodeID,
			Used:         used,
			Disabled:     used && !exhausted,
		}
	}
	return out
}

// AppendUnique appends v to set unless already present.
func AppendUnique(set []string, v string) []string {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

func cloneStrings(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
