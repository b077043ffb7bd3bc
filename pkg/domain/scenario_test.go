package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		scenario *domain.Scenario
		want     string
	}{
		{"Explicit ID", &domain.Scenario{ID: "m1", Title: "T", StartNodeID: "Q1"}, "m1"},
		{"Explicit ID Trimmed", &domain.Scenario{ID: "  m1 ", Title: "T", StartNodeID: "Q1"}, "m1"},
		{"Blank ID Falls Back", &domain.Scenario{ID: "   ", Title: "T", StartNodeID: "Q1"}, "T::Q1"},
		{"Missing ID Falls Back", &domain.Scenario{Title: "Op Nightfall", StartNodeID: "S"}, "Op Nightfall::S"},
		{"Nil Scenario", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IdentityKey(tt.scenario))
		})
	}
}

func TestMissionInfo_Slot(t *testing.T) {
	assert.Equal(t, "1/1", domain.MissionInfo{Count: 1}.Slot())
	assert.Equal(t, "2/5", domain.MissionInfo{Count: 5, Index: 1}.Slot())
}

func TestSessionState_Clone(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := domain.NewSessionState("Q1", now, domain.DefaultHints)
	s.EndTime = &now

	c := s.Clone()
	c.History = append(c.History, "Q2")
	c.UsedChoiceKeys = append(c.UsedChoiceKeys, "Q1::Go")
	later := now.Add(time.Minute)
	c.EndTime = &later

	assert.Equal(t, []string{"Q1"}, s.History)
	assert.Empty(t, s.UsedChoiceKeys)
	assert.Equal(t, now, *s.EndTime)
}

func TestNewSessionState_Invariants(t *testing.T) {
	s := domain.NewSessionState("start", time.Now(), 3)

	assert.Equal(t, "start", s.CurrentNodeID)
	assert.Equal(t, len(s.History), s.BranchDepth)
	assert.Equal(t, 1, s.Attempts)
	assert.Equal(t, 3, s.HintsRemaining)
	assert.Equal(t, domain.StatusPlaying, s.Status)
	assert.Nil(t, s.EndTime)
}

func TestInvalidBranchError_Is(t *testing.T) {
	var err error = &domain.InvalidBranchError{NodeID: "Q1", TargetID: "ghost"}
	assert.ErrorIs(t, err, domain.ErrInvalidBranch)
	assert.Equal(t, "invalid branch: ghost", err.Error())
}

func TestSessionState_ChoiceStates(t *testing.T) {
	hub := &domain.Node{ID: "H", Choices: []domain.Choice{
		{Label: "Left", TargetNodeID: "L"},
		{Label: "Right", TargetNodeID: "R"},
	}}
	s := domain.NewSessionState("H", time.Now(), 3)

	states := s.ChoiceStates(hub)
	assert.False(t, s.Exhausted(hub))
	assert.False(t, states[0].Used || states[0].Disabled || states[1].Used)

	s.UsedChoiceKeys = append(s.UsedChoiceKeys, domain.ChoiceKey("H", "Left"))
	states = s.ChoiceStates(hub)
	assert.True(t, states[0].Used)
	assert.True(t, states[0].Disabled, "used choice is disabled while others remain")
	assert.False(t, states[1].Disabled)
	assert.False(t, s.Exhausted(hub))

	s.UsedChoiceKeys = append(s.UsedChoiceKeys, domain.ChoiceKey("H", "Right"))
	states = s.ChoiceStates(hub)
	assert.True(t, s.Exhausted(hub))
	assert.True(t, states[0].Used && states[1].Used)
	assert.False(t, states[0].Disabled || states[1].Disabled, "exhausted node re-enables every choice")

	assert.False(t, s.Exhausted(&domain.Node{ID: "T"}), "terminal nodes are never exhausted")
	assert.Empty(t, s.ChoiceStates(nil))
}
