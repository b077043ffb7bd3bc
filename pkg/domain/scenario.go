package domain

import (
	"strconv"
	"strings"
)

// MissionBrief is the optional briefing attached to a scenario.
type MissionBrief struct {
	Objective   string `json:"objective,omitempty" yaml:"objective,omitempty" mapstructure:"objective"`
	CrownJewel  string `json:"crownJewel,omitempty" yaml:"crownJewel,omitempty" mapstructure:"crownJewel"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" mapstructure:"environment"`
	Constraints string `json:"constraints,omitempty" yaml:"constraints,omitempty" mapstructure:"constraints"`
	Defenses    string `json:"defenses,omitempty" yaml:"defenses,omitempty" mapstructure:"defenses"`
}

// Scenario is one complete branching narrative graph.
// It is immutable once activated.
type Scenario struct {
	ID           string        `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Title        string        `json:"title" yaml:"title" mapstructure:"title"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	MissionBrief *MissionBrief `json:"missionBrief,omitempty" yaml:"missionBrief,omitempty" mapstructure:"missionBrief"`
	StartNodeID  string        `json:"startNodeId" yaml:"startNodeId" mapstructure:"startNodeId"`
	Nodes        []Node        `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
}

// IdentityKey derives the stable key used to compare scenarios.
// An explicit non-blank ID wins; otherwise the key is "title::startNodeId".
//
// Callers that compare scenarios repeatedly should compute it once and keep it
// (the catalog does this for every loaded scenario).
func IdentityKey(s *Scenario) string {
	if s == nil {
		return ""
	}
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	return s.Title + "::" + s.StartNodeID
}

// LoadResult is the normalized output of a scenario loader.
type LoadResult struct {
	Active          *Scenario
	All             []*Scenario
	IsPack          bool
	PackTitle       string
	PackDescription string
}

// MissionInfo describes the active mission's position in the catalog.
type MissionInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Count           int    `json:"count"`
	Index           int    `json:"index"`
	IsPack          bool   `json:"isPack"`
	PackTitle       string `json:"packTitle,omitempty"`
	PackDescription string `json:"packDescription,omitempty"`
}

// Slot renders the 1-based "i/n" position used in reports and briefings.
func (m MissionInfo) Slot() string {
	if m.Count > 1 {
		return strconv.Itoa(m.Index+1) + "/" + strconv.Itoa(m.Count)
	}
	return "1/1"
}
