package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/acheron/pkg/domain"
)

// Builder manages the scenario construction.
type Builder struct {
	scenario domain.Scenario
	order    []string
	nodes    map[string]*NodeBuilder
}

// New creates a new scenario builder.
func New(title string) *Builder {
	return &Builder{
		scenario: domain.Scenario{Title: title},
		nodes:    make(map[string]*NodeBuilder),
	}
}

// ID sets the explicit identity key.
func (b *Builder) ID(id string) *Builder {
	b.scenario.ID = id
	return b
}

// Description sets the scenario description.
func (b *Builder) Description(text string) *Builder {
	b.scenario.Description = text
	return b
}

// Brief attaches a mission briefing.
func (b *Builder) Brief(brief domain.MissionBrief) *Builder {
	b.scenario.MissionBrief = &brief
	return b
}

// Start sets the start node. Without it the first added node is the start.
func (b *Builder) Start(id string) *Builder {
	b.scenario.StartNodeID = id
	return b
}

// Add creates a new node in the scenario.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Choices: []domain.Choice{}},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build returns the scenario with nodes in the order they were added.
// Dangling targets are allowed; they surface at play time as invalid branches.
func (b *Builder) Build() (*domain.Scenario, error) {
	if len(b.order) == 0 {
		return nil, errors.New("scenario has no nodes")
	}

	s := b.scenario
	if s.StartNodeID == "" {
		s.StartNodeID = b.order[0]
	}
	if _, ok := b.nodes[s.StartNodeID]; !ok {
		return nil, fmt.Errorf("start node %q was never added", s.StartNodeID)
	}

	s.Nodes = make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		s.Nodes = append(s.Nodes, b.nodes[id].Build())
	}
	return &s, nil
}

// Single wraps one scenario as a loader result.
func Single(s *domain.Scenario) domain.LoadResult {
	return domain.LoadResult{Active: s, All: []*domain.Scenario{s}, PackTitle: s.Title, PackDescription: s.Description}
}

// Pack wraps scenarios as a mission pack whose first scenario is active.
func Pack(title string, scenarios ...*domain.Scenario) domain.LoadResult {
	res := domain.LoadResult{All: scenarios, IsPack: true, PackTitle: title}
	if len(scenarios) > 0 {
		res.Active = scenarios[0]
	}
	return res
}
