package runtime

import "github.com/aretw0/acheron/pkg/domain"

// Index is the node lookup table of one activated scenario.
// It is built once per activation and never mutated afterwards.
type Index struct {
	scenario *domain.Scenario
	nodes    map[string]*domain.Node
}

// NewIndex builds a fresh index for s. When ids repeat, the last node wins.
func NewIndex(s *domain.Scenario) *Index {
	idx := &Index{
		scenario: s,
		nodes:    make(map[string]*domain.Node, len(s.Nodes)),
	}
	for i := range s.Nodes {
		idx.nodes[s.Nodes[i].ID] = &s.Nodes[i]
	}
	return idx
}

// Lookup returns the node with the given id.
func (i *Index) Lookup(id string) (*domain.Node, bool) {
	if i == nil {
		return nil, false
	}
	n, ok := i.nodes[id]
	return n, ok
}

// StartNodeID returns the entry node id of the scenario.
func (i *Index) StartNodeID() string {
	return i.scenario.StartNodeID
}

// Scenario returns the indexed scenario.
func (i *Index) Scenario() *domain.Scenario {
	return i.scenario
}

// Len returns the number of distinct node ids.
func (i *Index) Len() int {
	return len(i.nodes)
}
