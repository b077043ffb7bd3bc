package runtime_test

import (
	"testing"

	"github.com/aretw0/acheron/internal/runtime"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMaxDepth(t *testing.T) {
	tests := []struct {
		name     string
		scenario *domain.Scenario
		want     int
	}{
		{"win scenario", twoStep(), 2},
		{"cycle with exit", chain(), 3},
		{
			name: "pure cycle",
			scenario: &domain.Scenario{StartNodeID: "A", Nodes: []domain.Node{
				{ID: "A", Choices: []domain.Choice{{TargetNodeID: "B"}}},
				{ID: "B", Choices: []domain.Choice{{TargetNodeID: "A"}}},
			}},
			want: 2,
		},
		{
			name: "self loop",
			scenario: &domain.Scenario{StartNodeID: "A", Nodes: []domain.Node{
				{ID: "A", Choices: []domain.Choice{{TargetNodeID: "A"}}},
			}},
			want: 1,
		},
		{
			name: "dangling target counts as leaf",
			scenario: &domain.Scenario{StartNodeID: "A", Nodes: []domain.Node{
				{ID: "A", Choices: []domain.Choice{{TargetNodeID: "missing"}}},
			}},
			want: 2,
		},
		{
			name:     "missing start",
			scenario: &domain.Scenario{StartNodeID: "nope"},
			want:     1,
		},
		{
			name: "longest branch wins",
			scenario: &domain.Scenario{StartNodeID: "A", Nodes: []domain.Node{
				{ID: "A", Choices: []domain.Choice{{TargetNodeID: "end"}, {TargetNodeID: "B"}}},
				{ID: "B", Choices: []domain.Choice{{TargetNodeID: "C"}}},
				{ID: "C", Choices: []domain.Choice{{TargetNodeID: "end"}}},
				{ID: "end"},
			}},
			want: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.MaxDepth(runtime.NewIndex(tt.scenario)))
		})
	}
}
