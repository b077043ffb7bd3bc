package validator

import (
	"testing"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph_Clean(t *testing.T) {
	s := &domain.Scenario{StartNodeID: "start", Nodes: []domain.Node{
		{ID: "start", Text: "Begin", Choices: []domain.Choice{{Label: "go", TargetNodeID: "end"}}},
		{ID: "end", Text: "Done", Result: domain.ResultWin},
	}}
	assert.NoError(t, ValidateGraph(s))
}

func TestValidate_Issues(t *testing.T) {
	s := &domain.Scenario{StartNodeID: "start", Nodes: []domain.Node{
		{ID: "start", Text: "Begin", Choices: []domain.Choice{
			{Label: "ghost", TargetNodeID: "ghost_node"},
			{Label: "quiet", TargetNodeID: "void"},
		}},
		{ID: "void", Text: "Nothing happens."},
		{ID: "orphan", Text: "Never seen", Result: domain.ResultFail},
		{ID: "void", Text: "Still nothing."},
	}}

	issues := Validate(s)
	kinds := map[Kind]string{}
	for _, i := range issues {
		kinds[i.Kind] = i.NodeID
	}
	assert.Equal(t, map[Kind]string{
		KindDuplicateID: "void",
		KindDangling:    "start",
		KindDeadEnd:     "void",
		KindUnreachable: "orphan",
	}, kinds)

	err := ValidateGraph(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 4 issues")
	assert.Contains(t, err.Error(), "ghost_node")
}

func TestValidate_MissingStart(t *testing.T) {
	issues := Validate(&domain.Scenario{StartNodeID: "nope", Nodes: []domain.Node{{ID: "a"}}})
	require.Len(t, issues, 1)
	assert.Equal(t, KindMissingStart, issues[0].Kind)
}
