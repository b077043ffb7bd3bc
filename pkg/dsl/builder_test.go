package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kiosk(t *testing.T) *domain.Scenario {
	t.Helper()
	b := New("Kiosk Breakout").ID("kiosk").Description("Escape the lobby kiosk.")

	b.Add("Q1").
		Text("You sit at a locked kiosk.").
		Choice("Check local permissions", "Q2").Hint("Look before you leap").
		Failure("Brute force the admin PIN", "Q3")

	b.Add("Q2").Text("Domain admin reached.").Wins().Flag("FLAG{kiosk}")
	b.Add("Q3").Text("Lockout. You are detected.").Fails().Restart("Q1")

	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestBuilder_Scenario(t *testing.T) {
	s := kiosk(t)

	assert.Equal(t, "kiosk", domain.IdentityKey(s))
	assert.Equal(t, "Q1", s.StartNodeID)
	require.Len(t, s.Nodes, 3)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, []string{s.Nodes[0].ID, s.Nodes[1].ID, s.Nodes[2].ID})

	q1 := s.Nodes[0]
	require.Len(t, q1.Choices, 2)
	assert.Equal(t, "Look before you leap", q1.Choices[0].Hint)
	assert.True(t, q1.Choices[1].IsFailure)
	assert.Equal(t, domain.ResultWin, s.Nodes[1].Result)
	assert.Equal(t, "FLAG{kiosk}", s.Nodes[1].Flag)
	assert.Equal(t, []domain.Choice{{Label: "Restart", TargetNodeID: "Q1"}}, s.Nodes[2].Choices)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New("t")
	b.Add("a").Text("first")
	b.Add("a").Choice("go", "b")
	b.Add("b").Wins()

	s, err := b.Build()
	require.NoError(t, err)
	require.Len(t, s.Nodes, 2)
	assert.Equal(t, "first", s.Nodes[0].Text)
	assert.Len(t, s.Nodes[0].Choices, 1)
}

func TestBuilder_Errors(t *testing.T) {
	_, err := New("empty").Build()
	assert.Error(t, err)

	b := New("t").Start("missing")
	b.Add("a")
	_, err = b.Build()
	assert.ErrorContains(t, err, "missing")
}

func TestBuilder_Playable(t *testing.T) {
	ctx := context.Background()
	e := acheron.New()
	require.NoError(t, e.Load(ctx, Single(kiosk(t))))

	require.NoError(t, e.Choose(ctx, 1))
	st := e.State()
	assert.Equal(t, domain.StatusFailed, st.Status)
	assert.Equal(t, []string{"Q3"}, st.CompletedOutcomes)
}

func TestPack(t *testing.T) {
	a := kiosk(t)
	b, err := New("Badge Clone").Add("B1").Text("Clone a badge.").Partial().builder.Build()
	require.NoError(t, err)

	res := Pack("Red Week", a, b)
	assert.True(t, res.IsPack)
	assert.Same(t, a, res.Active)
	assert.Len(t, res.All, 2)
}
