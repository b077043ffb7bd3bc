package acheron_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/acheron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_PlayThrough(t *testing.T) {
	res := packOf(alpha(), bravo())
	res.PackDescription = "Five days, five targets."
	e := newEngine(t, res)
	var out bytes.Buffer
	var exported string

	r := acheron.NewRunner()
	r.Input = strings.NewReader("h\n9\n2\n1\ne\nq\n")
	r.Output = &out
	r.Export = func(name, md string) error {
		exported = name
		return nil
	}

	require.NoError(t, r.Run(context.Background(), e))

	text := out.String()
	assert.Contains(t, text, "Red Week: Five days, five targets.")
	assert.Contains(t, text, "[1/2]")
	assert.Contains(t, text, "[Q1] Foothold on a kiosk.")
	assert.Contains(t, text, "2) Run OSINT")
	assert.Contains(t, text, "%", "hint shows probabilities")
	assert.Contains(t, text, "! choice 9 out of range")
	assert.Contains(t, text, "[Q4] Accounts lockout. You are detected.")
	assert.Contains(t, text, "== DETECTED ==")
	assert.Contains(t, text, "Bye!")
	assert.True(t, strings.HasPrefix(exported, "operation-alpha-path-"))

	s := e.State()
	assert.Equal(t, "Q4", s.CurrentNodeID)
	assert.Equal(t, 1, s.HintsUsed)
}

func TestRunner_MarksUsedChoices(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	var out bytes.Buffer

	r := &acheron.Runner{Input: strings.NewReader("2\n2\n2\nq\n"), Output: &out, Headless: true}
	require.NoError(t, r.Run(context.Background(), e))

	text := out.String()
	assert.Contains(t, text, "2) Run OSINT [used]")
	assert.NotContains(t, text, "1) Go [used]")
	assert.Contains(t, text, "! choice 2 already taken at node Q1")
	assert.Equal(t, "Q1", e.State().CurrentNodeID)
}

func TestRunner_EOFEndsQuietly(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	var out bytes.Buffer

	r := &acheron.Runner{Input: strings.NewReader("2"), Output: &out, Headless: true}
	require.NoError(t, r.Run(context.Background(), e))

	assert.Equal(t, "Q3", e.State().CurrentNodeID, "last line without newline is still played")
	assert.NotContains(t, out.String(), "> ")
}

func TestRunner_RequiresIO(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	assert.Error(t, acheron.NewRunner().Run(context.Background(), e))
}
