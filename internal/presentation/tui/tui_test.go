package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/acheron/internal/presentation/tui"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	got := tui.Wrap("You pivot through the jump host and land on the finance subnet.", 20)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 20, line)
	}
	assert.Contains(t, got, "finance")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "MISSION COMPLETE", tui.StatusLabel(domain.StatusWon))
	assert.Equal(t, "DETECTED", tui.StatusLabel(domain.StatusFailed))
	assert.Equal(t, "IN PROGRESS", tui.StatusLabel(domain.StatusPlaying))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "red team simulation engine")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer(40)
	out, err := render("**Foothold** acquired")
	require.NoError(t, err)
	assert.Contains(t, out, "Foothold")
}
