package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/acheron/internal/report"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	state := domain.NewSessionState("q1", time.Unix(0, 0), 3)
	state.CurrentNodeID = "q2"
	state.Status = domain.StatusWon
	state.PathTaken = []string{"[q1] OSINT -> q2"}
	state.HintsUsed = 1
	state.Attempts = 2

	got := report.Markdown(report.Input{
		Title:         "Operation Nightfall",
		PackTitle:     "Red Week",
		Mission:       domain.MissionInfo{Count: 3, Index: 1},
		State:         state,
		CurrentResult: domain.ResultPartial,
		Elapsed:       95*time.Second + 900*time.Millisecond,
		Achievements:  []string{"Mission Resolved", "Recon First"},
	})

	want := strings.Join([]string{
		"# Operation Nightfall - Attack Path Report",
		"",
		"- Mission Pack: Red Week",
		"- Mission Slot: 2/3",
		"- Status: WON (partial)",
		"- Current Node: q2",
		"- Attempts: 2",
		"- Time Elapsed: 95s",
		"- Hints Used: 1",
		"",
		"## Path Taken",
		"1. [q1] OSINT -> q2",
		"",
		"## Achievements",
		"- Mission Resolved",
		"- Recon First",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMarkdown_Empty(t *testing.T) {
	state := domain.NewSessionState("start", time.Unix(0, 0), 3)

	got := report.Markdown(report.Input{State: state, Mission: domain.MissionInfo{Count: 1}})

	assert.True(t, strings.HasPrefix(got, "# Red Team Simulation - Attack Path Report\n"))
	assert.Contains(t, got, "- Mission Pack: N/A\n")
	assert.Contains(t, got, "- Mission Slot: 1/1\n")
	assert.Contains(t, got, "- Status: PLAYING\n")
	assert.Contains(t, got, "- No moves recorded\n")
	assert.Contains(t, got, "## Achievements\n- None\n")
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Operation Nightfall":      "operation-nightfall",
		"  --AD: Kerberoast!! 2  ": "ad-kerberoast-2",
		"":                         "red-team-simulation",
		"!!!":                      "red-team-simulation",
		strings.Repeat("ab ", 40):  "ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab-ab",
	}
	for in, want := range tests {
		got := report.Slug(in)
		assert.Equal(t, want, got, in)
		assert.LessOrEqual(t, len(got), 60)
	}
}

func TestFileName(t *testing.T) {
	at := time.UnixMilli(1767312000123)
	assert.Equal(t, "operation-nightfall-path-1767312000123.md", report.FileName("Operation Nightfall", at))
}
