package runtime_test

import (
	"testing"
	"time"

	"github.com/aretw0/acheron/internal/runtime"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestAchievements(t *testing.T) {
	finished := func(path []string, hints int, took time.Duration) *domain.SessionState {
		s := domain.NewSessionState("start", epoch, domain.DefaultHints)
		s.Status = domain.StatusWon
		s.PathTaken = path
		s.HintsUsed = hints
		end := epoch.Add(took)
		s.EndTime = &end
		return s
	}

	t.Run("quiet fast win", func(t *testing.T) {
		s := finished([]string{"[start] OSINT on job postings -> recon", "[recon] Kerberoast service accounts -> da"}, 0, time.Minute)
		assert.Equal(t, []string{
			runtime.AchievementResolved,
			runtime.AchievementSpeedRun,
			runtime.AchievementStealth,
			runtime.AchievementNoHints,
			runtime.AchievementRecon,
			runtime.AchievementRoaster,
		}, runtime.Achievements(s, nil, epoch.Add(time.Hour)))
	})

	t.Run("slow noisy win with hints", func(t *testing.T) {
		s := finished([]string{"[start] Brute-force RDP -> box"}, 2, 10*time.Minute)
		assert.Equal(t, []string{runtime.AchievementResolved}, runtime.Achievements(s, nil, epoch))
	})

	t.Run("partial counts as resolved", func(t *testing.T) {
		s := domain.NewSessionState("p", epoch, domain.DefaultHints)
		s.Status = domain.StatusWon
		partial := &domain.Node{ID: "p", Result: domain.ResultPartial}
		got := runtime.Achievements(s, partial, epoch)
		assert.Contains(t, got, runtime.AchievementResolved)
		assert.Contains(t, got, runtime.AchievementNoHints)
		assert.NotContains(t, got, runtime.AchievementSpeedRun, "zero elapsed is not a speed run")
	})

	t.Run("in progress", func(t *testing.T) {
		s := domain.NewSessionState("start", epoch, domain.DefaultHints)
		assert.Equal(t, []string{runtime.AchievementStealth}, runtime.Achievements(s, nil, epoch.Add(time.Second)))
	})
}

func TestFlagsAndComplexity(t *testing.T) {
	s := &domain.Scenario{StartNodeID: "a", Nodes: []domain.Node{
		{ID: "a", Flag: "FLAG{a}"},
		{ID: "b"},
		{ID: "c", Flag: "FLAG{c}"},
	}}
	idx := runtime.NewIndex(s)
	state := domain.NewSessionState("a", epoch, 0)
	state.History = []string{"a", "b", "a", "c"}

	assert.Equal(t, []string{"FLAG{a}", "FLAG{c}"}, runtime.FlagsCaptured(idx, state))
	assert.Equal(t, 3, runtime.Complexity(state))
}
