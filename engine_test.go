package acheron_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/persistence"
	"github.com/aretw0/acheron/pkg/adapters/memory"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func alpha() *domain.Scenario {
	return &domain.Scenario{
		ID:          "alpha",
		Title:       "Operation Alpha",
		StartNodeID: "Q1",
		Nodes: []domain.Node{
			{ID: "Q1", Text: "Foothold on a kiosk.", Choices: []domain.Choice{
				{Label: "Go", TargetNodeID: "Q2"},
				{Label: "Run OSINT", TargetNodeID: "Q3"},
				{Label: "Broken", TargetNodeID: "missing"},
			}},
			{ID: "Q2", Text: "Domain admin.", Result: domain.ResultWin},
			{ID: "Q3", Text: "You find job postings.", Choices: []domain.Choice{
				{Label: "Spray passwords", TargetNodeID: "Q4"},
				{Label: "Back", TargetNodeID: "Q1"},
			}},
			{ID: "Q4", Text: "Accounts lockout. You are detected.", Result: domain.ResultFail},
		},
	}
}

func bravo() *domain.Scenario {
	return &domain.Scenario{
		Title:       "Operation Bravo",
		StartNodeID: "B1",
		Nodes: []domain.Node{
			{ID: "B1", Text: "Badge cloner ready.", Choices: []domain.Choice{{Label: "Tailgate", TargetNodeID: "B2"}}},
			{ID: "B2", Text: "Server room reached, partial access.", Result: domain.ResultPartial},
		},
	}
}

func packOf(ss ...*domain.Scenario) domain.LoadResult {
	return domain.LoadResult{Active: ss[0], All: ss, IsPack: len(ss) > 1, PackTitle: "Red Week"}
}

func newEngine(t *testing.T, res domain.LoadResult, opts ...acheron.Option) *acheron.Engine {
	t.Helper()
	e := acheron.New(opts...)
	require.NoError(t, e.Load(context.Background(), res))
	return e
}

func TestEngine_WinScenario(t *testing.T) {
	clock := newClock()
	e := newEngine(t, packOf(alpha()), acheron.WithClock(clock.Now))
	ctx := context.Background()

	clock.Advance(30 * time.Second)
	require.NoError(t, e.ApplyChoice(ctx, domain.Choice{Label: "Go", TargetNodeID: "Q2"}))

	s := e.State()
	assert.Equal(t, "Q2", s.CurrentNodeID)
	assert.Equal(t, domain.StatusWon, s.Status)
	assert.Equal(t, []string{"[Q1] Go -> Q2"}, s.PathTaken)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, clock.Now(), *s.EndTime)

	stats := e.Statistics()
	assert.Equal(t, 30, stats.TimeElapsed)
	assert.Contains(t, stats.Achievements, "Speed Runner")
	assert.Contains(t, stats.Achievements, "Mission Resolved")
}

func TestEngine_HistoryMatchesDepth(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, e.ApplyChoice(ctx, domain.Choice{Label: "Run OSINT", TargetNodeID: "Q3"}))
		require.NoError(t, e.ApplyChoice(ctx, domain.Choice{Label: "Back", TargetNodeID: "Q1"}))
	}
	s := e.State()
	assert.Equal(t, 7, s.BranchDepth)
	assert.Len(t, s.History, s.BranchDepth)
	assert.Equal(t, 2, e.Statistics().PathComplexity)
}

func TestEngine_InvalidBranchLeavesStateUntouched(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()
	before := e.State()

	err := e.Choose(ctx, 2)
	var branchErr *domain.InvalidBranchError
	require.ErrorAs(t, err, &branchErr)
	assert.Equal(t, "missing", branchErr.TargetID)

	after := e.State()
	assert.Equal(t, before, after)
	assert.Equal(t, "invalid branch: missing", e.Snapshot().Error)
	assert.ErrorIs(t, e.LastError(), domain.ErrInvalidBranch)

	require.NoError(t, e.Choose(ctx, 1))
	assert.NoError(t, e.LastError(), "next transition clears the error")
}

func TestEngine_TerminalStatusSticks(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()

	require.NoError(t, e.Choose(ctx, 1))
	require.NoError(t, e.Choose(ctx, 0))
	require.Equal(t, domain.StatusFailed, e.State().Status)

	assert.ErrorIs(t, e.ApplyChoice(ctx, domain.Choice{Label: "Go", TargetNodeID: "Q2"}), domain.ErrSessionOver)
	assert.Equal(t, domain.StatusFailed, e.State().Status)
	e.UseHint(ctx)
	assert.Equal(t, domain.StatusFailed, e.State().Status)

	require.NoError(t, e.Reset(ctx, true))
	s := e.State()
	assert.Equal(t, domain.StatusPlaying, s.Status)
	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, "Q1", s.CurrentNodeID)
}

func TestEngine_HintSequence(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()

	got := []bool{e.UseHint(ctx), e.UseHint(ctx), e.UseHint(ctx), e.UseHint(ctx)}
	assert.Equal(t, []bool{true, true, true, false}, got)
	assert.Equal(t, 3, e.State().HintsUsed)
	assert.Equal(t, 0, e.State().HintsRemaining)
}

func TestEngine_HintProbabilities(t *testing.T) {
	e := newEngine(t, packOf(alpha()))

	probs := e.HintProbabilities()
	require.Len(t, probs, 3)
	sum := 0
	for _, p := range probs {
		assert.GreaterOrEqual(t, p.Percent, 0)
		sum += p.Percent
	}
	assert.InDelta(t, 100, sum, 3)
	assert.Equal(t, "Run OSINT", probs[1].Label)
	assert.Greater(t, probs[1].Percent, probs[2].Percent)
}

func TestEngine_SwitchToRandomOther(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		e := newEngine(t, packOf(alpha(), bravo()))
		require.NoError(t, e.Choose(ctx, 1))

		info, err := e.SwitchToRandomOther(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Operation Bravo::B1", info.ID)
		assert.Equal(t, "2/2", info.Slot())

		s := e.State()
		assert.Equal(t, "B1", s.CurrentNodeID)
		assert.Equal(t, 1, s.Attempts)
		assert.Equal(t, []string{"B1"}, s.History)
	}
}

func TestEngine_SwitchTo(t *testing.T) {
	e := newEngine(t, packOf(alpha(), bravo()))
	ctx := context.Background()

	_, err := e.SwitchTo(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrMissionNotFound)
	assert.Equal(t, "alpha", e.MissionInfo().ID)

	info, err := e.SwitchTo(ctx, "Operation Bravo::B1")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Index)

	require.NoError(t, e.Choose(ctx, 0))
	s := e.State()
	assert.Equal(t, domain.StatusWon, s.Status, "terminal partial counts as won")
	assert.Contains(t, e.ExportReport(), "- Status: WON (partial)")

	missions := e.Missions()
	require.Len(t, missions, 2)
	assert.Equal(t, "alpha", missions[0].ID)
}

func TestEngine_PersistenceRoundTrip(t *testing.T) {
	store := memory.NewStore()
	clock := newClock()
	ctx := context.Background()

	first := newEngine(t, packOf(alpha(), bravo()), acheron.WithStore(store), acheron.WithClock(clock.Now))
	require.NoError(t, first.Choose(ctx, 1))
	require.True(t, first.UseHint(ctx))
	saved := first.State()
	require.Equal(t, 1, saved.HintsUsed)

	clock.Advance(time.Hour)
	second := newEngine(t, packOf(alpha(), bravo()), acheron.WithStore(store), acheron.WithClock(clock.Now))
	assert.Equal(t, saved, second.State())
	assert.NoError(t, second.LastError())
}

func TestEngine_RestoreActivatesSavedMission(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := newEngine(t, packOf(alpha(), bravo()), acheron.WithStore(store))
	_, err := first.SwitchTo(ctx, "Operation Bravo::B1")
	require.NoError(t, err)
	require.NoError(t, first.Choose(ctx, 0))

	second := newEngine(t, packOf(alpha(), bravo()), acheron.WithStore(store))
	assert.Equal(t, "Operation Bravo::B1", second.MissionInfo().ID)
	assert.Equal(t, "B2", second.State().CurrentNodeID)
}

func TestEngine_RestoreDiscardsUnknownNode(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	stale := domain.NewSessionState("Q9", time.Now(), 3)
	data, err := persistence.Encode(persistence.NewRecord("alpha", stale))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, persistence.DefaultKey, data))

	e := newEngine(t, packOf(alpha()), acheron.WithStore(store))
	assert.Equal(t, "Q1", e.State().CurrentNodeID)
	assert.NoError(t, e.LastError())
}

func TestEngine_CorruptSaveStartsFresh(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, persistence.DefaultKey, []byte("{not json")))

	e := newEngine(t, packOf(alpha()), acheron.WithStore(store))
	assert.Equal(t, "Q1", e.State().CurrentNodeID)
	assert.ErrorIs(t, e.LastError(), domain.ErrCorruptRecord)
}

type brokenStore struct{ *memory.Store }

func (brokenStore) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func TestEngine_PersistFailureIsNotFatal(t *testing.T) {
	var reported []error
	e := newEngine(t, packOf(alpha()),
		acheron.WithStore(brokenStore{Store: memory.NewStore()}),
		acheron.WithLifecycleHooks(domain.LifecycleHooks{
			OnPersistError: func(ctx context.Context, err error) { reported = append(reported, err) },
		}),
	)
	ctx := context.Background()

	require.NoError(t, e.Choose(ctx, 0))
	assert.Equal(t, "Q2", e.State().CurrentNodeID)
	require.Len(t, reported, 1)
	assert.ErrorContains(t, e.LastError(), "disk full")
	assert.Error(t, e.Save(ctx))
}

func TestEngine_ClearSaved(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	e := newEngine(t, packOf(alpha()), acheron.WithStore(store), acheron.WithStateKey("slot-1"))

	require.NoError(t, e.Choose(ctx, 1))
	keys, _ := store.List(ctx)
	assert.Equal(t, []string{"slot-1"}, keys)

	require.NoError(t, e.ClearSaved(ctx))
	keys, _ = store.List(ctx)
	assert.Empty(t, keys)
	assert.Equal(t, "Q3", e.State().CurrentNodeID, "memory session survives")

	resumed, err := e.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, "Q1", e.State().CurrentNodeID)
}

func TestEngine_HooksAndSubscribers(t *testing.T) {
	var events []string
	hooks := domain.LifecycleHooks{
		OnTransition:    func(ctx context.Context, e *domain.TransitionEvent) { events = append(events, "transition:"+e.ToNodeID) },
		OnOutcome:       func(ctx context.Context, e *domain.OutcomeEvent) { events = append(events, "outcome:"+string(e.Status)) },
		OnHint:          func(ctx context.Context, e *domain.HintEvent) { events = append(events, "hint") },
		OnReset:         func(ctx context.Context, e *domain.ResetEvent) { events = append(events, "reset") },
		OnMissionSwitch: func(ctx context.Context, e *domain.MissionEvent) { events = append(events, "switch:"+e.PreviousID) },
	}
	e := newEngine(t, packOf(alpha(), bravo()), acheron.WithLifecycleHooks(hooks), acheron.WithRandom(func(n int) int { return 0 }))
	ctx := context.Background()

	var nodes []string
	cancel := e.Subscribe(func(s acheron.Snapshot) { nodes = append(nodes, s.State.CurrentNodeID) })

	e.UseHint(ctx)
	require.NoError(t, e.Choose(ctx, 0))
	require.NoError(t, e.Reset(ctx, false))
	_, err := e.SwitchToRandomOther(ctx)
	require.NoError(t, err)
	cancel()
	require.NoError(t, e.Choose(ctx, 0))

	assert.Equal(t, []string{"hint", "transition:Q2", "outcome:won", "reset", "switch:alpha", "transition:B2", "outcome:won"}, events)
	assert.Equal(t, []string{"Q1", "Q2", "Q1", "B1"}, nodes)
}

func TestEngine_ReportAndBriefing(t *testing.T) {
	clock := newClock()
	s := alpha()
	s.MissionBrief = &domain.MissionBrief{Objective: "Prove access to the payroll share."}
	e := newEngine(t, packOf(s, bravo()), acheron.WithClock(clock.Now))
	ctx := context.Background()

	assert.Equal(t, "[1/2] Prove access to the payroll share. Authorized simulation only. Goal: achieve objective proof with minimal detection and no destructive actions.", e.Briefing())

	require.NoError(t, e.Choose(ctx, 1))
	clock.Advance(42 * time.Second)
	md := e.ExportReport()
	assert.True(t, strings.HasPrefix(md, "# Operation Alpha - Attack Path Report\n"))
	assert.Contains(t, md, "- Mission Pack: Red Week\n")
	assert.Contains(t, md, "- Status: PLAYING\n")
	assert.Contains(t, md, "- Time Elapsed: 42s\n")
	assert.Contains(t, md, "1. [Q1] Run OSINT -> Q3\n")
	assert.Contains(t, md, "- Stealth Operator\n")
	assert.Equal(t, e.ExportReport(), md, "report is deterministic")

	assert.Equal(t, "operation-alpha-path-"+itoa(clock.Now().UnixMilli())+".md", e.ReportFileName())
	assert.Equal(t, 3, e.MaxDepth())
}

func TestEngine_NoScenario(t *testing.T) {
	e := acheron.New()
	ctx := context.Background()

	assert.ErrorIs(t, e.ApplyChoice(ctx, domain.Choice{}), domain.ErrNoScenario)
	assert.ErrorIs(t, e.Reset(ctx, true), domain.ErrNoScenario)
	assert.False(t, e.UseHint(ctx))
	assert.Equal(t, 0, e.MaxDepth())
	assert.Empty(t, e.HintProbabilities())
	assert.ErrorIs(t, acheron.New().Load(ctx, domain.LoadResult{}), domain.ErrNoScenario)
}

func hub(id, left, right string) *domain.Scenario {
	return &domain.Scenario{
		ID:          id,
		Title:       id,
		StartNodeID: "H",
		Nodes: []domain.Node{
			{ID: "H", Text: "Jump host.", Choices: []domain.Choice{
				{Label: left, TargetNodeID: "L"},
				{Label: right, TargetNodeID: "R"},
			}},
			{ID: "L", Text: "File server.", Choices: []domain.Choice{{Label: "Back", TargetNodeID: "H"}}},
			{ID: "R", Text: "Print server.", Choices: []domain.Choice{{Label: "Back", TargetNodeID: "H"}}},
		},
	}
}

func TestEngine_UsedChoicesRefusedUntilExhausted(t *testing.T) {
	e := newEngine(t, packOf(hub("hub", "Left", "Right")))
	ctx := context.Background()

	snap := e.Snapshot()
	require.Len(t, snap.Choices, 2)
	assert.False(t, snap.Choices[0].Used)
	assert.False(t, snap.Exhausted)

	require.NoError(t, e.Choose(ctx, 0))
	require.NoError(t, e.Choose(ctx, 0))

	snap = e.Snapshot()
	assert.Equal(t, "H", snap.Node.ID)
	assert.True(t, snap.Choices[0].Used)
	assert.True(t, snap.Choices[0].Disabled)
	assert.False(t, snap.Choices[1].Used)
	assert.False(t, snap.Exhausted)

	before := e.State()
	assert.ErrorIs(t, e.Choose(ctx, 0), acheron.ErrChoiceUsed)
	assert.Equal(t, before, e.State(), "refused choice leaves the session untouched")

	require.NoError(t, e.Choose(ctx, 1))
	require.NoError(t, e.Choose(ctx, 0))

	snap = e.Snapshot()
	assert.True(t, snap.Exhausted)
	assert.True(t, snap.Choices[0].Used)
	assert.False(t, snap.Choices[0].Disabled)
	assert.False(t, snap.Choices[1].Disabled)
	require.NoError(t, e.Choose(ctx, 0), "every choice open again once all were taken")
	assert.Equal(t, "L", e.State().CurrentNodeID)

	require.NoError(t, e.Reset(ctx, true))
	assert.False(t, e.Snapshot().Choices[0].Used, "reset forgets used choices")
}

func TestEngine_ChooseRejectsAfterOutcome(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()

	require.NoError(t, e.Choose(ctx, 0))
	assert.ErrorIs(t, e.Choose(ctx, 0), domain.ErrSessionOver)
	assert.ErrorIs(t, e.Choose(ctx, 5), domain.ErrSessionOver)
}

func TestEngine_ChooseAgainstConcurrentSwitch(t *testing.T) {
	e := newEngine(t, packOf(hub("x", "Left", "Right"), hub("y", "Up", "Down")))
	ctx := context.Background()
	paths := map[string][]string{
		"x": {"[H] Left -> L", "[H] Right -> R", "[L] Back -> H", "[R] Back -> H"},
		"y": {"[H] Up -> L", "[H] Down -> R", "[L] Back -> H", "[R] Back -> H"},
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = e.Choose(ctx, i%2)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			id := "x"
			if i%2 == 0 {
				id = "y"
			}
			_, _ = e.SwitchTo(ctx, id)
		}
	}()
	wg.Wait()

	snap := e.Snapshot()
	for _, step := range snap.State.PathTaken {
		assert.Contains(t, paths[snap.Mission.ID], step, "path of %s holds a step of another mission", snap.Mission.ID)
	}
}

func TestEngine_NotifiesInChangeOrder(t *testing.T) {
	e := newEngine(t, packOf(alpha()))
	ctx := context.Background()

	var mu sync.Mutex
	var seen []int
	cancel := e.Subscribe(func(s acheron.Snapshot) {
		mu.Lock()
		seen = append(seen, s.State.Attempts)
		mu.Unlock()
	})
	defer cancel()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Reset(ctx, true))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i-1], seen[i], "snapshot delivered out of order")
	}
	assert.Equal(t, n+1, seen[len(seen)-1])
}
