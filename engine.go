package acheron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/acheron/internal/catalog"
	"github.com/aretw0/acheron/internal/loader"
	"github.com/aretw0/acheron/internal/logging"
	"github.com/aretw0/acheron/internal/persistence"
	"github.com/aretw0/acheron/internal/report"
	"github.com/aretw0/acheron/internal/runtime"
	"github.com/aretw0/acheron/internal/validator"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/aretw0/acheron/pkg/session"
)

var (
	// ErrChoiceOutOfRange is returned by Choose for an index the current node does not have.
	ErrChoiceOutOfRange = errors.New("out of range")
	// ErrChoiceUsed is returned by Choose for a choice already taken from the
	// current node while other choices there are still untried.
	ErrChoiceUsed = errors.New("already taken")
)

const briefingSuffix = "Authorized simulation only. Goal: achieve objective proof with minimal detection and no destructive actions."

// Engine is the high-level entry point of the library.
// It owns the mission catalog, the active scenario index and the session state.
// All methods are safe for concurrent use; mutations are applied and persisted one at a time.
type Engine struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	index   *runtime.Index
	state   *domain.SessionState
	lastErr error

	manager   *session.Manager
	stateKey  string
	persister *persistence.Persister

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
	intn   func(int) int
	hints  int

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	// seq numbers changes under mu; notifyMu orders their delivery.
	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64
}

// New creates an engine without a scenario. Call Load before anything else.
func New(opts ...Option) *Engine {
	e := &Engine{
		hints: domain.DefaultHints,
		now:   time.Now,
		subs:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.manager != nil {
		e.persister = persistence.NewPersister(e.manager, e.stateKey)
	}
	return e
}

// Open loads the scenario document at path and restores any saved session.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	res, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	e := New(opts...)
	if err := e.Load(ctx, res); err != nil {
		return nil, err
	}
	return e, nil
}

// Load activates the loader result and resumes the saved session when one
// matches. Persistence problems fall back to a fresh session and are only
// reported through LastError, the logger and OnPersistError.
func (e *Engine) Load(ctx context.Context, res domain.LoadResult) error {
	var copts []catalog.Option
	if e.intn != nil {
		copts = append(copts, catalog.WithPicker(e.intn))
	}
	cat, err := catalog.New(res, copts...)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.catalog = cat
	e.activateLocked(cat.Active())
	e.state = runtime.Restart(e.index, nil, false, e.now(), e.hints)
	e.lastErr = nil
	e.mu.Unlock()

	if _, err := e.Restore(ctx); err != nil {
		e.reportPersist(ctx, err)
	}
	return nil
}

// activateLocked rebuilds the index for entry and flags authoring problems.
func (e *Engine) activateLocked(entry catalog.Entry) {
	e.index = runtime.NewIndex(entry.Scenario)
	log := e.logger.With("mission", entry.Key)
	for _, issue := range validator.Validate(entry.Scenario) {
		switch issue.Kind {
		case validator.KindDeadEnd, validator.KindMissingStart, validator.KindDangling:
			log.Warn("scenario issue", "kind", issue.Kind, "node_id", issue.NodeID, "detail", issue.Detail)
		default:
			log.Debug("scenario issue", "kind", issue.Kind, "node_id", issue.NodeID, "detail", issue.Detail)
		}
	}
}

func (e *Engine) missionKeyLocked() string {
	if e.catalog == nil {
		return ""
	}
	return e.catalog.Active().Key
}

// persistLocked writes the current record. Errors are returned for reporting, never fatal.
func (e *Engine) persistLocked(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	return e.persister.Save(ctx, e.missionKeyLocked(), e.state)
}

func (e *Engine) reportPersist(ctx context.Context, err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	e.lastErr = err
	mission := e.missionKeyLocked()
	e.mu.Unlock()

	e.logger.Warn("persistence failed", "mission", mission, "err", err)
	if e.hooks.OnPersistError != nil {
		e.hooks.OnPersistError(ctx, err)
	}
}

func (e *Engine) base(t domain.EventType, mission string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, MissionID: mission}
}

// CurrentNode returns a copy of the node the session sits on.
func (e *Engine) CurrentNode() (*domain.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentNodeLocked()
}

func (e *Engine) currentNodeLocked() (*domain.Node, bool) {
	if e.index == nil || e.state == nil {
		return nil, false
	}
	n, ok := e.index.Lookup(e.state.CurrentNodeID)
	if !ok {
		return nil, false
	}
	c := n.Clone()
	return &c, true
}

// State returns a copy of the session state, nil before Load.
func (e *Engine) State() *domain.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Scenario returns the active scenario.
func (e *Engine) Scenario() (*domain.Scenario, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return nil, domain.ErrNoScenario
	}
	return e.index.Scenario(), nil
}

// LastError returns the most recent invalid-branch or persistence error.
// It is cleared by the next successful transition, reset or mission switch.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ApplyChoice takes choice from the current node.
//
// When the target does not exist, a *domain.InvalidBranchError is returned and
// the session is untouched. Once the session is won or failed, domain.ErrSessionOver
// is returned until Reset. Without a current node the call does nothing.
// The choice is not checked against the node's choices; see Choose.
func (e *Engine) ApplyChoice(ctx context.Context, choice domain.Choice) error {
	return e.apply(ctx, func(*domain.Node) (domain.Choice, error) {
		return choice, nil
	})
}

// Choose takes the i-th choice (0-based) of the current node. A choice already
// taken from this node is refused with ErrChoiceUsed until every choice of the
// node has been taken.
func (e *Engine) Choose(ctx context.Context, i int) error {
	return e.apply(ctx, func(node *domain.Node) (domain.Choice, error) {
		if node == nil {
			return domain.Choice{}, domain.ErrNoScenario
		}
		if e.state.Status.IsTerminal() {
			return domain.Choice{}, domain.ErrSessionOver
		}
		if i < 0 || i >= len(node.Choices) {
			return domain.Choice{}, fmt.Errorf("choice %d %w (node %s has %d)", i+1, ErrChoiceOutOfRange, node.ID, len(node.Choices))
		}
		if cs := e.state.ChoiceStates(node)[i]; cs.Disabled {
			return domain.Choice{}, fmt.Errorf("choice %d %w at node %s", i+1, ErrChoiceUsed, node.ID)
		}
		return node.Choices[i], nil
	})
}

// apply resolves the choice and commits the transition under one lock hold,
// so a concurrent reset or mission switch cannot slip in between. pick gets
// the current node, nil when there is none.
func (e *Engine) apply(ctx context.Context, pick func(*domain.Node) (domain.Choice, error)) error {
	e.mu.Lock()
	if e.index == nil || e.state == nil {
		e.mu.Unlock()
		return domain.ErrNoScenario
	}

	var node *domain.Node
	if n, ok := e.index.Lookup(e.state.CurrentNodeID); ok {
		node = n
	}
	choice, err := pick(node)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	next, step, err := runtime.Apply(e.index, e.state, choice, e.now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBranch) {
			e.lastErr = err
		}
		snap := e.changedLocked()
		e.mu.Unlock()
		e.notify(snap)
		return err
	}
	if step == nil {
		e.mu.Unlock()
		return nil
	}

	e.state = next
	e.lastErr = nil
	mission := e.missionKeyLocked()
	perr := e.persistLocked(ctx)
	snap := e.changedLocked()
	e.mu.Unlock()

	if step.Evaluation.Inferred {
		e.logger.Warn("outcome inferred from node text", "mission", mission, "node_id", step.To, "status", step.Evaluation.Status)
	}
	if step.Evaluation.DeadEnd {
		e.logger.Warn("reached dead-end node", "mission", mission, "node_id", step.To)
	}

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase:  e.base(domain.EventTransition, mission),
			FromNodeID: step.From,
			ToNodeID:   step.To,
			Label:      step.Label,
			Inferred:   step.Evaluation.Inferred,
		})
	}
	if step.Evaluation.Status.IsTerminal() && e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: e.base(domain.EventOutcome, mission),
			NodeID:    step.To,
			Status:    step.Evaluation.Status,
			Result:    step.Node.Result,
		})
	}
	e.reportPersist(ctx, perr)
	e.notify(snap)
	return nil
}

// UseHint spends one hint and reports whether one was granted.
func (e *Engine) UseHint(ctx context.Context) bool {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return false
	}
	next, granted := runtime.ConsumeHint(e.state)
	var perr error
	if granted {
		e.state = next
		perr = e.persistLocked(ctx)
	}
	mission := e.missionKeyLocked()
	remaining := e.state.HintsRemaining
	snap := e.changedLocked()
	e.mu.Unlock()

	if e.hooks.OnHint != nil {
		e.hooks.OnHint(ctx, &domain.HintEvent{
			EventBase: e.base(domain.EventHint, mission),
			Granted:   granted,
			Remaining: remaining,
		})
	}
	if granted {
		e.reportPersist(ctx, perr)
		e.notify(snap)
	}
	return granted
}

// Reset restarts the active mission. A full reset counts one more attempt;
// a fresh reset starts over at attempt one.
func (e *Engine) Reset(ctx context.Context, full bool) error {
	e.mu.Lock()
	if e.index == nil {
		e.mu.Unlock()
		return domain.ErrNoScenario
	}
	e.state = runtime.Restart(e.index, e.state, full, e.now(), e.hints)
	e.lastErr = nil
	mission := e.missionKeyLocked()
	attempts := e.state.Attempts
	perr := e.persistLocked(ctx)
	snap := e.changedLocked()
	e.mu.Unlock()

	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.ResetEvent{
			EventBase: e.base(domain.EventReset, mission),
			Full:      full,
			Attempts:  attempts,
		})
	}
	e.reportPersist(ctx, perr)
	e.notify(snap)
	return nil
}

// SwitchToRandomOther activates a uniformly chosen mission other than the
// active one (the same one in a single-mission catalog) with a fresh session.
func (e *Engine) SwitchToRandomOther(ctx context.Context) (domain.MissionInfo, error) {
	return e.switchMission(ctx, func(c *catalog.Catalog) (catalog.Entry, error) {
		return c.SwitchToRandomOther(), nil
	})
}

// SwitchTo activates the mission with the given identity key with a fresh session.
func (e *Engine) SwitchTo(ctx context.Context, id string) (domain.MissionInfo, error) {
	return e.switchMission(ctx, func(c *catalog.Catalog) (catalog.Entry, error) {
		return c.SwitchTo(id)
	})
}

func (e *Engine) switchMission(ctx context.Context, pick func(*catalog.Catalog) (catalog.Entry, error)) (domain.MissionInfo, error) {
	e.mu.Lock()
	if e.catalog == nil {
		e.mu.Unlock()
		return domain.MissionInfo{}, domain.ErrNoScenario
	}
	previous := e.missionKeyLocked()
	entry, err := pick(e.catalog)
	if err != nil {
		e.mu.Unlock()
		return domain.MissionInfo{}, err
	}
	e.activateLocked(entry)
	e.state = runtime.Restart(e.index, nil, false, e.now(), e.hints)
	e.lastErr = nil
	info := e.catalog.Info()
	perr := e.persistLocked(ctx)
	snap := e.changedLocked()
	e.mu.Unlock()

	if e.hooks.OnMissionSwitch != nil {
		e.hooks.OnMissionSwitch(ctx, &domain.MissionEvent{
			EventBase:  e.base(domain.EventMissionSwitch, entry.Key),
			PreviousID: previous,
		})
	}
	e.reportPersist(ctx, perr)
	e.notify(snap)
	return info, nil
}

// MissionInfo describes the active mission's slot in the catalog.
func (e *Engine) MissionInfo() domain.MissionInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.catalog == nil {
		return domain.MissionInfo{}
	}
	return e.catalog.Info()
}

// Missions lists every loaded mission in load order.
func (e *Engine) Missions() []domain.MissionInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.catalog == nil {
		return nil
	}
	active := e.catalog.Info()
	entries := e.catalog.Entries()
	out := make([]domain.MissionInfo, len(entries))
	for i, entry := range entries {
		out[i] = domain.MissionInfo{
			ID:              entry.Key,
			Title:           entry.Scenario.Title,
			Count:           len(entries),
			Index:           i,
			IsPack:          active.IsPack,
			PackTitle:       active.PackTitle,
			PackDescription: active.PackDescription,
		}
	}
	return out
}

// Statistics summarizes the session at the current instant.
func (e *Engine) Statistics() domain.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statisticsLocked(e.now())
}

func (e *Engine) statisticsLocked(now time.Time) domain.Statistics {
	if e.index == nil || e.state == nil {
		return domain.Statistics{PathTaken: []string{}, Achievements: []string{}, FlagsCaptured: []string{}}
	}
	current, _ := e.index.Lookup(e.state.CurrentNodeID)
	return domain.Statistics{
		TotalNodes:     len(e.index.Scenario().Nodes),
		TimeElapsed:    int(e.state.Elapsed(now) / time.Second),
		PathComplexity: runtime.Complexity(e.state),
		MaxDepth:       runtime.MaxDepth(e.index),
		Attempts:       e.state.Attempts,
		HintsUsed:      e.state.HintsUsed,
		PathTaken:      append([]string{}, e.state.PathTaken...),
		Achievements:   runtime.Achievements(e.state, current, now),
		FlagsCaptured:  runtime.FlagsCaptured(e.index, e.state),
	}
}

// HintProbabilities scores the choices of the current node as percentages.
func (e *Engine) HintProbabilities() []domain.ChoiceProbability {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil || e.state == nil {
		return []domain.ChoiceProbability{}
	}
	node, ok := e.index.Lookup(e.state.CurrentNodeID)
	if !ok {
		return []domain.ChoiceProbability{}
	}
	return runtime.Probabilities(e.index, node)
}

// MaxDepth estimates the longest path of the active scenario, in nodes.
func (e *Engine) MaxDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return runtime.MaxDepth(e.index)
}

// ExportReport renders the markdown attack path report.
func (e *Engine) ExportReport() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil || e.state == nil {
		return ""
	}
	now := e.now()
	var result domain.Result
	if n, ok := e.index.Lookup(e.state.CurrentNodeID); ok {
		result = n.Result
	}
	info := e.catalog.Info()
	return report.Markdown(report.Input{
		Title:         e.index.Scenario().Title,
		PackTitle:     info.PackTitle,
		Mission:       info,
		State:         e.state,
		CurrentResult: result,
		Elapsed:       e.state.Elapsed(now),
		Achievements:  e.statisticsLocked(now).Achievements,
	})
}

// ReportFileName suggests a file name for ExportReport output.
func (e *Engine) ReportFileName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	title := ""
	if e.index != nil {
		title = e.index.Scenario().Title
	}
	return report.FileName(title, e.now())
}

// Briefing returns the one-line mission briefing shown before play.
func (e *Engine) Briefing() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return ""
	}
	s := e.index.Scenario()
	brief := strings.TrimSpace(s.Description)
	if s.MissionBrief != nil && s.MissionBrief.Objective != "" {
		brief = s.MissionBrief.Objective
	}
	parts := []string{"[" + e.catalog.Info().Slot() + "]"}
	if brief != "" {
		parts = append(parts, brief)
	}
	return strings.Join(append(parts, briefingSuffix), " ")
}

// Save writes the current session explicitly.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return domain.ErrNoScenario
	}
	if e.persister == nil {
		return nil
	}
	return e.persister.Save(ctx, e.missionKeyLocked(), e.state)
}

// Restore replaces the session with the saved one and reports whether a saved
// session was resumed. Whenever it returns false the engine holds a fresh
// session of the active mission. A missing record is not an error; storage
// failures and corrupt records are returned for reporting only.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.index == nil {
		e.mu.Unlock()
		return false, domain.ErrNoScenario
	}
	if e.persister == nil {
		e.mu.Unlock()
		return false, nil
	}

	resumed, err := e.restoreLocked(ctx)
	snap := e.changedLocked()
	e.mu.Unlock()

	e.notify(snap)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return false, nil
	}
	return resumed, err
}

func (e *Engine) restoreLocked(ctx context.Context) (bool, error) {
	fresh := func() {
		e.state = runtime.Restart(e.index, nil, false, e.now(), e.hints)
	}

	rec, err := e.persister.Load(ctx)
	if err != nil {
		fresh()
		if errors.Is(err, domain.ErrCorruptRecord) {
			e.logger.Warn("discarding unreadable save", "key", e.persister.Key(), "err", err)
		}
		return false, err
	}

	if id := rec.MissionID(); id != "" && id != e.missionKeyLocked() {
		if entry, ok := e.catalog.Find(id); ok {
			_, _ = e.catalog.SwitchTo(id)
			e.activateLocked(entry)
		}
	}

	if !runtime.Resolves(e.index, rec.State) {
		e.logger.Warn("discarding save for unknown node", "mission", e.missionKeyLocked(), "node_id", rec.State.CurrentNodeID)
		fresh()
		return false, nil
	}
	e.state = rec.State
	e.lastErr = nil
	return true, nil
}

// ClearSaved deletes the saved record. The in-memory session is kept.
func (e *Engine) ClearSaved(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	return e.persister.Clear(ctx)
}
