package acheron

import "github.com/aretw0/acheron/pkg/domain"

// Snapshot is a consistent, caller-owned copy of everything a view needs.
type Snapshot struct {
	Mission domain.MissionInfo   `json:"mission"`
	Node    *domain.Node         `json:"node,omitempty"`
	State   *domain.SessionState `json:"state"`
	Error   string               `json:"error,omitempty"`

	// Choices mirrors Node.Choices with the used and disabled flags of the
	// session. Exhausted is set once every choice of the node has been taken.
	Choices   []domain.ChoiceState `json:"choices,omitempty"`
	Exhausted bool                 `json:"exhausted"`

	seq uint64
}

// Snapshot reads the current state. It never mutates anything.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{State: e.state.Clone()}
	if e.catalog != nil {
		s.Mission = e.catalog.Info()
	}
	if n, ok := e.currentNodeLocked(); ok {
		s.Node = n
		if e.state != nil {
			s.Choices = e.state.ChoiceStates(n)
			s.Exhausted = e.state.Exhausted(n)
		}
	}
	if e.lastErr != nil {
		s.Error = e.lastErr.Error()
	}
	return s
}

// changedLocked numbers a change and returns its snapshot for notify.
func (e *Engine) changedLocked() Snapshot {
	e.seq++
	s := e.snapshotLocked()
	s.seq = e.seq
	return s
}

// Subscribe registers fn to receive a snapshot after every change.
// Callbacks run synchronously on a mutating goroutine, after the engine lock
// is released, one at a time and in the order the changes were made. A
// snapshot already superseded by a delivered one is skipped. Callbacks must
// not mutate the engine. The returned func unsubscribes.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify(s Snapshot) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	if s.seq <= e.delivered {
		return
	}
	e.delivered = s.seq

	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
