package acheron

import (
	"log/slog"
	"time"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/aretw0/acheron/pkg/ports"
	"github.com/aretw0/acheron/pkg/session"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore persists the session in store under the state key.
// Without a store (or WithSessionManager) the engine keeps state in memory only.
func WithStore(store ports.KVStore) Option {
	return func(e *Engine) {
		e.manager = session.NewManager(store)
	}
}

// WithSessionManager persists through an existing manager, for example one
// configured with a distributed locker.
func WithSessionManager(m *session.Manager) Option {
	return func(e *Engine) {
		e.manager = m
	}
}

// WithStateKey overrides the storage key of the saved record.
func WithStateKey(key string) Option {
	return func(e *Engine) {
		e.stateKey = key
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRandom replaces the source used to pick a random mission.
// intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(e *Engine) {
		e.intn = intn
	}
}

// WithHints sets the hint budget of fresh sessions (default domain.DefaultHints).
func WithHints(n int) Option {
	return func(e *Engine) {
		e.hints = n
	}
}
