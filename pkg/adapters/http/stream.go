package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/logging"
	"github.com/aretw0/acheron/pkg/domain"
)

// StreamManager fans state diffs out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger

	lastMu sync.Mutex
	last   *domain.SessionState
	stop   func()
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Follow broadcasts the diff of every engine snapshot against the previous one.
func (sm *StreamManager) Follow(engine Engine) {
	sm.lastMu.Lock()
	sm.last = engine.Snapshot().State
	sm.lastMu.Unlock()

	sm.stop = engine.Subscribe(func(snap acheron.Snapshot) {
		sm.lastMu.Lock()
		diff := domain.Diff(snap.Mission.ID, sm.last, snap.State)
		sm.last = snap.State
		sm.lastMu.Unlock()

		if diff == nil {
			return
		}
		if bytes, err := json.Marshal(diff); err == nil {
			sm.Broadcast(string(bytes))
		}
	})
}

// Close stops following the engine.
func (sm *StreamManager) Close() {
	if sm.stop != nil {
		sm.stop()
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("stream: broadcasting", "subscribers", len(sm.subscribers), "payload_size", len(msg))
	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("stream: client buffer full, dropping message")
		}
	}
}
