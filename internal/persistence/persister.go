package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/aretw0/acheron/pkg/session"
)

// Persister saves and restores the single session record under one key.
type Persister struct {
	manager *session.Manager
	key     string
}

// NewPersister creates a Persister. An empty key means DefaultKey.
func NewPersister(manager *session.Manager, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{manager: manager, key: key}
}

// Key returns the storage key.
func (p *Persister) Key() string {
	return p.key
}

// Save writes the record.
func (p *Persister) Save(ctx context.Context, missionID string, state *domain.SessionState) error {
	data, err := Encode(NewRecord(missionID, state))
	if err != nil {
		return err
	}
	if err := p.manager.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load reads the record. It returns domain.ErrRecordNotFound when nothing is
// saved and domain.ErrCorruptRecord when the payload cannot be used.
func (p *Persister) Load(ctx context.Context) (*Record, error) {
	data, err := p.manager.Get(ctx, p.key)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return Decode(data)
}

// Clear removes the record.
func (p *Persister) Clear(ctx context.Context) error {
	if err := p.manager.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("failed to clear record: %w", err)
	}
	return nil
}
