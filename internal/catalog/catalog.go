// Package catalog holds the loaded missions and tracks which one is active.
package catalog

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/acheron/pkg/domain"
)

// Entry pairs a scenario with its identity key, computed once at load time.
type Entry struct {
	Key      string
	Scenario *domain.Scenario
}

// Picker returns a uniformly distributed int in [0, n).
type Picker func(n int) int

// Catalog is the ordered set of missions plus the active selection.
// It is not safe for concurrent use; the engine serializes access.
type Catalog struct {
	entries   []Entry
	active    int
	isPack    bool
	packTitle string
	packDesc  string
	pick      Picker
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPicker replaces the random source used by SwitchToRandomOther.
func WithPicker(p Picker) Option {
	return func(c *Catalog) {
		c.pick = p
	}
}

// New builds a catalog from a loader result. The active scenario is matched by
// identity key; when it is not part of All it is prepended.
func New(res domain.LoadResult, opts ...Option) (*Catalog, error) {
	if res.Active == nil && len(res.All) == 0 {
		return nil, domain.ErrNoScenario
	}

	c := &Catalog{
		isPack:    res.IsPack,
		packTitle: res.PackTitle,
		packDesc:  res.PackDescription,
		pick:      rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, s := range res.All {
		if s != nil {
			c.entries = append(c.entries, Entry{Key: domain.IdentityKey(s), Scenario: s})
		}
	}

	active := res.Active
	if active == nil {
		active = c.entries[0].Scenario
	}
	key := domain.IdentityKey(active)
	c.active = c.indexOf(key)
	if c.active < 0 {
		c.entries = append([]Entry{{Key: key, Scenario: active}}, c.entries...)
		c.active = 0
	}
	return c, nil
}

func (c *Catalog) indexOf(key string) int {
	for i, e := range c.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Active returns the active entry.
func (c *Catalog) Active() Entry {
	return c.entries[c.active]
}

// Find looks an entry up by identity key.
func (c *Catalog) Find(key string) (Entry, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// SwitchTo makes the mission with the given key active.
func (c *Catalog) SwitchTo(key string) (Entry, error) {
	i := c.indexOf(key)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %s", domain.ErrMissionNotFound, key)
	}
	c.active = i
	return c.entries[i], nil
}

// SwitchToRandomOther picks uniformly among missions other than the active one.
// A single-mission catalog re-selects its only mission.
func (c *Catalog) SwitchToRandomOther() Entry {
	activeKey := c.entries[c.active].Key

	pool := make([]int, 0, len(c.entries))
	for i, e := range c.entries {
		if e.Key != activeKey {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		for i := range c.entries {
			pool = append(pool, i)
		}
	}

	c.active = pool[c.pick(len(pool))]
	return c.entries[c.active]
}

// IndexOfActive returns the load-order position of the active mission,
// clamped to [0, Len()-1].
func (c *Catalog) IndexOfActive() int {
	switch {
	case c.active < 0:
		return 0
	case c.active >= len(c.entries):
		return len(c.entries) - 1
	}
	return c.active
}

// Len returns the number of missions.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the missions in load order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Info describes the active mission's slot.
func (c *Catalog) Info() domain.MissionInfo {
	active := c.Active()
	return domain.MissionInfo{
		ID:              active.Key,
		Title:           active.Scenario.Title,
		Count:           len(c.entries),
		Index:           c.IndexOfActive(),
		IsPack:          c.isPack,
		PackTitle:       c.packTitle,
		PackDescription: c.packDesc,
	}
}
