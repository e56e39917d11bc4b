// Package vault owns the item collection and the persisted search query.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
	"github.com/its-jojoo/ottervault/internal/core"
)

// Fixed persistence keys.
const (
	ItemsKey = "content-vault-items"
	QueryKey = "content-vault-search"
)

// Store is the newest-first item collection. Every mutation is written
// through to the backing Value before it becomes visible in memory.
type Store struct {
	value *storage.Value[[]core.Item]
	log   zerolog.Logger

	mu      sync.RWMutex
	items   []core.Item
	version uint64
}

func emptyItems() []core.Item { return []core.Item{} }

// NewItemsValue binds the items key of kv. A stored collection that breaks
// an item invariant loads as empty.
func NewItemsValue(kv storage.KV, n *storage.Notifier, log zerolog.Logger) (*storage.Value[[]core.Item], error) {
	v, err := storage.NewValue(kv, n, ItemsKey, emptyItems, log)
	if err != nil {
		return nil, err
	}
	return v.Validate(validItems), nil
}

// validItems requires a known type and a non-empty id on every item, and
// no id twice.
func validItems(items []core.Item) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return fmt.Errorf("item %d: %w", i, core.ErrMissingID)
		}
		if !it.Type.Valid() {
			return fmt.Errorf("item %s: %w: %q", it.ID, core.ErrInvalidType, it.Type)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %s: %w", it.ID, core.ErrDuplicateID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// Open loads the persisted collection. Corrupt or invalid data loads as
// empty.
func Open(ctx context.Context, value *storage.Value[[]core.Item], log zerolog.Logger) *Store {
	s := &Store{
		value: value,
		log:   log.With().Str("component", "vault").Logger(),
	}
	s.items = clone(value.Read(ctx))
	s.version = 1
	return s
}

func clone(items []core.Item) []core.Item {
	out := make([]core.Item, len(items))
	copy(out, items)
	return out
}

// Items returns a copy of the collection, newest first.
func (s *Store) Items() []core.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every change to the collection.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns the item with id.
func (s *Store) Get(id string) (core.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return core.Item{}, false
}

// Add prepends item. Content is not deduplicated.
func (s *Store) Add(ctx context.Context, item core.Item) error {
	if item.ID == "" {
		return core.ErrMissingID
	}
	if !item.Type.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidType, item.Type)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			return fmt.Errorf("%w: %s", core.ErrDuplicateID, item.ID)
		}
	}

	next := make([]core.Item, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug().Str("id", item.ID).Str("type", item.Type.String()).Msg("item added")
	return nil
}

// Remove drops the item with id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]core.Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Debug().Str("id", id).Msg("item removed")
	return nil
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, emptyItems()); err != nil {
		return err
	}
	s.log.Debug().Msg("vault cleared")
	return nil
}

// commit must be called with mu held.
func (s *Store) commit(ctx context.Context, next []core.Item) error {
	if err := s.value.Write(ctx, next); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	s.items = next
	s.version++
	return nil
}

// Reload re-reads the backend, picking up writes from other processes.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value.Invalidate()
	s.items = clone(s.value.Read(ctx))
	s.version++
}

// Subscribe delivers a change notification after every persisted write of
// the collection, including writes reported by a watched backend.
func (s *Store) Subscribe() (<-chan storage.Change, func()) {
	return s.value.Subscribe()
}

// Follow keeps the store in sync with external edits reported by w. The
// reload happens before subscribers hear of the change.
func (s *Store) Follow(ctx context.Context, w storage.Watchable) error {
	return s.value.Follow(ctx, w, func(ctx context.Context) {
		s.Reload(ctx)
		s.log.Info().Int("items", s.Len()).Msg("reloaded after external change")
	})
}
