package vault

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
)

// Query is the persisted free-text search string.
type Query struct {
	value *storage.Value[string]
}

func OpenQuery(kv storage.KV, n *storage.Notifier, log zerolog.Logger) (*Query, error) {
	v, err := storage.NewValue(kv, n, QueryKey, func() string { return "" }, log)
	if err != nil {
		return nil, err
	}
	return &Query{value: v}, nil
}

func (q *Query) Get(ctx context.Context) string {
	return q.value.Read(ctx)
}

func (q *Query) Set(ctx context.Context, s string) error {
	return q.value.Write(ctx, s)
}

func (q *Query) Subscribe() (<-chan storage.Change, func()) {
	return q.value.Subscribe()
}

func (q *Query) Follow(ctx context.Context, w storage.Watchable) error {
	return q.value.Follow(ctx, w, nil)
}

// ClearAll empties the collection and resets the query, the way the vault's
// clear-all action always has.
func ClearAll(ctx context.Context, s *Store, q *Query) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	return q.Set(ctx, "")
}
