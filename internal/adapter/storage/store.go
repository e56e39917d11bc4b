package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrEmptyKey = errors.New("key must not be empty")
)

// KV is a namespaced byte store scoped to one local vault.
type KV interface {
	// Get returns ErrNotFound when key was never set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Watchable backends report keys changed outside this process.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

func CheckKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
