package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Value binds one key of a KV to a JSON-encoded Go value. Reads are served
// from an in-memory mirror once loaded; writes go through to the backend
// synchronously and are announced on the notifier.
type Value[T any] struct {
	kv       KV
	key      string
	def      func() T
	validate func(T) error
	notifier *Notifier
	log      zerolog.Logger

	mu     sync.Mutex
	mirror *T
}

// NewValue binds key. def builds the fallback returned when the key is
// absent or its stored bytes cannot be decoded.
func NewValue[T any](kv KV, notifier *Notifier, key string, def func() T, log zerolog.Logger) (*Value[T], error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Value[T]{
		kv:       kv,
		key:      key,
		def:      def,
		notifier: notifier,
		log:      log.With().Str("key", key).Logger(),
	}, nil
}

func (v *Value[T]) Key() string { return v.key }

// Validate installs a check run on every decoded value. Data that decodes
// but fails the check is treated like corrupt bytes. Call before the first
// Read.
func (v *Value[T]) Validate(fn func(T) error) *Value[T] {
	v.mu.Lock()
	v.validate = fn
	v.mu.Unlock()
	return v
}

// Read never fails: missing, unreadable or corrupt data yields the default.
func (v *Value[T]) Read(ctx context.Context) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mirror != nil {
		return *v.mirror
	}

	out := v.load(ctx)
	v.mirror = &out
	return out
}

func (v *Value[T]) load(ctx context.Context) T {
	raw, err := v.kv.Get(ctx, v.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			v.log.Warn().Err(err).Msg("read failed, using default")
		}
		return v.def()
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		v.log.Warn().Err(err).Int("bytes", len(raw)).Msg("stored value is corrupt, using default")
		return v.def()
	}
	if v.validate != nil {
		if err := v.validate(out); err != nil {
			v.log.Warn().Err(err).Msg("stored value is incompatible, using default")
			return v.def()
		}
	}
	return out
}

// Write persists val and then updates the mirror. On error neither the
// backend contract nor the mirror has changed from the caller's view.
func (v *Value[T]) Write(ctx context.Context, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.key, err)
	}

	v.mu.Lock()
	if err := v.kv.Set(ctx, v.key, raw); err != nil {
		v.mu.Unlock()
		return fmt.Errorf("persist %s: %w", v.key, err)
	}
	v.mirror = &val
	v.mu.Unlock()

	v.notifier.Publish(Change{Key: v.key})
	return nil
}

// Invalidate drops the mirror so the next Read goes to the backend.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	v.mirror = nil
	v.mu.Unlock()
}

// Subscribe delivers a Change every time this key is written.
func (v *Value[T]) Subscribe() (<-chan Change, func()) {
	return v.notifier.Subscribe(v.key)
}

// Follow invalidates the mirror whenever w reports an external change to
// this key. onChange, when set, runs next, and only then is the change
// published, so subscribers observe state that already includes the edit.
// Following stops when w closes its channel, which it does once ctx is done.
func (v *Value[T]) Follow(ctx context.Context, w Watchable, onChange func(context.Context)) error {
	keys, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for key := range keys {
			if key != v.key {
				continue
			}
			v.Invalidate()
			v.log.Debug().Msg("external change")
			if onChange != nil {
				onChange(ctx)
			}
			v.notifier.Publish(Change{Key: key, External: true})
		}
	}()
	return nil
}
