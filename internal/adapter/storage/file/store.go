// Package file stores each key as a JSON file in one directory and reports
// edits made by other processes through fsnotify.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
)

const ext = ".json"

type Store struct {
	dir string
	log zerolog.Logger

	mu   sync.Mutex
	last map[string][]byte // bytes this process last wrote, per key
}

func Open(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &Store{
		dir:  dir,
		log:  log.With().Str("component", "file-store").Logger(),
		last: make(map[string][]byte),
	}, nil
}

func (s *Store) Dir() string  { return s.dir }
func (s *Store) Close() error { return nil }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+ext)
}

func keyFromPath(p string) (string, bool) {
	name := filepath.Base(p)
	if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, ext) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, ext))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	return data, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path(key), value, 0o644); err != nil {
		return err
	}
	s.last[key] = append([]byte(nil), value...)
	return nil
}

// Watch emits the key of every file changed by someone other than this
// store. The channel closes when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	out := make(chan string, 8)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				key, ok := keyFromPath(ev.Name)
				if !ok || s.ownWrite(key) {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Error().Err(err).Msg("fsnotify error")
			}
		}
	}()
	return out, nil
}

func (s *Store) ownWrite(key string) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.last[key]
	return ok && bytes.Equal(last, data)
}
