package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"

	atotto "github.com/atotto/clipboard"

	"github.com/its-jojoo/ottervault/internal/core"
)

var ErrUnsupported = errors.New("no clipboard utility available on this system")

const DefaultInterval = 350 * time.Millisecond

// SystemWatcher polls the OS clipboard for text. The OS clipboard tools it
// relies on only expose plain text, so every event offers text/plain.
type SystemWatcher struct {
	Interval time.Duration

	readAll func() (string, error)

	mu   sync.Mutex
	last string
}

func NewSystemWatcher(interval time.Duration) *SystemWatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &SystemWatcher{Interval: interval, readAll: atotto.ReadAll}
	if atotto.Unsupported {
		w.readAll = func() (string, error) { return "", ErrUnsupported }
	}
	return w
}

func (w *SystemWatcher) readText() (string, error) {
	return w.readAll()
}

func (w *SystemWatcher) Read() (*core.PasteEvent, error) {
	txt, err := w.readText()
	if err != nil {
		return nil, err
	}
	return core.PlainText(txt), nil
}

func (w *SystemWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	// prime initial state so existing clipboard content is not captured
	txt, err := w.readText()
	if err != nil {
		return nil, err
	}
	w.setLast(txt)

	ch := make(chan struct{}, 1)
	t := time.NewTicker(w.Interval)

	go func() {
		defer t.Stop()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				txt, err := w.readText()
				if err != nil {
					continue
				}
				if txt != "" && w.setLast(txt) {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	return ch, nil
}

// setLast records txt and reports whether it differs from the previous value.
func (w *SystemWatcher) setLast(txt string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if txt == w.last {
		return false
	}
	w.last = txt
	return true
}
