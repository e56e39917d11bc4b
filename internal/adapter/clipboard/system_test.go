package clipboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/ottervault/internal/core"
)

type fakeClipboard struct {
	mu  sync.Mutex
	txt string
}

func (f *fakeClipboard) set(s string) {
	f.mu.Lock()
	f.txt = s
	f.mu.Unlock()
}

func (f *fakeClipboard) read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txt, nil
}

func TestSystemWatcher_SignalsOnChangeOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cb := &fakeClipboard{txt: "already there"}
	w := NewSystemWatcher(5 * time.Millisecond)
	w.readAll = cb.read

	events, err := w.Watch(ctx)
	require.NoError(t, err)

	select {
	case <-events:
		t.Fatal("initial clipboard content must not signal")
	case <-time.After(30 * time.Millisecond):
	}

	cb.set("fresh copy")
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("expected change signal")
	}

	ev, err := w.Read()
	require.NoError(t, err)
	assert.Equal(t, "fresh copy", ev.Get(core.MIMEPlain))
	assert.Equal(t, []string{core.MIMEPlain}, ev.Types())
}
