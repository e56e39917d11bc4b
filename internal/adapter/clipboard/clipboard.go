package clipboard

import (
	"context"

	"github.com/its-jojoo/ottervault/internal/core"
)

// Watcher emits a signal when the clipboard *may* have changed.
// Implementations can poll or subscribe to OS events.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
	Read() (*core.PasteEvent, error)
}
