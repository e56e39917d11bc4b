package capture

import (
	"context"

	"github.com/its-jojoo/ottervault/internal/core"
)

// Pending is the outcome of one paste. Synchronous pastes are resolved
// before Paste returns; image pastes resolve when decoding and insertion
// finish. A nil item with a nil error means the paste was declined.
type Pending struct {
	Rule string

	done chan struct{}
	item *core.Item
	err  error
}

func newPending(rule string) *Pending {
	return &Pending{Rule: rule, done: make(chan struct{})}
}

func resolved(rule string, item *core.Item, err error) *Pending {
	p := newPending(rule)
	p.resolve(item, err)
	return p
}

func (p *Pending) resolve(item *core.Item, err error) {
	p.item = item
	p.err = err
	close(p.done)
}

func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the paste resolves or ctx is done. Giving up on the wait
// does not cancel the paste.
func (p *Pending) Wait(ctx context.Context) (*core.Item, error) {
	select {
	case <-p.done:
		return p.item, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
