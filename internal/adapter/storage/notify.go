package storage

import (
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Change reports that the value stored under Key was replaced.
type Change struct {
	Key      string    `json:"key"`
	External bool      `json:"external"`
	At       time.Time `json:"at"`
}

const subscriberBuffer = 16

type subscriber struct {
	pattern string
	exact   bool
	ch      chan Change
}

func (s subscriber) matches(key string) bool {
	if s.exact {
		return s.pattern == key
	}
	ok, err := doublestar.Match(s.pattern, key)
	return err == nil && ok
}

// Notifier fans key changes out to subscribers. Sends never block: a
// subscriber whose buffer is full misses the change.
type Notifier struct {
	mu   sync.Mutex
	seq  int
	subs map[int]subscriber
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]subscriber)}
}

// Subscribe registers interest in keys matching a doublestar pattern.
// An invalid pattern matches only the identical key. The returned cancel
// func closes the channel.
func (n *Notifier) Subscribe(pattern string) (<-chan Change, func()) {
	exact := !doublestar.ValidatePattern(pattern)

	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	id := n.seq
	ch := make(chan Change, subscriberBuffer)
	n.subs[id] = subscriber{pattern: pattern, exact: exact, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

func (n *Notifier) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.subs {
		if !s.matches(c.Key) {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
