package search

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/its-jojoo/ottervault/internal/core"
)

// Filter keeps the items whose content, any tag, or type name contains q,
// case-insensitively. An empty q returns items unchanged. Order is kept.
func Filter(items []core.Item, q string) []core.Item {
	if q == "" {
		return items
	}
	q = strings.ToLower(q)

	out := make([]core.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}

// Matches expects q already lower-cased.
func Matches(it core.Item, q string) bool {
	if strings.Contains(strings.ToLower(it.Content), q) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(it.Type)), q)
}

type Source interface {
	Items() []core.Item
	Version() uint64
}

type QuerySource interface {
	Get(ctx context.Context) string
}

type Options struct {
	Limit int // 0 = no limit
}

// Service derives the visible subset of a collection. Results are memoized
// per query for the current collection version only; a new version drops
// every older entry.
type Service struct {
	src   Source
	query QuerySource
	memo  *cache.Cache

	mu      sync.Mutex
	version uint64
}

func New(src Source, query QuerySource) *Service {
	return &Service{
		src:   src,
		query: query,
		memo:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Visible filters with the persisted query.
func (s *Service) Visible(ctx context.Context, opt Options) []core.Item {
	q := ""
	if s.query != nil {
		q = s.query.Get(ctx)
	}
	return s.Query(q, opt)
}

// Query filters with an explicit query.
func (s *Service) Query(q string, opt Options) []core.Item {
	version := s.src.Version()
	s.mu.Lock()
	if version != s.version {
		s.memo.Flush()
		s.version = version
	}
	s.mu.Unlock()

	key := strconv.FormatUint(version, 10) + "\x00" + q

	var out []core.Item
	if v, ok := s.memo.Get(key); ok {
		out = v.([]core.Item)
	} else {
		out = Filter(s.src.Items(), q)
		s.memo.SetDefault(key, out)
	}

	if opt.Limit > 0 && opt.Limit < len(out) {
		out = out[:opt.Limit]
	}
	res := make([]core.Item, len(out))
	copy(res, out)
	return res
}
