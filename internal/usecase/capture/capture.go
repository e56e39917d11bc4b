package capture

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/core"
)

// ItemStore receives the items produced by pastes.
type ItemStore interface {
	Add(ctx context.Context, item core.Item) error
}

type Config struct {
	// Rules overrides DefaultRules.
	Rules []Rule
	Now   func() time.Time
}

type Service struct {
	store   ItemStore
	privacy *core.PrivacyFilter
	rules   []Rule
	now     func() time.Time
	log     zerolog.Logger

	inflight sync.WaitGroup
}

func New(store ItemStore, privacy *core.PrivacyFilter, cfg Config, log zerolog.Logger) *Service {
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:   store,
		privacy: privacy,
		rules:   cfg.Rules,
		now:     cfg.Now,
		log:     log.With().Str("component", "capture").Logger(),
	}
}

// Paste interprets ev and inserts at most one item. The image path resolves
// asynchronously, so an image can land after a later, faster paste.
// Cancelling ctx before an async paste inserts abandons it.
func (s *Service) Paste(ctx context.Context, ev *core.PasteEvent) *Pending {
	rule := Select(s.rules, ev)
	if rule == nil {
		s.log.Debug().Msg("paste offers no usable representation")
		return resolved("", nil, nil)
	}

	if !rule.Async {
		item, err := s.complete(ctx, rule, ev)
		return resolved(rule.Name, item, err)
	}

	p := newPending(rule.Name)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		p.resolve(s.complete(ctx, rule, ev))
	}()
	return p
}

func (s *Service) complete(ctx context.Context, rule *Rule, ev *core.PasteEvent) (*core.Item, error) {
	log := s.log.With().Str("rule", rule.Name).Logger()

	content, err := rule.Extract(ctx, ev)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Msg("paste declined")
		return nil, nil
	}
	if content == "" {
		log.Debug().Msg("empty paste declined")
		return nil, nil
	}
	if rule.Type != core.ContentTypeImage && s.privacy.ShouldIgnore(content) {
		log.Debug().Msg("paste matched an ignore pattern")
		return nil, nil
	}

	item := core.NewItem(rule.Type, content, s.now())
	if rule.Type == core.ContentTypeArticle {
		item.Preview = core.ArticlePreview(content)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, item); err != nil {
		return nil, err
	}
	log.Info().Str("id", item.ID).Int("bytes", len(content)).Msg("captured")
	return &item, nil
}

// ProcessText captures raw as a plain-text paste and waits for it.
func (s *Service) ProcessText(ctx context.Context, raw string) (*core.Item, bool, error) {
	item, err := s.Paste(ctx, core.PlainText(raw)).Wait(ctx)
	if err != nil {
		return nil, false, err
	}
	return item, item != nil, nil
}

// Drain waits for in-flight async pastes.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
