package capture

import (
	"context"
	"fmt"

	"github.com/its-jojoo/ottervault/internal/core"
)

// Rule turns one representation of a paste into item content.
type Rule struct {
	Name  string
	Type  core.ContentType
	Match func(ev *core.PasteEvent) bool

	// Extract returns the item content. An empty result declines the paste.
	Extract func(ctx context.Context, ev *core.PasteEvent) (string, error)

	// Async rules run Extract off the caller's goroutine and insert on
	// completion.
	Async bool
}

// DefaultRules is the representation priority: first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "html",
			Type:    core.ContentTypeArticle,
			Match:   offers(core.MIMEHTML),
			Extract: verbatim(core.MIMEHTML),
		},
		{
			Name:    "uri-list",
			Type:    core.ContentTypeLink,
			Match:   offers(core.MIMEURIList),
			Extract: verbatim(core.MIMEURIList),
		},
		{
			Name: "image",
			Type: core.ContentTypeImage,
			Match: func(ev *core.PasteEvent) bool {
				if !ev.HasAny(core.ImageMIMEs...) {
					return false
				}
				_, ok := ev.File(core.ImageMIMEs...)
				return ok
			},
			Extract: decodeImage,
			Async:   true,
		},
		{
			Name:    "plain",
			Type:    core.ContentTypeText,
			Match:   func(*core.PasteEvent) bool { return true },
			Extract: verbatim(core.MIMEPlain),
		},
	}
}

func offers(mime string) func(*core.PasteEvent) bool {
	return func(ev *core.PasteEvent) bool { return ev.Has(mime) }
}

func verbatim(mime string) func(context.Context, *core.PasteEvent) (string, error) {
	return func(_ context.Context, ev *core.PasteEvent) (string, error) {
		return ev.Get(mime), nil
	}
}

// decodeImage validates the attached bitmap and encodes it as a data URI.
func decodeImage(ctx context.Context, ev *core.PasteEvent) (string, error) {
	blob, ok := ev.File(core.ImageMIMEs...)
	if !ok {
		return "", fmt.Errorf("%w: no payload attached", core.ErrDecodeImage)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime, err := core.DetectImage(blob.Data)
	if err != nil {
		return "", err
	}
	return core.DataURI(mime, blob.Data), nil
}

// Select returns the first rule matching ev, or nil.
func Select(rules []Rule, ev *core.PasteEvent) *Rule {
	if ev == nil {
		return nil
	}
	for i := range rules {
		if rules[i].Match(ev) {
			return &rules[i]
		}
	}
	return nil
}
