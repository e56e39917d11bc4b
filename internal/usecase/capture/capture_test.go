package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
	"github.com/its-jojoo/ottervault/internal/adapter/storage/memory"
	"github.com/its-jojoo/ottervault/internal/core"
	"github.com/its-jojoo/ottervault/internal/usecase/vault"
)

func newStore(t *testing.T) *vault.Store {
	t.Helper()
	v, err := vault.NewItemsValue(memory.New(), storage.NewNotifier(), zerolog.Nop())
	require.NoError(t, err)
	return vault.Open(context.Background(), v, zerolog.Nop())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPaste_PlainText(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	it, saved, err := svc.ProcessText(context.Background(), "hello world")
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, core.ContentTypeText, it.Type)
	assert.Equal(t, "hello world", it.Content)
	assert.Equal(t, it.ID, st.Items()[0].ID)
}

func TestPaste_URIList(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	ev := core.NewPasteEvent().With(core.MIMEURIList, "https://example.com")
	it, err := svc.Paste(context.Background(), ev).Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, core.ContentTypeLink, it.Type)
	assert.Equal(t, "https://example.com", it.Content)
}

func TestPaste_HTMLWinsOverPlainText(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	ev := core.NewPasteEvent().
		With(core.MIMEPlain, "Hello").
		With(core.MIMEHTML, "<b>Hello</b>")
	p := svc.Paste(context.Background(), ev)
	assert.Equal(t, "html", p.Rule)

	it, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.ContentTypeArticle, it.Type)
	assert.Equal(t, "<b>Hello</b>", it.Content)
	assert.Equal(t, "**Hello**", it.Preview)
}

func TestPaste_PriorityOrder(t *testing.T) {
	full := func() *core.PasteEvent {
		return core.NewPasteEvent().
			With(core.MIMEHTML, "<p>x</p>").
			With(core.MIMEURIList, "https://x").
			With(core.MIMEPlain, "x").
			Attach(core.Blob{MIME: core.MIMEPNG, Data: []byte{1}})
	}
	rules := DefaultRules()

	assert.Equal(t, "html", Select(rules, full()).Name)

	ev := core.NewPasteEvent().With(core.MIMEURIList, "u").With(core.MIMEPlain, "x").
		Attach(core.Blob{MIME: core.MIMEJPEG, Data: []byte{1}})
	assert.Equal(t, "uri-list", Select(rules, ev).Name)

	ev = core.NewPasteEvent().With(core.MIMEPlain, "x").Attach(core.Blob{MIME: core.MIMEJPEG, Data: []byte{1}})
	assert.Equal(t, "image", Select(rules, ev).Name)

	assert.Equal(t, "plain", Select(rules, core.PlainText("x")).Name)
	assert.Nil(t, Select(rules, nil))
}

func TestPaste_ImageWithoutPayloadFallsThrough(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	ev := core.NewPasteEvent().With(core.MIMEPNG, "").With(core.MIMEPlain, "caption")
	p := svc.Paste(context.Background(), ev)
	assert.Equal(t, "plain", p.Rule)

	it, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "caption", it.Content)
}

func TestPaste_EmptyDeclines(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	_, saved, err := svc.ProcessText(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, saved)

	// Nothing offered at all.
	it, err := svc.Paste(context.Background(), core.NewPasteEvent()).Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, it)

	// A selected representation with empty content does not fall through.
	ev := core.NewPasteEvent().With(core.MIMEHTML, "").With(core.MIMEPlain, "text")
	it, err = svc.Paste(context.Background(), ev).Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, it)

	assert.Equal(t, 0, st.Len())
}

func TestPaste_Image(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	ev := core.NewPasteEvent().Attach(core.Blob{MIME: core.MIMEPNG, Data: pngBytes(t)})
	p := svc.Paste(context.Background(), ev)
	assert.Equal(t, "image", p.Rule)

	it, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, core.ContentTypeImage, it.Type)
	assert.True(t, strings.HasPrefix(it.Content, "data:image/png;base64,"))
	assert.Equal(t, 1, st.Len())
}

func TestPaste_ImageDecodeFailureProducesNothing(t *testing.T) {
	st := newStore(t)
	svc := New(st, nil, Config{}, zerolog.Nop())

	ev := core.NewPasteEvent().Attach(core.Blob{MIME: core.MIMEJPEG, Data: []byte("not a jpeg")})
	it, err := svc.Paste(context.Background(), ev).Wait(context.Background())
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.Equal(t, 0, st.Len())
}

// gatedRules blocks image decoding until gate is closed.
func gatedRules(gate <-chan struct{}) []Rule {
	rules := DefaultRules()
	for i := range rules {
		if rules[i].Name != "image" {
			continue
		}
		inner := rules[i].Extract
		rules[i].Extract = func(ctx context.Context, ev *core.PasteEvent) (string, error) {
			select {
			case <-gate:
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return inner(ctx, ev)
		}
	}
	return rules
}

func TestPaste_ImageInsertedInCompletionOrder(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	gate := make(chan struct{})
	svc := New(st, nil, Config{Rules: gatedRules(gate)}, zerolog.Nop())

	img := svc.Paste(ctx, core.NewPasteEvent().Attach(core.Blob{MIME: core.MIMEPNG, Data: pngBytes(t)}))
	select {
	case <-img.Done():
		t.Fatal("image paste resolved before decoding was released")
	default:
	}

	// A later text paste completes first.
	_, saved, err := svc.ProcessText(ctx, "later text")
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, 1, st.Len())

	close(gate)
	it, err := img.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, it)

	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, core.ContentTypeImage, items[0].Type, "image lands on top because it completed last")
	assert.Equal(t, "later text", items[1].Content)
}

func TestPaste_CancelledImageIsNotInserted(t *testing.T) {
	st := newStore(t)
	gate := make(chan struct{})
	svc := New(st, nil, Config{Rules: gatedRules(gate)}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	p := svc.Paste(ctx, core.NewPasteEvent().Attach(core.Blob{MIME: core.MIMEPNG, Data: pngBytes(t)}))
	cancel()

	_, err := p.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, svc.Drain(context.Background()))
	assert.Equal(t, 0, st.Len())
}

func TestPaste_WaitTimeoutDoesNotCancel(t *testing.T) {
	st := newStore(t)
	gate := make(chan struct{})
	svc := New(st, nil, Config{Rules: gatedRules(gate)}, zerolog.Nop())

	p := svc.Paste(context.Background(), core.NewPasteEvent().Attach(core.Blob{MIME: core.MIMEPNG, Data: pngBytes(t)}))

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Wait(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(gate)
	require.NoError(t, svc.Drain(context.Background()))
	assert.Equal(t, 1, st.Len())
}

func TestPaste_PrivacyIgnore(t *testing.T) {
	st := newStore(t)
	pf, err := core.NewPrivacyFilter([]string{"token="}, false)
	require.NoError(t, err)
	svc := New(st, pf, Config{}, zerolog.Nop())

	_, saved, err := svc.ProcessText(context.Background(), "my token=abc")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, st.Len())
}

func TestPaste_UsesClock(t *testing.T) {
	st := newStore(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := New(st, nil, Config{Now: func() time.Time { return at }}, zerolog.Nop())

	it, _, err := svc.ProcessText(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, it.CreatedAt.Equal(at))
	assert.Empty(t, it.Tags)
}
