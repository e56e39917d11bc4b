package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
	"github.com/its-jojoo/ottervault/internal/adapter/storage/memory"
	"github.com/its-jojoo/ottervault/internal/core"
)

func openStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	v, err := NewItemsValue(kv, storage.NewNotifier(), zerolog.Nop())
	require.NoError(t, err)
	return Open(context.Background(), v, zerolog.Nop())
}

func item(content string) core.Item {
	return core.NewItem(core.ContentTypeText, content, time.Now())
}

func ids(items []core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestStore_AddPrepends(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())

	for _, c := range []string{"one", "two", "three"} {
		before := st.Len()
		it := item(c)
		require.NoError(t, st.Add(ctx, it))
		require.Equal(t, before+1, st.Len())
		assert.Equal(t, it.ID, st.Items()[0].ID)
	}

	got := st.Items()
	assert.Equal(t, "three", got[0].Content)
	assert.Equal(t, "one", got[2].Content)
}

func TestStore_AddDoesNotDedupeContent(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())

	require.NoError(t, st.Add(ctx, item("same")))
	require.NoError(t, st.Add(ctx, item("same")))
	assert.Equal(t, 2, st.Len())
}

func TestStore_AddRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())

	bad := item("x")
	bad.Type = "url"
	assert.ErrorIs(t, st.Add(ctx, bad), core.ErrInvalidType)

	noID := item("x")
	noID.ID = ""
	assert.ErrorIs(t, st.Add(ctx, noID), core.ErrMissingID)
	assert.Equal(t, 0, st.Len())
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())
	require.NoError(t, st.Add(ctx, item("a")))
	require.NoError(t, st.Add(ctx, item("b")))

	before := st.Items()
	version := st.Version()

	require.NoError(t, st.Remove(ctx, "does-not-exist"))
	assert.Equal(t, before, st.Items())
	assert.Equal(t, version, st.Version())
}

func TestStore_RemoveByID(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())
	a, b, c := item("a"), item("b"), item("c")
	for _, it := range []core.Item{a, b, c} {
		require.NoError(t, st.Add(ctx, it))
	}

	require.NoError(t, st.Remove(ctx, b.ID))
	got := st.Items()
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
	_, ok := st.Get(b.ID)
	assert.False(t, ok)
}

func TestStore_ClearAndPersistence(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	st := openStore(t, kv)
	require.NoError(t, st.Add(ctx, item("a")))
	require.NoError(t, st.Add(ctx, item("b")))

	reopened := openStore(t, kv)
	assert.Equal(t, ids(st.Items()), ids(reopened.Items()))

	require.NoError(t, st.Clear(ctx))
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, 0, openStore(t, kv).Len())
}

func TestStore_CorruptCollectionLoadsEmpty(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), ItemsKey, []byte(`[{"id": 1, "type": }`)))

	st := openStore(t, kv)
	assert.Equal(t, 0, st.Len())
	assert.NotNil(t, st.Items())
}

func TestStore_InvalidCollectionLoadsEmpty(t *testing.T) {
	const created = `"createdAt":"2024-03-09T14:30:15Z"`
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown type", `[{"id":"a","type":"video","content":"x","tags":[],` + created + `}]`},
		{"missing id", `[{"type":"text","content":"x","tags":[],` + created + `}]`},
		{"duplicate id", `[{"id":"a","type":"text","content":"x","tags":[],` + created + `},` +
			`{"id":"a","type":"link","content":"y","tags":[],` + created + `}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.New()
			require.NoError(t, kv.Set(context.Background(), ItemsKey, []byte(tt.raw)))

			st := openStore(t, kv)
			assert.Equal(t, 0, st.Len())
			assert.NotNil(t, st.Items())
		})
	}
}

func TestStore_ValidCollectionLoads(t *testing.T) {
	kv := memory.New()
	raw := `[{"id":"a","type":"article","content":"<p>x</p>","tags":["t"],"createdAt":"2024-03-09T14:30:15Z"},` +
		`{"id":"b","type":"image","content":"data:image/png;base64,AA==","tags":[],"createdAt":"2024-03-09T14:30:15Z"}]`
	require.NoError(t, kv.Set(context.Background(), ItemsKey, []byte(raw)))

	st := openStore(t, kv)
	assert.Equal(t, []string{"a", "b"}, ids(st.Items()))
}

func TestStore_AddRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())
	it := item("once")
	require.NoError(t, st.Add(ctx, it))

	assert.ErrorIs(t, st.Add(ctx, it), core.ErrDuplicateID)
	assert.Equal(t, 1, st.Len())
}

type flakyKV struct {
	storage.KV
	fail bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("write refused")
	}
	return f.KV.Set(ctx, key, value)
}

func TestStore_FailedWriteLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KV: memory.New()}
	st := openStore(t, kv)
	keep := item("keep")
	require.NoError(t, st.Add(ctx, keep))

	kv.fail = true
	assert.Error(t, st.Add(ctx, item("lost")))
	assert.Error(t, st.Remove(ctx, keep.ID))
	assert.Error(t, st.Clear(ctx))

	got := st.Items()
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)

	kv.fail = false
	assert.Equal(t, ids(got), ids(openStore(t, kv).Items()), "memory and backend must agree")
}

func TestStore_SubscribeSeesMutations(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, memory.New())
	ch, cancel := st.Subscribe()
	defer cancel()

	require.NoError(t, st.Add(ctx, item("a")))
	require.NoError(t, st.Clear(ctx))

	for i := 0; i < 2; i++ {
		select {
		case c := <-ch:
			assert.Equal(t, ItemsKey, c.Key)
		case <-time.After(time.Second):
			t.Fatalf("missing change %d", i)
		}
	}
}

func TestClearAllResetsQuery(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	st := openStore(t, kv)
	q, err := OpenQuery(kv, storage.NewNotifier(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, st.Add(ctx, item("a")))
	require.NoError(t, q.Set(ctx, "a"))

	require.NoError(t, ClearAll(ctx, st, q))
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, "", q.Get(ctx))
}

type chanWatch chan string

func (c chanWatch) Watch(context.Context) (<-chan string, error) { return c, nil }

func TestStore_FollowReloadsOnExternalChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := memory.New()
	st := openStore(t, kv)
	other := openStore(t, kv)

	w := make(chanWatch, 1)
	require.NoError(t, st.Follow(ctx, w))

	require.NoError(t, other.Add(ctx, item("from elsewhere")))
	w <- ItemsKey

	assert.Eventually(t, func() bool { return st.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStore_FollowSurvivesLocalWriteBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := memory.New()
	st := openStore(t, kv)

	// A subscriber that never reads must not cost the store a reload.
	_, unsubscribe := st.Subscribe()
	defer unsubscribe()

	w := make(chanWatch, 1)
	require.NoError(t, st.Follow(ctx, w))

	for i := 0; i < 40; i++ {
		require.NoError(t, st.Add(ctx, item("local")))
	}

	other := openStore(t, kv)
	external := item("from elsewhere")
	require.NoError(t, other.Add(ctx, external))
	w <- ItemsKey

	require.Eventually(t, func() bool { return st.Len() == 41 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, st.Add(ctx, item("after")))
	_, ok := openStore(t, kv).Get(external.ID)
	assert.True(t, ok, "a later local write must keep the external edit")
}

func TestStore_FollowReloadsBeforeNotifying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv := memory.New()
	st := openStore(t, kv)
	other := openStore(t, kv)

	changes, unsubscribe := st.Subscribe()
	defer unsubscribe()

	w := make(chanWatch, 1)
	require.NoError(t, st.Follow(ctx, w))

	require.NoError(t, other.Add(ctx, item("one")))
	require.NoError(t, other.Add(ctx, item("two")))
	w <- ItemsKey

	select {
	case c := <-changes:
		require.True(t, c.External)
		assert.Equal(t, 2, st.Len(), "store must be reloaded when the change arrives")
	case <-time.After(2 * time.Second):
		t.Fatal("expected external change")
	}
}
