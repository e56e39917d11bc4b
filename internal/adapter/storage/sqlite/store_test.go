package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
)

func TestSQLiteStore_SetGet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "test.db")

	st, err := Open(db)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	_, err = st.Get(ctx, "content-vault-items")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, st.Set(ctx, "content-vault-items", []byte(`[]`)))
	require.NoError(t, st.Set(ctx, "content-vault-items", []byte(`[{"id":"1"}]`)))

	got, err := st.Get(ctx, "content-vault-items")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	at, err := st.UpdatedAt(ctx, "content-vault-items")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), at, time.Minute)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	st, err := Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, "content-vault-search", []byte(`"cat"`)))
	require.NoError(t, st.Close())

	st, err = Open(db)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Get(ctx, "content-vault-search")
	require.NoError(t, err)
	assert.Equal(t, `"cat"`, string(got))
}

func TestSQLiteStore_EmptyKey(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()

	assert.ErrorIs(t, st.Set(context.Background(), "", []byte("x")), storage.ErrEmptyKey)
}
