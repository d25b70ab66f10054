package modelstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	pr := sampleProjection()
	require.NoError(t, Save(ctx, store, "pca.model", pr, CompressionLZ4))

	got, err := Load(ctx, store, "pca.model")
	require.NoError(t, err)
	assertEqualProjection(t, pr, got)
}

func TestLocalStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "missing.model")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing model is not an error.
	assert.NoError(t, store.Delete(ctx, "missing.model"))
}

func TestLocalStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "m", []byte("one")))
	require.NoError(t, store.Put(ctx, "m", []byte("two")))

	got, err := store.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "models/a", []byte("1")))
	require.NoError(t, store.Put(ctx, "models/b", []byte("2")))
	require.NoError(t, store.Put(ctx, "other", []byte("3")))

	names, err := store.List(ctx, "models/")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/a", "models/b"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/a", "models/b", "other"}, all)
}
