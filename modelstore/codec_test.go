package modelstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

func sampleProjection() *core.Projection {
	return &core.Projection{
		Matrix: mat.NewDense(4, 2, []float64{
			0.1, 0.2,
			0.3, 0.4,
			0.5, 0.6,
			0.7, 0.8,
		}),
		Mean: mat.NewVecDense(4, []float64{1, 2, 3, 4}),
	}
}

func assertEqualProjection(t *testing.T, want, got *core.Projection) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, mat.EqualApprox(want.Matrix, got.Matrix, 1e-15))
	assert.True(t, mat.EqualApprox(want.Mean, got.Mean, 1e-15))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Compression
	}{
		{name: "none", c: CompressionNone},
		{name: "lz4", c: CompressionLZ4},
		{name: "zstd", c: CompressionZSTD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := sampleProjection()
			data, err := Encode(pr, tt.c)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assertEqualProjection(t, pr, got)
		})
	}
}

func TestEncodeNilProjection(t *testing.T) {
	_, err := Encode(nil, CompressionNone)
	assert.Error(t, err)
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := Decode([]byte("not a model"))
	assert.Error(t, err)

	data, err := Encode(sampleProjection(), CompressionNone)
	require.NoError(t, err)
	_, err = Decode(data[:len(data)-4])
	assert.Error(t, err)
}

func TestSaveLoadMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	pr := sampleProjection()

	require.NoError(t, Save(ctx, store, "pca.model", pr, CompressionZSTD))

	got, err := Load(ctx, store, "pca.model")
	require.NoError(t, err)
	assertEqualProjection(t, pr, got)

	_, err = Load(ctx, store, "missing.model")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "models/a", []byte("1")))
	require.NoError(t, store.Put(ctx, "models/b", []byte("2")))
	require.NoError(t, store.Put(ctx, "other/c", []byte("3")))

	names, err := store.List(ctx, "models/")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/a", "models/b"}, names)

	require.NoError(t, store.Delete(ctx, "models/a"))
	names, err = store.List(ctx, "models/")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/b"}, names)
}
