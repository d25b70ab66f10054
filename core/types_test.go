package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCallbacksValidate(t *testing.T) {
	kernel := KernelFunc[int](func(a, b int) float64 { return 0 })
	distance := DistanceFunc[int](func(a, b int) float64 { return 0 })
	features := NewFeatureFunc(1, func(d int, dst *mat.VecDense) {})

	tests := []struct {
		name   string
		method Method
		cb     Callbacks[int]
		err    error
	}{
		{name: "kernel method without kernel", method: KernelPCA, cb: Callbacks[int]{Distance: distance}, err: ErrUnsupportedMethod},
		{name: "kernel method with kernel", method: KernelPCA, cb: Callbacks[int]{Kernel: kernel}},
		{name: "distance method without distance", method: Isomap, cb: Callbacks[int]{Kernel: kernel}, err: ErrUnsupportedMethod},
		{name: "distance method with distance", method: MultidimensionalScaling, cb: Callbacks[int]{Distance: distance}},
		{name: "feature method without features", method: PCA, cb: Callbacks[int]{Kernel: kernel}, err: ErrUnsupportedMethod},
		{name: "feature method with features", method: PCA, cb: Callbacks[int]{Features: features}},
		{name: "linear method needs kernel and features", method: NeighborhoodPreservingEmbedding, cb: Callbacks[int]{Features: features}, err: ErrUnsupportedMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cb.Validate(tt.method)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "pca", PCA.String())
	assert.Equal(t, "Method(99)", Method(99).String())
	assert.True(t, PCA.Known())
	assert.False(t, Method(99).Known())
}

func TestProjectionApply(t *testing.T) {
	// Project 3-D onto the first two axes after centering.
	p := &Projection{
		Matrix: mat.NewDense(3, 2, []float64{
			1, 0,
			0, 1,
			0, 0,
		}),
		Mean: mat.NewVecDense(3, []float64{1, 1, 1}),
	}

	x := mat.NewVecDense(3, []float64{2, 3, 4})
	dst := mat.NewVecDense(2, nil)
	require.NoError(t, p.Apply(x, dst))
	assert.InDelta(t, 1.0, dst.AtVec(0), 1e-12)
	assert.InDelta(t, 2.0, dst.AtVec(1), 1e-12)
}

func TestProjectionApplyDimensionMismatch(t *testing.T) {
	p := &Projection{
		Matrix: mat.NewDense(3, 2, nil),
		Mean:   mat.NewVecDense(3, nil),
	}

	err := p.Apply(mat.NewVecDense(4, nil), mat.NewVecDense(2, nil))
	assert.ErrorIs(t, err, ErrWrongParameterValue)

	err = p.Apply(mat.NewVecDense(3, nil), mat.NewVecDense(3, nil))
	assert.ErrorIs(t, err, ErrWrongParameterValue)
}

func TestSliceDataset(t *testing.T) {
	ds := SliceDataset[string]{"a", "b", "c"}
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "b", ds.At(1))
}
