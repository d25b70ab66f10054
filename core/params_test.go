package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsClone(t *testing.T) {
	p := Params{KeyTargetDimension: 3}
	c := p.Clone()
	c[KeyTargetDimension] = 5
	c[KeySeed] = int64(7)

	got, err := p.Int(KeyTargetDimension)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.False(t, p.Has(KeySeed))
}

func TestParamsSetDefault(t *testing.T) {
	p := Params{KeyTargetDimension: 7}
	p.SetDefault(KeyTargetDimension, 2)
	p.SetDefault(KeyEigenshift, 1e-9)

	got, err := p.Int(KeyTargetDimension)
	require.NoError(t, err)
	assert.Equal(t, 7, got, "caller-provided value must never be overwritten")

	shift, err := p.Scalar(KeyEigenshift)
	require.NoError(t, err)
	assert.Equal(t, 1e-9, shift)
}

func TestParamsMissing(t *testing.T) {
	p := Params{}

	_, err := p.Get(KeyNumNeighbors)
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = p.Method()
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestParamsScalar(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		err   error
	}{
		{name: "float64", value: 1.5, want: 1.5},
		{name: "float32", value: float32(0.5), want: 0.5},
		{name: "int widened", value: 3, want: 3},
		{name: "int64 widened", value: int64(4), want: 4},
		{name: "string rejected", value: "1.5", err: ErrWrongParameterType},
		{name: "bool rejected", value: true, err: ErrWrongParameterType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{KeyPerplexity: tt.value}
			got, err := p.Scalar(KeyPerplexity)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParamsInt(t *testing.T) {
	p := Params{KeyNumNeighbors: int64(12)}
	got, err := p.Int(KeyNumNeighbors)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	p[KeyNumNeighbors] = 1.5
	_, err = p.Int(KeyNumNeighbors)
	assert.ErrorIs(t, err, ErrWrongParameterType)
}

func TestParamsMethodWrongType(t *testing.T) {
	p := Params{KeyMethod: "pca"}
	_, err := p.Method()
	assert.ErrorIs(t, err, ErrWrongParameterType)
}

func TestParamsSeedDefault(t *testing.T) {
	seed, err := Params{}.Seed()
	require.NoError(t, err)
	assert.Equal(t, int64(42), seed)

	seed, err = Params{KeySeed: 7}.Seed()
	require.NoError(t, err)
	assert.Equal(t, int64(7), seed)
}

func TestParamsHooks(t *testing.T) {
	p := Params{
		KeyProgress: func(float64) {},
		KeyCancel:   func() bool { return false },
	}
	progress, err := p.Progress()
	require.NoError(t, err)
	assert.NotNil(t, progress)

	cancel, err := p.Cancel()
	require.NoError(t, err)
	assert.NotNil(t, cancel)

	none := Params{}
	progress, err = none.Progress()
	require.NoError(t, err)
	assert.Nil(t, progress)

	bad := Params{KeyProgress: "not a func"}
	_, err = bad.Progress()
	assert.ErrorIs(t, err, ErrWrongParameterType)
}
