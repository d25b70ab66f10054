package core

import "fmt"

// Key identifies a configuration parameter. The key space is enumerated, not
// open-ended: the engine and the method implementations only ever read the
// keys defined here.
type Key int

const (
	// KeyMethod selects the dimensionality-reduction method. Required; no
	// default. Value type: Method.
	KeyMethod Key = iota
	// KeyTargetDimension is the dimensionality of the produced embedding.
	// Default 2. Value type: int.
	KeyTargetDimension
	// KeyOutputColumns, when true, returns the embedding with samples as
	// columns instead of rows. Default false. Value type: bool.
	KeyOutputColumns
	// KeyEigenshift is the diagonal shift applied to ill-conditioned matrices
	// before factorization. Default 1e-9. Value type: float64.
	KeyEigenshift
	// KeyTraceShift is the relative regularization added to local Gram
	// matrices by the kernel LLE family. Default 1e-3. Value type: float64.
	KeyTraceShift
	// KeyCheckConnectivity enables the neighbor-graph connectivity check for
	// local methods. Default true. Value type: bool.
	KeyCheckConnectivity
	// KeyEigenBackend selects the eigen-solver backend. Defaults to the
	// iterative backend. Value type: eigen.Backend.
	KeyEigenBackend
	// KeyNeighborsBackend selects the neighbor-search backend. Defaults to
	// the vantage-point tree. Value type: neighbors.Backend.
	KeyNeighborsBackend
	// KeyNumNeighbors is the neighborhood size used by local methods.
	// Required by those methods; no default. Value type: int.
	KeyNumNeighbors
	// KeyLandmarkRatio is the fraction of samples used as landmarks by the
	// landmark methods. Default 0.2, valid range (0, 1]. Value type: float64.
	KeyLandmarkRatio
	// KeyPerplexity is the t-SNE perplexity. Default 30. Value type: float64.
	KeyPerplexity
	// KeyGaussianKernelWidth is the heat-kernel width used by Laplacian
	// eigenmaps, locality preserving projections and diffusion maps. When
	// absent it is estimated as the mean squared neighbor distance.
	// Value type: float64.
	KeyGaussianKernelWidth
	// KeyDiffusionTimesteps is the diffusion-map power parameter. Default 1.
	// Value type: int.
	KeyDiffusionTimesteps
	// KeyMaxIterations bounds iterative methods (SPE, t-SNE, factor
	// analysis). Defaults are method-specific. Value type: int.
	KeyMaxIterations
	// KeyTolerance is the convergence tolerance of iterative methods.
	// Defaults are method-specific. Value type: float64.
	KeyTolerance
	// KeySPEGlobalStrategy selects the global (true) or local (false) update
	// strategy of stochastic proximity embedding. Default true.
	// Value type: bool.
	KeySPEGlobalStrategy
	// KeySPENumUpdates is the number of point updates per SPE iteration.
	// Default 100. Value type: int.
	KeySPENumUpdates
	// KeySeed seeds the stochastic methods. Default 42. Value type: int64.
	KeySeed
	// KeyProgress is the optional progress-reporting hook. Value type:
	// ProgressFunc.
	KeyProgress
	// KeyCancel is the optional cancellation-poll hook. Value type:
	// CancelFunc.
	KeyCancel
)

var keyNames = map[Key]string{
	KeyMethod:              "method",
	KeyTargetDimension:     "target dimension",
	KeyOutputColumns:       "output columns",
	KeyEigenshift:          "eigenshift",
	KeyTraceShift:          "trace shift",
	KeyCheckConnectivity:   "check connectivity",
	KeyEigenBackend:        "eigen backend",
	KeyNeighborsBackend:    "neighbors backend",
	KeyNumNeighbors:        "number of neighbors",
	KeyLandmarkRatio:       "landmark ratio",
	KeyPerplexity:          "perplexity",
	KeyGaussianKernelWidth: "gaussian kernel width",
	KeyDiffusionTimesteps:  "diffusion timesteps",
	KeyMaxIterations:       "max iterations",
	KeyTolerance:           "tolerance",
	KeySPEGlobalStrategy:   "spe global strategy",
	KeySPENumUpdates:       "spe updates per iteration",
	KeySeed:                "seed",
	KeyProgress:            "progress hook",
	KeyCancel:              "cancel hook",
}

// String returns the parameter name used in error messages.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Params is the configuration store: a mapping from the enumerated key space
// to dynamically-typed values. Type mismatches are detected at first use by
// the typed getters, not at insertion. The engine operates on a clone, so a
// caller-supplied Params is never mutated and is safe to reuse across calls.
type Params map[Key]any

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether k is present.
func (p Params) Has(k Key) bool {
	_, ok := p[k]
	return ok
}

// SetDefault inserts v under k only if k is absent. Caller-provided values
// are never overwritten.
func (p Params) SetDefault(k Key, v any) {
	if _, ok := p[k]; !ok {
		p[k] = v
	}
}

// Get returns the raw value stored under k, or ErrMissingParameter.
func (p Params) Get(k Key) (any, error) {
	v, ok := p[k]
	if !ok {
		return nil, fmt.Errorf("%s was not specified: %w", k, ErrMissingParameter)
	}
	return v, nil
}

// Scalar returns the value under k converted to float64. Integer values are
// widened; anything else fails with ErrWrongParameterType.
func (p Params) Scalar(k Key) (float64, error) {
	v, err := p.Get(k)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%s is not a scalar: %w", k, ErrWrongParameterType)
}

// ScalarDefault is Scalar with a fallback for an absent key.
func (p Params) ScalarDefault(k Key, def float64) (float64, error) {
	if !p.Has(k) {
		return def, nil
	}
	return p.Scalar(k)
}

// Int returns the value under k as an int.
func (p Params) Int(k Key) (int, error) {
	v, err := p.Get(k)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	}
	return 0, fmt.Errorf("%s is not an integer: %w", k, ErrWrongParameterType)
}

// IntDefault is Int with a fallback for an absent key.
func (p Params) IntDefault(k Key, def int) (int, error) {
	if !p.Has(k) {
		return def, nil
	}
	return p.Int(k)
}

// Bool returns the value under k as a bool.
func (p Params) Bool(k Key) (bool, error) {
	v, err := p.Get(k)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s is not a boolean: %w", k, ErrWrongParameterType)
	}
	return b, nil
}

// Seed returns the value under KeySeed as an int64.
func (p Params) Seed() (int64, error) {
	if !p.Has(KeySeed) {
		return 42, nil
	}
	v, _ := p.Get(KeySeed)
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	}
	return 0, fmt.Errorf("%s is not an integer seed: %w", KeySeed, ErrWrongParameterType)
}

// Method returns the method identifier stored under KeyMethod. An absent key
// is a missing parameter; a present value of any other type is a wrong
// parameter type.
func (p Params) Method() (Method, error) {
	v, err := p.Get(KeyMethod)
	if err != nil {
		return 0, err
	}
	m, ok := v.(Method)
	if !ok {
		return 0, fmt.Errorf("%s is not a method identifier: %w", KeyMethod, ErrWrongParameterType)
	}
	return m, nil
}

// Progress returns the optional progress hook, or nil when absent.
func (p Params) Progress() (ProgressFunc, error) {
	if !p.Has(KeyProgress) {
		return nil, nil
	}
	v, _ := p.Get(KeyProgress)
	switch f := v.(type) {
	case ProgressFunc:
		return f, nil
	case func(float64):
		return f, nil
	}
	return nil, fmt.Errorf("%s is not a progress function: %w", KeyProgress, ErrWrongParameterType)
}

// Cancel returns the optional cancellation hook, or nil when absent.
func (p Params) Cancel() (CancelFunc, error) {
	if !p.Has(KeyCancel) {
		return nil, nil
	}
	v, _ := p.Get(KeyCancel)
	switch f := v.(type) {
	case CancelFunc:
		return f, nil
	case func() bool:
		return f, nil
	}
	return nil, fmt.Errorf("%s is not a cancel function: %w", KeyCancel, ErrWrongParameterType)
}
