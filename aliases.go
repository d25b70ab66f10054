package manifold

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// The engine's vocabulary lives in the core package so the subpackages can
// share it without cycles. The aliases below re-export it so callers only
// ever import the root package.

type (
	// Method identifies a dimensionality-reduction algorithm.
	Method = core.Method
	// Key identifies a configuration parameter.
	Key = core.Key
	// Params is the configuration store passed to Embed.
	Params = core.Params
	// Result is what Embed returns.
	Result = core.Result
	// Projection is the out-of-sample artifact of linear methods.
	Projection = core.Projection
	// ProgressFunc receives progress values in [0, 1].
	ProgressFunc = core.ProgressFunc
	// CancelFunc is polled at checkpoints; returning true aborts the run.
	CancelFunc = core.CancelFunc
)

type (
	// Dataset is a finite, position-addressable sequence of data handles.
	Dataset[D any] = core.Dataset[D]
	// SliceDataset adapts a slice to the Dataset interface.
	SliceDataset[D any] = core.SliceDataset[D]
	// Callbacks bundles the capability-tagged callbacks.
	Callbacks[D any] = core.Callbacks[D]
	// KernelCallback tags a callback with the kernel capability.
	KernelCallback[D any] = core.KernelCallback[D]
	// DistanceCallback tags a callback with the distance capability.
	DistanceCallback[D any] = core.DistanceCallback[D]
	// FeatureCallback tags a callback with the feature-vector capability.
	FeatureCallback[D any] = core.FeatureCallback[D]
	// KernelFunc tags a plain function with the kernel capability.
	KernelFunc[D any] = core.KernelFunc[D]
	// DistanceFunc tags a plain function with the distance capability.
	DistanceFunc[D any] = core.DistanceFunc[D]
	// FeatureFunc tags a plain function with the feature-vector capability.
	FeatureFunc[D any] = core.FeatureFunc[D]
)

// NewFeatureFunc wraps fn as a FeatureCallback producing dim-dimensional
// feature vectors.
func NewFeatureFunc[D any](dim int, fn func(d D, dst *mat.VecDense)) FeatureFunc[D] {
	return core.NewFeatureFunc(dim, fn)
}

// Method identifiers.
const (
	KernelLocallyLinearEmbedding            = core.KernelLocallyLinearEmbedding
	KernelLocalTangentSpaceAlignment        = core.KernelLocalTangentSpaceAlignment
	DiffusionMap                            = core.DiffusionMap
	MultidimensionalScaling                 = core.MultidimensionalScaling
	LandmarkMultidimensionalScaling         = core.LandmarkMultidimensionalScaling
	Isomap                                  = core.Isomap
	LandmarkIsomap                          = core.LandmarkIsomap
	NeighborhoodPreservingEmbedding         = core.NeighborhoodPreservingEmbedding
	LinearLocalTangentSpaceAlignment        = core.LinearLocalTangentSpaceAlignment
	HessianLocallyLinearEmbedding           = core.HessianLocallyLinearEmbedding
	LaplacianEigenmaps                      = core.LaplacianEigenmaps
	LocalityPreservingProjections           = core.LocalityPreservingProjections
	PCA                                     = core.PCA
	KernelPCA                               = core.KernelPCA
	RandomProjection                        = core.RandomProjection
	StochasticProximityEmbedding            = core.StochasticProximityEmbedding
	PassThru                                = core.PassThru
	FactorAnalysis                          = core.FactorAnalysis
	TDistributedStochasticNeighborEmbedding = core.TDistributedStochasticNeighborEmbedding
)

// Parameter keys.
const (
	KeyMethod              = core.KeyMethod
	KeyTargetDimension     = core.KeyTargetDimension
	KeyOutputColumns       = core.KeyOutputColumns
	KeyEigenshift          = core.KeyEigenshift
	KeyTraceShift          = core.KeyTraceShift
	KeyCheckConnectivity   = core.KeyCheckConnectivity
	KeyEigenBackend        = core.KeyEigenBackend
	KeyNeighborsBackend    = core.KeyNeighborsBackend
	KeyNumNeighbors        = core.KeyNumNeighbors
	KeyLandmarkRatio       = core.KeyLandmarkRatio
	KeyPerplexity          = core.KeyPerplexity
	KeyGaussianKernelWidth = core.KeyGaussianKernelWidth
	KeyDiffusionTimesteps  = core.KeyDiffusionTimesteps
	KeyMaxIterations       = core.KeyMaxIterations
	KeyTolerance           = core.KeyTolerance
	KeySPEGlobalStrategy   = core.KeySPEGlobalStrategy
	KeySPENumUpdates       = core.KeySPENumUpdates
	KeySeed                = core.KeySeed
	KeyProgress            = core.KeyProgress
	KeyCancel              = core.KeyCancel
)

// Error taxonomy.
var (
	ErrMissingParameter   = core.ErrMissingParameter
	ErrWrongParameterType = core.ErrWrongParameterType
	// ErrWrongParameterValue marks a well-typed parameter with an unusable
	// value.
	ErrWrongParameterValue = core.ErrWrongParameterValue
	ErrUnsupportedMethod   = core.ErrUnsupportedMethod
	ErrNotEnoughMemory     = core.ErrNotEnoughMemory
	ErrCancelled           = core.ErrCancelled
	ErrEigendecomposition  = core.ErrEigendecomposition
)
