package core

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a finite, position-addressable sequence of opaque data handles.
// The engine never inspects a handle directly, only through the registered
// callbacks, so D can be anything from a plain index to a rich record.
type Dataset[D any] interface {
	// Len returns the number of samples.
	Len() int
	// At returns the handle at position i, 0 <= i < Len().
	At(i int) D
}

// SliceDataset adapts a slice to the Dataset interface.
type SliceDataset[D any] []D

// Len returns the number of samples.
func (s SliceDataset[D]) Len() int { return len(s) }

// At returns the handle at position i.
func (s SliceDataset[D]) At(i int) D { return s[i] }

// KernelCallback computes a symmetric Mercer-kernel value for two handles.
// Implementing this interface tags a callback with the kernel capability.
type KernelCallback[D any] interface {
	Kernel(a, b D) float64
}

// DistanceCallback computes a distance value for two handles. Implementing
// this interface tags a callback with the distance capability.
type DistanceCallback[D any] interface {
	Distance(a, b D) float64
}

// FeatureCallback writes the dense feature representation of a handle into
// dst, which is preallocated with Dimension() elements. Implementing this
// interface tags a callback with the feature-vector capability.
type FeatureCallback[D any] interface {
	Features(d D, dst *mat.VecDense)
	// Dimension returns the length of the feature vectors the callback
	// produces. It is checked against the expectations of consumers such as
	// the out-of-sample projection.
	Dimension() int
}

// KernelFunc tags a plain function with the kernel capability.
type KernelFunc[D any] func(a, b D) float64

// Kernel implements KernelCallback.
func (f KernelFunc[D]) Kernel(a, b D) float64 { return f(a, b) }

// DistanceFunc tags a plain function with the distance capability.
type DistanceFunc[D any] func(a, b D) float64

// Distance implements DistanceCallback.
func (f DistanceFunc[D]) Distance(a, b D) float64 { return f(a, b) }

// FeatureFunc tags a plain function with the feature-vector capability and
// the dimension it produces. Construct with NewFeatureFunc.
type FeatureFunc[D any] struct {
	dim int
	fn  func(d D, dst *mat.VecDense)
}

// NewFeatureFunc wraps fn as a FeatureCallback producing dim-dimensional
// feature vectors.
func NewFeatureFunc[D any](dim int, fn func(d D, dst *mat.VecDense)) FeatureFunc[D] {
	return FeatureFunc[D]{dim: dim, fn: fn}
}

// Features implements FeatureCallback.
func (f FeatureFunc[D]) Features(d D, dst *mat.VecDense) { f.fn(d, dst) }

// Dimension implements FeatureCallback.
func (f FeatureFunc[D]) Dimension() int { return f.dim }

// Callbacks bundles the caller's capability-tagged callbacks. Any subset may
// be nil; Validate checks the bundle against the capabilities a method
// actually consumes before the method runs.
type Callbacks[D any] struct {
	Kernel   KernelCallback[D]
	Distance DistanceCallback[D]
	Features FeatureCallback[D]
}

// Validate checks that every capability required by m is registered. A
// missing capability makes the method unsupported in the current
// configuration.
func (c Callbacks[D]) Validate(m Method) error {
	if m.NeedsKernel() && c.Kernel == nil {
		return fmt.Errorf("%s requires a kernel callback: %w", m, ErrUnsupportedMethod)
	}
	if m.NeedsDistance() && c.Distance == nil {
		return fmt.Errorf("%s requires a distance callback: %w", m, ErrUnsupportedMethod)
	}
	if m.NeedsFeatures() && c.Features == nil {
		return fmt.Errorf("%s requires a feature-vector callback: %w", m, ErrUnsupportedMethod)
	}
	return nil
}
