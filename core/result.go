package core

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Result is what every method returns: the embedding with samples as rows
// (transposed by the dispatcher when KeyOutputColumns is set), the
// eigenvalues associated with the embedding components where the method has
// them, and the projection artifact produced by linear methods.
type Result struct {
	// Embedding has one row per sample and KeyTargetDimension columns.
	Embedding *mat.Dense
	// Eigenvalues holds the auxiliary spectrum, or nil for methods without
	// one (random projection, SPE, t-SNE, pass-thru).
	Eigenvalues []float64
	// Projection is the linear out-of-sample artifact, or nil for methods
	// that do not produce one.
	Projection *Projection
}

// Projection is the artifact of a linear method: a projection matrix and the
// mean offset of the training features. It is owned by the caller after
// return; the engine keeps no reference.
type Projection struct {
	// Matrix is d x t: feature dimension rows, target dimension columns.
	Matrix *mat.Dense
	// Mean is the d-dimensional centering offset subtracted before
	// projecting. All-zero for methods that do not center.
	Mean *mat.VecDense
}

// Apply projects a single feature vector: dst = Matrix^T * (x - Mean).
// dst must have Matrix's column count as its length.
func (p *Projection) Apply(x *mat.VecDense, dst *mat.VecDense) error {
	d, t := p.Matrix.Dims()
	if x.Len() != d {
		return fmt.Errorf("projection expects %d-dimensional features, got %d: %w",
			d, x.Len(), ErrWrongParameterValue)
	}
	if dst.Len() != t {
		return fmt.Errorf("projection produces %d-dimensional output, got buffer of %d: %w",
			t, dst.Len(), ErrWrongParameterValue)
	}
	centered := mat.NewVecDense(d, nil)
	centered.SubVec(x, p.Mean)
	dst.MulVec(p.Matrix.T(), centered)
	return nil
}
