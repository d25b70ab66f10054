package core

import "fmt"

// Method identifies a dimensionality-reduction algorithm. The set is closed:
// the dispatcher switches over exactly these values and rejects anything else
// with ErrWrongParameterValue.
type Method int

const (
	// KernelLocallyLinearEmbedding is locally linear embedding formulated in
	// terms of a Mercer kernel.
	KernelLocallyLinearEmbedding Method = iota
	// KernelLocalTangentSpaceAlignment is the kernelized variant of local
	// tangent space alignment.
	KernelLocalTangentSpaceAlignment
	// DiffusionMap embeds via the eigenvectors of a diffusion operator built
	// from pairwise distances.
	DiffusionMap
	// MultidimensionalScaling is classical (Torgerson) metric MDS.
	MultidimensionalScaling
	// LandmarkMultidimensionalScaling approximates MDS using a random subset
	// of landmark points.
	LandmarkMultidimensionalScaling
	// Isomap embeds geodesic distances estimated over the neighbor graph.
	Isomap
	// LandmarkIsomap approximates Isomap using geodesics from landmarks only.
	LandmarkIsomap
	// NeighborhoodPreservingEmbedding is the linear approximation to LLE.
	NeighborhoodPreservingEmbedding
	// LinearLocalTangentSpaceAlignment is the linear approximation to LTSA.
	LinearLocalTangentSpaceAlignment
	// HessianLocallyLinearEmbedding estimates local Hessians over tangent
	// coordinates.
	HessianLocallyLinearEmbedding
	// LaplacianEigenmaps embeds the null-adjacent spectrum of the graph
	// Laplacian.
	LaplacianEigenmaps
	// LocalityPreservingProjections is the linear approximation to Laplacian
	// eigenmaps.
	LocalityPreservingProjections
	// PCA is principal component analysis over explicit feature vectors.
	PCA
	// KernelPCA is PCA in the feature space induced by a Mercer kernel.
	KernelPCA
	// RandomProjection projects onto a random Gaussian matrix.
	RandomProjection
	// StochasticProximityEmbedding iteratively matches embedded distances to
	// observed ones.
	StochasticProximityEmbedding
	// PassThru copies feature vectors through unchanged. Useful for testing
	// pipelines end to end.
	PassThru
	// FactorAnalysis fits a linear latent-factor model by expectation
	// maximization.
	FactorAnalysis
	// TDistributedStochasticNeighborEmbedding is exact t-SNE.
	TDistributedStochasticNeighborEmbedding
)

var methodNames = map[Method]string{
	KernelLocallyLinearEmbedding:            "kernel locally linear embedding",
	KernelLocalTangentSpaceAlignment:        "kernel local tangent space alignment",
	DiffusionMap:                            "diffusion map",
	MultidimensionalScaling:                 "multidimensional scaling",
	LandmarkMultidimensionalScaling:         "landmark multidimensional scaling",
	Isomap:                                  "isomap",
	LandmarkIsomap:                          "landmark isomap",
	NeighborhoodPreservingEmbedding:         "neighborhood preserving embedding",
	LinearLocalTangentSpaceAlignment:        "linear local tangent space alignment",
	HessianLocallyLinearEmbedding:           "hessian locally linear embedding",
	LaplacianEigenmaps:                      "laplacian eigenmaps",
	LocalityPreservingProjections:           "locality preserving projections",
	PCA:                                     "pca",
	KernelPCA:                               "kernel pca",
	RandomProjection:                        "random projection",
	StochasticProximityEmbedding:            "stochastic proximity embedding",
	PassThru:                                "pass-thru",
	FactorAnalysis:                          "factor analysis",
	TDistributedStochasticNeighborEmbedding: "t-distributed stochastic neighbor embedding",
}

// String returns the human-readable method name used in log output.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Known reports whether m is one of the recognized methods.
func (m Method) Known() bool {
	_, ok := methodNames[m]
	return ok
}

// NeedsKernel reports whether the method consumes the kernel capability.
func (m Method) NeedsKernel() bool {
	switch m {
	case KernelLocallyLinearEmbedding, KernelLocalTangentSpaceAlignment,
		HessianLocallyLinearEmbedding, KernelPCA,
		NeighborhoodPreservingEmbedding, LinearLocalTangentSpaceAlignment:
		return true
	}
	return false
}

// NeedsDistance reports whether the method consumes the distance capability.
func (m Method) NeedsDistance() bool {
	switch m {
	case LaplacianEigenmaps, LocalityPreservingProjections, DiffusionMap,
		Isomap, LandmarkIsomap, MultidimensionalScaling,
		LandmarkMultidimensionalScaling, StochasticProximityEmbedding:
		return true
	}
	return false
}

// NeedsFeatures reports whether the method consumes the feature-vector
// capability.
func (m Method) NeedsFeatures() bool {
	switch m {
	case NeighborhoodPreservingEmbedding, LinearLocalTangentSpaceAlignment,
		LocalityPreservingProjections, PCA, RandomProjection, FactorAnalysis,
		TDistributedStochasticNeighborEmbedding, PassThru:
		return true
	}
	return false
}
