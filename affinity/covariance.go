package affinity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// checkpointStride is how many samples or rows are processed between
// cancellation polls.
const checkpointStride = 64

// Covariance accumulates the feature-space scatter matrix in a single pass:
// sum of rank-1 updates x*x^T per sample, followed by one negative rank-1
// update with the accumulated feature sum scaled by -1/n. The result equals
// sum_i (x_i - mean)(x_i - mean)^T, i.e. n times the population covariance,
// without a second pass and without materializing the mean.
func Covariance[D any](ec *core.Context, ds core.Dataset[D], fv core.FeatureCallback[D]) (*mat.SymDense, error) {
	n := ds.Len()
	if n == 0 {
		return nil, fmt.Errorf("covariance of an empty data range: %w", core.ErrWrongParameterValue)
	}
	dim := fv.Dimension()

	scatter := mat.NewSymDense(dim, nil)
	sum := mat.NewVecDense(dim, nil)
	x := mat.NewVecDense(dim, nil)

	for i := 0; i < n; i++ {
		if i%checkpointStride == 0 {
			if err := ec.Checkpoint(); err != nil {
				return nil, err
			}
			ec.ReportProgress(float64(i) / float64(n))
		}
		fv.Features(ds.At(i), x)
		sum.AddVec(sum, x)
		scatter.SymRankOne(scatter, 1, x)
	}
	scatter.SymRankOne(scatter, -1/float64(n), sum)

	ec.ReportProgress(1)
	return scatter, nil
}
