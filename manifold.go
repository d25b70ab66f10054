package manifold

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
	"github.com/hupe1980/manifold/eigen"
	"github.com/hupe1980/manifold/internal/methods"
	"github.com/hupe1980/manifold/neighbors"
)

// Embed runs the method selected by KeyMethod over the dataset and returns
// the embedding. The caller's Params map is cloned before defaults are
// applied, so it is never mutated and can be reused across calls.
//
// The required callbacks depend on the method: kernel methods need cb.Kernel,
// distance methods need cb.Distance, and linear methods need cb.Features.
// A missing capability fails with ErrUnsupportedMethod before any data is
// touched. Callbacks are invoked sequentially; they do not need to be safe
// for concurrent use.
func Embed[D any](ctx context.Context, ds core.Dataset[D], cb core.Callbacks[D], p core.Params, optFns ...Option) (res *core.Result, err error) {
	o := applyOptions(optFns)

	p = p.Clone()
	m, err := p.Method()
	if err != nil {
		return nil, err
	}
	if !m.Known() {
		return nil, fmt.Errorf("unknown method identifier %d: %w", int(m), core.ErrWrongParameterValue)
	}
	applyDefaults(p)

	if err := cb.Validate(m); err != nil {
		return nil, err
	}

	progress, err := p.Progress()
	if err != nil {
		return nil, err
	}
	cancel, err := p.Cancel()
	if err != nil {
		return nil, err
	}
	ec := core.NewContext(ctx, progress, cancel)

	// Poll once up front so a pre-cancelled run never allocates a matrix.
	if err := ec.Checkpoint(); err != nil {
		return nil, err
	}

	log := o.logger.WithMethod(m).WithSamples(ds.Len())
	log.InfoContext(ctx, "computing embedding")

	defer recoverAlloc(&err)

	req := methods.Request[D]{
		EC:  ec,
		DS:  ds,
		CB:  cb,
		P:   p,
		Log: log.Logger,
	}
	res, err = dispatch(req, m)
	o.logger.LogEmbed(ctx, m, ds.Len(), err)
	if err != nil {
		return nil, err
	}

	columns, err := p.Bool(core.KeyOutputColumns)
	if err != nil {
		return nil, err
	}
	if columns && res.Embedding != nil {
		res.Embedding = mat.DenseCopyOf(res.Embedding.T())
	}
	return res, nil
}

func applyDefaults(p core.Params) {
	p.SetDefault(core.KeyTargetDimension, 2)
	p.SetDefault(core.KeyOutputColumns, false)
	p.SetDefault(core.KeyEigenshift, 1e-9)
	p.SetDefault(core.KeyTraceShift, 1e-3)
	p.SetDefault(core.KeyCheckConnectivity, true)
	p.SetDefault(core.KeyEigenBackend, eigen.Lanczos)
	p.SetDefault(core.KeyNeighborsBackend, neighbors.VPTree)
	p.SetDefault(core.KeySeed, int64(42))
}

func dispatch[D any](req methods.Request[D], m core.Method) (*core.Result, error) {
	switch m {
	case core.KernelLocallyLinearEmbedding:
		return methods.KernelLocallyLinearEmbedding(req)
	case core.KernelLocalTangentSpaceAlignment:
		return methods.KernelLocalTangentSpaceAlignment(req)
	case core.DiffusionMap:
		return methods.DiffusionMap(req)
	case core.MultidimensionalScaling:
		return methods.MultidimensionalScaling(req)
	case core.LandmarkMultidimensionalScaling:
		return methods.LandmarkMultidimensionalScaling(req)
	case core.Isomap:
		return methods.Isomap(req)
	case core.LandmarkIsomap:
		return methods.LandmarkIsomap(req)
	case core.NeighborhoodPreservingEmbedding:
		return methods.NeighborhoodPreservingEmbedding(req)
	case core.LinearLocalTangentSpaceAlignment:
		return methods.LinearLocalTangentSpaceAlignment(req)
	case core.HessianLocallyLinearEmbedding:
		return methods.HessianLocallyLinearEmbedding(req)
	case core.LaplacianEigenmaps:
		return methods.LaplacianEigenmaps(req)
	case core.LocalityPreservingProjections:
		return methods.LocalityPreservingProjections(req)
	case core.PCA:
		return methods.PCA(req)
	case core.KernelPCA:
		return methods.KernelPCA(req)
	case core.RandomProjection:
		return methods.RandomProjection(req)
	case core.StochasticProximityEmbedding:
		return methods.StochasticProximityEmbedding(req)
	case core.PassThru:
		return methods.PassThru(req)
	case core.FactorAnalysis:
		return methods.FactorAnalysis(req)
	case core.TDistributedStochasticNeighborEmbedding:
		return methods.TDistributedStochasticNeighborEmbedding(req)
	}
	return nil, fmt.Errorf("unknown method identifier %d: %w", int(m), core.ErrWrongParameterValue)
}

// recoverAlloc maps allocation-failure panics from the runtime to
// ErrNotEnoughMemory. The spectral methods materialize n x n matrices, so an
// oversized dataset fails here rather than crashing the caller. Any other
// panic is re-raised.
func recoverAlloc(err *error) {
	r := recover()
	if r == nil {
		return
	}
	re, ok := r.(runtime.Error)
	if !ok {
		panic(r)
	}
	msg := re.Error()
	if strings.Contains(msg, "out of memory") ||
		strings.Contains(msg, "makeslice") ||
		strings.Contains(msg, "cannot allocate") {
		*err = fmt.Errorf("allocation failed: %w", core.ErrNotEnoughMemory)
		return
	}
	panic(r)
}

// Project embeds unseen points through the projection artifact of a linear
// method. The feature callback must produce vectors of the artifact's input
// dimensionality; the result has one row per sample.
func Project[D any](ctx context.Context, pr *core.Projection, ds core.Dataset[D], fv core.FeatureCallback[D], optFns ...Option) (*mat.Dense, error) {
	o := applyOptions(optFns)

	out, dim, err := projectRows(ctx, pr, ds, fv)
	o.logger.LogProject(ctx, ds.Len(), dim, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func projectRows[D any](ctx context.Context, pr *core.Projection, ds core.Dataset[D], fv core.FeatureCallback[D]) (*mat.Dense, int, error) {
	if pr == nil || pr.Matrix == nil {
		return nil, 0, fmt.Errorf("no projection artifact: %w", core.ErrWrongParameterValue)
	}
	if fv == nil {
		return nil, 0, fmt.Errorf("projection requires a feature-vector callback: %w", core.ErrUnsupportedMethod)
	}
	d, t := pr.Matrix.Dims()
	if fv.Dimension() != d {
		return nil, 0, fmt.Errorf("projection expects %d-dimensional features, callback produces %d: %w",
			d, fv.Dimension(), core.ErrWrongParameterValue)
	}

	ec := core.NewContext(ctx, nil, nil)
	n := ds.Len()
	out := mat.NewDense(n, t, nil)
	x := mat.NewVecDense(d, nil)
	row := mat.NewVecDense(t, nil)
	for i := 0; i < n; i++ {
		if i%64 == 0 {
			if err := ec.Checkpoint(); err != nil {
				return nil, 0, err
			}
		}
		fv.Features(ds.At(i), x)
		if err := pr.Apply(x, row); err != nil {
			return nil, 0, err
		}
		out.SetRow(i, row.RawVector().Data)
	}
	return out, t, nil
}
