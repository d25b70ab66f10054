// Package testutil provides testing utilities for manifold.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random generation, synthetic datasets with known
// structure, and ready-made callbacks over [][]float64 data.
//
// # Random Generation
//
//	rng := testutil.NewRNG(seed)
//	vec := make([]float64, 128)
//	rng.FillUniform(vec)      // uniform [0, 1)
//	rng.FillGaussian(vec)     // standard normal
//
// # Synthetic Datasets
//
//	roll := testutil.SwissRoll(500, 0.05, seed)   // 3-D swiss roll
//	blobs := testutil.Blobs(200, 5, 2, 10, seed)  // two separated clusters
//
// # Callbacks
//
//	cb := testutil.Callbacks(3) // euclidean distance, linear kernel, features
package testutil
