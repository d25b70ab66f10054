// Package eigen extracts extremal eigenpairs of dense symmetric affinity
// matrices. Two backends are available: a dense solver over the full
// spectrum and an iterative Lanczos solver that targets just the requested
// band, using shift-invert through a Cholesky factorization when the
// smallest eigenpairs are wanted. Backend selection is a configuration
// parameter; problems too small for the iterative band are routed to the
// dense solver regardless of selection.
package eigen
