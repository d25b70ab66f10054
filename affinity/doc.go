// Package affinity builds the dense symmetric matrices the spectral methods
// reduce to eigenproblems over: the feature-space scatter matrix, the
// double-centered kernel (Gram) matrix, and the pairwise distance matrix.
//
// All builders are read-only over the dataset, invoke caller callbacks
// strictly sequentially, and poll the execution context at row checkpoints
// so cancellation latency stays bounded by one row of work. None of them
// read the configuration store.
package affinity
