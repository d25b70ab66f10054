// Package neighbors provides k-nearest-neighbor search over a dataset
// accessed through a distance callback, with a brute-force backend and a
// vantage-point tree backend, plus the connectivity check local methods run
// over the resulting neighbor graph. Callbacks are always invoked
// sequentially.
package neighbors
