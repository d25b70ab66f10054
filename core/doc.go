// Package core defines the shared vocabulary of the manifold engine:
// position-addressable datasets, capability-tagged data-access callbacks,
// the configuration parameter store with its defaulting rules, the error
// taxonomy every public entry point reports through, and the execution
// context that carries progress reporting and cooperative cancellation
// into long-running algorithm bodies.
//
// The package is a leaf: every other package in the module depends on it
// and it depends on nothing but gonum and the standard library.
package core
