package core

import "errors"

var (
	// ErrMissingParameter is returned when a required configuration key was
	// not supplied and no default exists for it.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrWrongParameterType is returned when a configuration value exists but
	// cannot be converted to the type its consumer expects.
	ErrWrongParameterType = errors.New("wrong parameter type")

	// ErrWrongParameterValue is returned when a configuration value has the
	// right type but an invalid value. An unrecognized method identifier is
	// reported through this error.
	ErrWrongParameterValue = errors.New("wrong parameter value")

	// ErrUnsupportedMethod is returned when the method is recognized but
	// unsupported in the current configuration, e.g. a required data-access
	// capability was not registered.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrNotEnoughMemory is returned when an allocation failure occurred
	// inside an algorithm. It is normalized once at the dispatch boundary
	// regardless of which internal allocation failed.
	ErrNotEnoughMemory = errors.New("not enough memory")

	// ErrCancelled is returned when the cancellation hook (or the request
	// context) signaled abandonment. No partial embedding is returned.
	ErrCancelled = errors.New("cancelled")

	// ErrEigendecomposition is returned when the chosen eigen-solver backend
	// failed to converge or could not produce the requested eigenpairs.
	ErrEigendecomposition = errors.New("eigendecomposition failed")
)
