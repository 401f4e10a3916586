package spectrum

import "errors"

var (
	// ErrShapeMismatch is returned when co-indexed arrays differ in length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInsufficientSamples is returned when an axis is too short for a
	// computation that reads a fixed index.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrNoData is returned when a curve has no valid samples to work with.
	ErrNoData = errors.New("no data")
)
