package snm

import "errors"

var (
	// ErrInsufficientSamples is returned when a curve has fewer than two
	// valid (non-missing) points.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrInvalidWindow is returned when a window length is outside
	// [1, len(values)] or the grid is too small to hold a window.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidDomain is returned when the grid upper bound is not a
	// positive finite number.
	ErrInvalidDomain = errors.New("invalid domain")
)
