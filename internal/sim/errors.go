package sim

import "errors"

var (
	// ErrTrackTooShort is returned by Launch when the track has fewer than
	// two control points.
	ErrTrackTooShort = errors.New("sim: track needs at least two control points")

	// ErrAlreadyLaunched is returned by Launch when the gondola is not idle.
	ErrAlreadyLaunched = errors.New("sim: gondola already launched")

	// ErrInvalidConfig indicates a non-positive step or duration.
	ErrInvalidConfig = errors.New("sim: invalid configuration")
)
