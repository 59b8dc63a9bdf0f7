package erosion

import "errors"

var (
	// ErrDimensionMismatch reports a heightmap whose sample count does not
	// match width*height.
	ErrDimensionMismatch = errors.New("erosion: heightmap dimension mismatch")
	// ErrInvalidConfiguration reports a non-positive grid size or a
	// non-finite/out-of-range tunable.
	ErrInvalidConfiguration = errors.New("erosion: invalid configuration")
)
