package maze

import "errors"

var (
	// ErrInvalidConfiguration indicates generation was asked to run with
	// dimensions or room bounds the lattice algorithm cannot honour.
	ErrInvalidConfiguration = errors.New("maze: invalid configuration")
	// ErrOutOfBounds indicates a grid access outside [0,width)×[0,height).
	ErrOutOfBounds = errors.New("maze: coordinate out of bounds")
	// ErrInconsistentGrid indicates a finished grid breaks a generation invariant.
	ErrInconsistentGrid = errors.New("maze: inconsistent grid")
)
