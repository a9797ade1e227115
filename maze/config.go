package maze

import "fmt"

// Default generation policy
const (
	DefaultWidth        = 65
	DefaultHeight       = 35
	DefaultRoomAttempts = 60
	DefaultMinRoomSize  = 4
	DefaultMaxRoomSize  = 7

	// MinDimension is the smallest grid side that still has an interior cell
	// surrounded by pillars.
	MinDimension = 5
	// MinRoomSize is the smallest room extent that leaves a door candidate.
	MinRoomSize = 2
)

// Config holds the caller-supplied generation inputs
type Config struct {
	Width, Height int

	// RoomAttempts is a placement budget, not a room count. Attempts that
	// overlap an existing room are skipped.
	RoomAttempts int

	// Room extents in connector-lattice units, MinRoomSize inclusive,
	// MaxRoomSize exclusive.
	MinRoomSize int
	MaxRoomSize int

	Seed int64
}

// DefaultConfig returns the standard level policy with the given seed
func DefaultConfig(seed int64) Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		RoomAttempts: DefaultRoomAttempts,
		MinRoomSize:  DefaultMinRoomSize,
		MaxRoomSize:  DefaultMaxRoomSize,
		Seed:         seed,
	}
}

// Validate checks the configuration before any tile is touched
func (c Config) Validate() error {
	if err := validateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	return validateRoomPolicy(c.RoomAttempts, c.MinRoomSize, c.MaxRoomSize)
}

func validateDimensions(width, height int) error {
	if width < MinDimension || width%2 == 0 {
		return fmt.Errorf("%w: width %d must be odd and at least %d", ErrInvalidConfiguration, width, MinDimension)
	}
	if height < MinDimension || height%2 == 0 {
		return fmt.Errorf("%w: height %d must be odd and at least %d", ErrInvalidConfiguration, height, MinDimension)
	}
	return nil
}

func validateRoomPolicy(attempts, minSize, maxSize int) error {
	if attempts <= 0 {
		return fmt.Errorf("%w: room attempts %d must be positive", ErrInvalidConfiguration, attempts)
	}
	if minSize < MinRoomSize || minSize >= maxSize {
		return fmt.Errorf("%w: room size bounds [%d,%d) need %d <= min < max",
			ErrInvalidConfiguration, minSize, maxSize, MinRoomSize)
	}
	return nil
}
