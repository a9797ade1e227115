package maze

import (
	"fmt"
	"math/rand"

	"maze-realm/server/models"
)

// Result is a finished generation pass
type Result struct {
	Grid  *Grid
	Rooms []models.Room
	Goal  models.Point
	Stats CarveStats
}

// NewRand returns the sequential random source used for one generation pass
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Generate runs the full pipeline with a random source seeded from cfg.Seed.
// The same configuration always yields the same grid.
func Generate(cfg Config) (*Result, error) {
	return GenerateWith(cfg, NewRand(cfg.Seed))
}

// GenerateWith runs the pipeline drawing from rng. Configuration is validated
// before any tile is written; on error no result is returned.
func GenerateWith(cfg Config, rng *rand.Rand) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := NewGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	if err := SeedWalls(g); err != nil {
		return nil, fmt.Errorf("seed walls: %w", err)
	}

	rooms, err := PlaceRooms(g, rng, cfg.RoomAttempts, cfg.MinRoomSize, cfg.MaxRoomSize)
	if err != nil {
		return nil, fmt.Errorf("place rooms: %w", err)
	}

	stats, err := Carve(g, rng)
	if err != nil {
		return nil, fmt.Errorf("carve corridors: %w", err)
	}

	goal, err := placeGoal(g)
	if err != nil {
		return nil, err
	}

	return &Result{Grid: g, Rooms: rooms, Goal: goal, Stats: stats}, nil
}

// placeGoal turns the far-corner cell into the goal. The cell is never inside
// a room, so after carving it must be Corridor.
func placeGoal(g *Grid) (models.Point, error) {
	goal := models.Point{X: g.width - 2, Y: g.height - 2}
	tile, err := g.Get(goal.X, goal.Y)
	if err != nil {
		return goal, err
	}
	if tile != models.TileCorridor {
		return goal, fmt.Errorf("%w: goal cell (%d,%d) is %s, want corridor", ErrInconsistentGrid, goal.X, goal.Y, tile)
	}
	return goal, g.Set(goal.X, goal.Y, models.TileGoal)
}
