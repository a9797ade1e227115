package services

import (
	"math/rand"

	"github.com/google/uuid"

	"maze-realm/server/maze"
	"maze-realm/server/models"
)

// EnemyPlacer hands out enemy spawn tiles from a level's room pillars.
// Each tile is used at most once, and draws come from the tiles that are
// still free, so placement never retries and always terminates.
type EnemyPlacer struct {
	stage      int
	maxEnemies int
	rng        *rand.Rand
	free       []models.Point
	placed     int
}

// NewEnemyPlacer collects the RoomInterior tiles of grid as spawn candidates
func NewEnemyPlacer(grid *maze.Grid, stage, maxEnemies int, rng *rand.Rand) *EnemyPlacer {
	return &EnemyPlacer{
		stage:      stage,
		maxEnemies: maxEnemies,
		rng:        rng,
		free:       grid.Points(models.TileRoomInterior),
	}
}

// Place picks a free room tile for a new enemy. It returns false once the
// enemy limit is reached or no free tile remains.
func (ep *EnemyPlacer) Place() (models.Enemy, bool) {
	if ep.placed >= ep.maxEnemies || len(ep.free) == 0 {
		return models.Enemy{}, false
	}

	i := ep.rng.Intn(len(ep.free))
	tile := ep.free[i]
	last := len(ep.free) - 1
	ep.free[i] = ep.free[last]
	ep.free = ep.free[:last]

	ep.placed++

	wx, wy := maze.WorldPosition(tile)
	return models.Enemy{
		ID:     uuid.NewString(),
		Stage:  ep.stage,
		Tile:   tile,
		WorldX: wx,
		WorldY: wy,
	}, true
}

// PlaceN places up to n enemies
func (ep *EnemyPlacer) PlaceN(n int) []models.Enemy {
	enemies := make([]models.Enemy, 0, max(n, 0))
	for i := 0; i < n; i++ {
		enemy, ok := ep.Place()
		if !ok {
			break
		}
		enemies = append(enemies, enemy)
	}
	return enemies
}

// Remaining returns how many more enemies can be placed
func (ep *EnemyPlacer) Remaining() int {
	return min(ep.maxEnemies-ep.placed, len(ep.free))
}
