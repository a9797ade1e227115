package maze

import (
	"fmt"

	"maze-realm/server/models"
)

// TileScale is the world-space size of one tile
const TileScale = 1.5

// WorldPosition converts a tile coordinate to world space. The world y axis points up.
func WorldPosition(p models.Point) (float64, float64) {
	return float64(p.X) * TileScale, -float64(p.Y) * TileScale
}

// Materialize walks the finished grid in row-major order and emits one
// placement per Wall, Corridor and Goal tile. Open and RoomInterior tiles emit
// nothing. A grid without exactly one goal is rejected.
func Materialize(g *Grid) ([]models.Placement, error) {
	placements := make([]models.Placement, 0, len(g.tiles))
	goals := 0

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			tile, err := g.Get(x, y)
			if err != nil {
				return nil, err
			}

			var kind models.ObjectKind
			switch tile {
			case models.TileWall:
				kind = models.ObjectWall
			case models.TileCorridor:
				kind = models.ObjectPoint
			case models.TileGoal:
				kind = models.ObjectGoal
				goals++
			default:
				continue
			}

			p := models.Point{X: x, Y: y}
			wx, wy := WorldPosition(p)
			placements = append(placements, models.Placement{Tile: p, Kind: kind, WorldX: wx, WorldY: wy})
		}
	}

	if goals != 1 {
		return nil, fmt.Errorf("%w: found %d goal tiles, want 1", ErrInconsistentGrid, goals)
	}
	return placements, nil
}
