package maze

import (
	"math/rand"

	"maze-realm/server/models"
)

// Start is the cell the corridor carve is rooted at
var Start = models.Point{X: 1, Y: 1}

// Up, right, down, left
var directions = [4]models.Point{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// CarveStats summarizes a corridor carve
type CarveStats struct {
	Cells  int // Cells marked Corridor
	Edges  int // Connectors crossed by the carve; always Cells-1
	Doors  int // Room doors bridged onto the corridor tree
	Sealed int // Connectors walled off to keep the tree acyclic
}

// Carve runs an explicit-stack recursive backtracker over the cell lattice
// starting at Start. Every cell reachable from Start through non-Wall
// connectors ends up Corridor, and the crossed connectors form a spanning tree.
// Rooms are never entered; their door is marked Corridor instead.
func Carve(g *Grid, rng *rand.Rand) (CarveStats, error) {
	var (
		stats      CarveStats
		frontier   []models.Point
		candidates = make([]models.Point, 0, len(directions))
		current    = Start
	)

	for {
		tile, err := g.Get(current.X, current.Y)
		if err != nil {
			return stats, err
		}
		if tile != models.TileCorridor {
			if err := g.Set(current.X, current.Y, models.TileCorridor); err != nil {
				return stats, err
			}
			stats.Cells++
		}

		candidates, err = expand(g, current, candidates[:0], &stats)
		if err != nil {
			return stats, err
		}

		if len(candidates) == 0 {
			if len(frontier) == 0 {
				return stats, nil
			}
			current = frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			continue
		}

		if len(candidates) > 1 {
			frontier = append(frontier, current)
		}
		d := candidates[rng.Intn(len(candidates))]
		if err := g.Set(current.X+d.X, current.Y+d.Y, models.TileCorridor); err != nil {
			return stats, err
		}
		stats.Edges++
		current = models.Point{X: current.X + 2*d.X, Y: current.Y + 2*d.Y}
	}
}

// expand appends the directions the carve may continue in from cell. As a
// side effect it seals connectors that lead back into the tree and bridges
// room doors.
func expand(g *Grid, cell models.Point, candidates []models.Point, stats *CarveStats) ([]models.Point, error) {
	for _, d := range directions {
		cx, cy := cell.X+d.X, cell.Y+d.Y
		connector, err := g.Get(cx, cy)
		if err != nil {
			return candidates, err
		}
		if connector != models.TileOpen {
			continue
		}
		if g.IsDoor(cx, cy) {
			if err := g.Set(cx, cy, models.TileCorridor); err != nil {
				return candidates, err
			}
			stats.Doors++
			continue
		}

		neighbor, err := g.Get(cell.X+2*d.X, cell.Y+2*d.Y)
		if err != nil {
			return candidates, err
		}
		switch neighbor {
		case models.TileOpen:
			candidates = append(candidates, d)
		case models.TileCorridor:
			if err := g.Set(cx, cy, models.TileWall); err != nil {
				return candidates, err
			}
			stats.Sealed++
		}
	}
	return candidates, nil
}
