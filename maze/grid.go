// Package maze generates maze levels on an odd-sized tile lattice.
//
// Tiles with both coordinates even are pillars, tiles with both coordinates
// odd are cells, and the remaining tiles are connectors between neighbouring
// cells. Generation seeds walls, places rooms, carves a spanning corridor
// tree from (1,1), places the goal and materializes placement requests.
package maze

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"maze-realm/server/models"
)

// Grid is a fixed-size tile store. All tile state goes through Get and Set.
// Room doors placed during generation are remembered so the carve can bridge
// them without entering the room.
type Grid struct {
	width, height int
	tiles         []models.Tile
	doors         mapset.Set[models.Point]
}

// NewGrid creates a grid with every tile Open. Width and height must be odd and at least MinDimension.
func NewGrid(width, height int) (*Grid, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}
	tiles := make([]models.Tile, width*height)
	for i := range tiles {
		tiles[i] = models.TileOpen
	}
	return &Grid{width: width, height: height, tiles: tiles, doors: mapset.New[models.Point]()}, nil
}

// FromTiles rebuilds a grid from a row-major snapshot such as a persisted level
func FromTiles(rows [][]models.Tile) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty tile snapshot", ErrInvalidConfiguration)
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidConfiguration, y, len(row), g.width)
		}
		copy(g.tiles[y*g.width:], row)
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the tile at (x, y)
func (g *Grid) Get(x, y int) (models.Tile, error) {
	if !g.InBounds(x, y) {
		return models.TileWall, fmt.Errorf("%w: get (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return g.tiles[y*g.width+x], nil
}

// Set classifies the tile at (x, y)
func (g *Grid) Set(x, y int, t models.Tile) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: set (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	g.tiles[y*g.width+x] = t
	return nil
}

// Count returns how many tiles hold the given classification
func (g *Grid) Count(t models.Tile) int {
	n := 0
	for _, tile := range g.tiles {
		if tile == t {
			n++
		}
	}
	return n
}

// Points lists the coordinates of every tile with the given classification in row-major order
func (g *Grid) Points(t models.Tile) []models.Point {
	var points []models.Point
	for i, tile := range g.tiles {
		if tile == t {
			points = append(points, models.Point{X: i % g.width, Y: i / g.width})
		}
	}
	return points
}

// MarkDoor records (x, y) as a room door
func (g *Grid) MarkDoor(x, y int) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: door (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	g.doors.Put(models.Point{X: x, Y: y})
	return nil
}

// IsDoor reports whether (x, y) was marked as a room door
func (g *Grid) IsDoor(x, y int) bool {
	return g.doors.Has(models.Point{X: x, Y: y})
}

// Snapshot returns a deep copy of the tiles indexed [y][x]
func (g *Grid) Snapshot() [][]models.Tile {
	rows := make([][]models.Tile, g.height)
	for y := range rows {
		rows[y] = make([]models.Tile, g.width)
		copy(rows[y], g.tiles[y*g.width:(y+1)*g.width])
	}
	return rows
}

// IsPillar reports whether (x, y) is a lattice pillar
func IsPillar(x, y int) bool { return x%2 == 0 && y%2 == 0 }

// IsCell reports whether (x, y) is a traversal cell
func IsCell(x, y int) bool { return x%2 == 1 && y%2 == 1 }

// IsConnector reports whether (x, y) sits between two cells or two pillars
func IsConnector(x, y int) bool { return (x+y)%2 == 1 }
