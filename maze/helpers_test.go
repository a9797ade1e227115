package maze

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"maze-realm/server/models"
)

// reachable flood-fills from start over orthogonal neighbours accepted by pass
func reachable(t *testing.T, g *Grid, start models.Point, pass func(models.Tile) bool) mapset.Set[models.Point] {
	t.Helper()
	seen := mapset.New[models.Point]()
	queue := []models.Point{start}
	seen.Put(start)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range directions {
			n := models.Point{X: p.X + d.X, Y: p.Y + d.Y}
			if !g.InBounds(n.X, n.Y) || seen.Has(n) {
				continue
			}
			tile, err := g.Get(n.X, n.Y)
			require.NoError(t, err)
			if pass(tile) {
				seen.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return seen
}

func mustGet(t *testing.T, g *Grid, x, y int) models.Tile {
	t.Helper()
	tile, err := g.Get(x, y)
	require.NoError(t, err)
	return tile
}

// insideRoom reports whether (x, y) lies on or within a room's wall ring
func insideRoom(rooms []models.Room, x, y int) bool {
	for _, r := range rooms {
		x0, y0, x1, y1 := RoomBounds(r)
		if x >= x0 && x <= x1 && y >= y0 && y <= y1 {
			return true
		}
	}
	return false
}

// strictlyInsideRoom reports whether (x, y) lies inside a room's wall ring
func strictlyInsideRoom(rooms []models.Room, x, y int) bool {
	for _, r := range rooms {
		x0, y0, x1, y1 := RoomBounds(r)
		if x > x0 && x < x1 && y > y0 && y < y1 {
			return true
		}
	}
	return false
}

// requireLevelInvariants checks every structural property of a finished level
func requireLevelInvariants(t *testing.T, cfg Config, res *Result) {
	t.Helper()
	g := res.Grid

	// Border and pillars outside rooms stay solid
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			border := x == 0 || y == 0 || x == g.Width()-1 || y == g.Height()-1
			if border || (IsPillar(x, y) && !insideRoom(res.Rooms, x, y)) {
				require.Equal(t, models.TileWall, mustGet(t, g, x, y), "tile (%d,%d)", x, y)
			}
		}
	}

	// Exactly one goal, in the far corner
	require.Equal(t, 1, g.Count(models.TileGoal))
	require.Equal(t, models.Point{X: cfg.Width - 2, Y: cfg.Height - 2}, res.Goal)
	require.Equal(t, models.TileGoal, mustGet(t, g, res.Goal.X, res.Goal.Y))

	// Open tiles survive only inside rooms, and only pillars there are RoomInterior
	for _, p := range g.Points(models.TileOpen) {
		require.True(t, strictlyInsideRoom(res.Rooms, p.X, p.Y), "open tile (%d,%d) outside rooms", p.X, p.Y)
		require.False(t, IsPillar(p.X, p.Y), "open pillar (%d,%d)", p.X, p.Y)
	}
	for _, p := range g.Points(models.TileRoomInterior) {
		require.True(t, IsPillar(p.X, p.Y), "room tile (%d,%d) is not a pillar", p.X, p.Y)
		require.True(t, strictlyInsideRoom(res.Rooms, p.X, p.Y), "room tile (%d,%d) outside rooms", p.X, p.Y)
	}

	// Carved corridors form a tree, doors add one connector per room
	require.Equal(t, res.Stats.Cells-1, res.Stats.Edges)
	require.Equal(t, len(res.Rooms), res.Stats.Doors)
	corridorCells, corridorConnectors := 0, 0
	for _, p := range append(g.Points(models.TileCorridor), res.Goal) {
		switch {
		case IsCell(p.X, p.Y):
			corridorCells++
		case IsConnector(p.X, p.Y):
			corridorConnectors++
		default:
			t.Fatalf("corridor on pillar (%d,%d)", p.X, p.Y)
		}
	}
	require.Equal(t, res.Stats.Cells, corridorCells)
	require.Equal(t, res.Stats.Edges+res.Stats.Doors, corridorConnectors)

	// Rooms never share a connector cell and keep one door each
	for i, r := range res.Rooms {
		for _, other := range res.Rooms[i+1:] {
			require.False(t, r.Overlaps(other), "rooms %+v and %+v overlap", r, other)
		}
		x0, y0, x1, y1 := RoomBounds(r)
		var openings []models.Point
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				tile := mustGet(t, g, x, y)
				onRing := x == x0 || x == x1 || y == y0 || y == y1
				switch {
				case !onRing && IsPillar(x, y):
					require.Equal(t, models.TileRoomInterior, tile, "room pillar (%d,%d)", x, y)
				case !onRing:
					require.Equal(t, models.TileOpen, tile, "room floor (%d,%d)", x, y)
				case tile != models.TileWall:
					openings = append(openings, models.Point{X: x, Y: y})
				}
			}
		}
		require.Equal(t, []models.Point{r.Door}, openings)
		require.Equal(t, models.TileCorridor, mustGet(t, g, r.Door.X, r.Door.Y))
	}

	// Every passable tile reaches the start, and the corridor network alone is connected
	passable := reachable(t, g, Start, models.Tile.Passable)
	require.Equal(t, g.Width()*g.Height()-g.Count(models.TileWall), passable.Size())

	corridor := reachable(t, g, Start, func(tile models.Tile) bool {
		return tile == models.TileCorridor || tile == models.TileGoal
	})
	require.Equal(t, g.Count(models.TileCorridor)+1, corridor.Size())
}
