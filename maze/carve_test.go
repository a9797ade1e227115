package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maze-realm/server/models"
)

func TestCarve_SpanningTreeWithoutRooms(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		g := seededGrid(t, 9, 9)

		stats, err := Carve(g, NewRand(seed))
		require.NoError(t, err)

		// 4x4 cells joined by 24 interior connectors: 15 carved, 9 sealed
		assert.Equal(t, 16, stats.Cells)
		assert.Equal(t, 15, stats.Edges)
		assert.Equal(t, 9, stats.Sealed)
		assert.Zero(t, stats.Doors)
		assert.Zero(t, g.Count(models.TileOpen))
		assert.Equal(t, 16+15, g.Count(models.TileCorridor))

		tree := reachable(t, g, Start, func(tile models.Tile) bool { return tile == models.TileCorridor })
		assert.Equal(t, 31, tree.Size())
	}
}

func TestCarve_BridgesRoomDoor(t *testing.T) {
	g := seededGrid(t, 9, 9)
	rooms, err := PlaceRooms(g, NewRand(7), 1, 2, 3)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	stats, err := Carve(g, NewRand(7))
	require.NoError(t, err)

	assert.Equal(t, 15, stats.Cells)
	assert.Equal(t, 14, stats.Edges)
	assert.Equal(t, 1, stats.Doors)
	assert.Equal(t, models.TileCorridor, mustGet(t, g, rooms[0].Door.X, rooms[0].Door.Y))

	// The carve stops at the door; the room's floor cell is never carved
	x0, y0, _, _ := RoomBounds(rooms[0])
	assert.Equal(t, models.TileOpen, mustGet(t, g, x0+1, y0+1))
	assert.Equal(t, []models.Point{{X: x0 + 1, Y: y0 + 1}}, g.Points(models.TileOpen))
}

func TestCarve_LargeRoomFloorStaysOpen(t *testing.T) {
	g := seededGrid(t, 15, 15)
	rooms, err := PlaceRooms(g, NewRand(3), 1, 4, 5)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	stats, err := Carve(g, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Doors)

	x0, y0, x1, y1 := RoomBounds(rooms[0])
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			want := models.TileOpen
			if IsPillar(x, y) {
				want = models.TileRoomInterior
			}
			assert.Equal(t, want, mustGet(t, g, x, y), "tile (%d,%d)", x, y)
		}
	}
	// 4x4 room: 3x3 floor cells, 12 floor connectors, 4 pillars
	assert.Len(t, g.Points(models.TileRoomInterior), 4)
	assert.Len(t, g.Points(models.TileOpen), 9+12)
}

func TestCarve_StartIsCorridor(t *testing.T) {
	g := seededGrid(t, 5, 5)
	stats, err := Carve(g, NewRand(1))
	require.NoError(t, err)

	assert.Equal(t, models.TileCorridor, mustGet(t, g, 1, 1))
	assert.Equal(t, 4, stats.Cells)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 1, stats.Sealed)
}

func TestCarve_UnseededGridFailsLoudly(t *testing.T) {
	// Without a border the carve walks off the grid and must surface it
	g, err := NewGrid(5, 5)
	require.NoError(t, err)

	_, err = Carve(g, NewRand(1))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
