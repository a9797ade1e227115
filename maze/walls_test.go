package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maze-realm/server/models"
)

func TestSeedWalls(t *testing.T) {
	g, err := NewGrid(9, 7)
	require.NoError(t, err)
	require.NoError(t, SeedWalls(g))

	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			want := models.TileOpen
			if x == 0 || y == 0 || x == 8 || y == 6 || IsPillar(x, y) {
				want = models.TileWall
			}
			assert.Equal(t, want, mustGet(t, g, x, y), "tile (%d,%d)", x, y)
		}
	}
	// 28 border tiles plus the 3x2 interior pillars
	assert.Equal(t, 28+6, g.Count(models.TileWall))
}

func TestSeedWalls_Idempotent(t *testing.T) {
	g, err := NewGrid(11, 11)
	require.NoError(t, err)
	require.NoError(t, SeedWalls(g))
	first := g.Snapshot()

	require.NoError(t, SeedWalls(g))
	assert.Equal(t, first, g.Snapshot())
}
