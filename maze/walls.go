package maze

import "maze-realm/server/models"

// SeedWalls marks the outer border and every pillar as Wall. Other tiles are left untouched.
func SeedWalls(g *Grid) error {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			border := x == 0 || y == 0 || x == g.width-1 || y == g.height-1
			if !border && !IsPillar(x, y) {
				continue
			}
			if err := g.Set(x, y, models.TileWall); err != nil {
				return err
			}
		}
	}
	return nil
}
