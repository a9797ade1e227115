package maze

import (
	"fmt"
	"math/rand"

	"maze-realm/server/models"
)

// ConnectorDims returns the size of the connector lattice, the interior
// pillars rooms are anchored to.
func ConnectorDims(width, height int) (int, int) {
	return (width - 3) / 2, (height - 3) / 2
}

// RoomBounds maps a room onto the grid, returning the pillars at its top-left
// and bottom-right corners. The room's wall ring runs along this rectangle.
func RoomBounds(r models.Room) (x0, y0, x1, y1 int) {
	x0, y0 = r.X*2+2, r.Y*2+2
	return x0, y0, x0 + 2*(r.Width-1), y0 + 2*(r.Height-1)
}

// PlaceRooms tries attempts times to carve a non-overlapping room. A room is
// enclosed by a wall ring with a single Open door, and the pillars inside the
// ring become RoomInterior, the tiles enemies may spawn on. Rejected attempts are skipped, so zero rooms is
// a valid result.
func PlaceRooms(g *Grid, rng *rand.Rand, attempts, minSize, maxSize int) ([]models.Room, error) {
	if err := validateRoomPolicy(attempts, minSize, maxSize); err != nil {
		return nil, err
	}

	cw, ch := ConnectorDims(g.width, g.height)
	taken := make([]bool, cw*ch)
	var rooms []models.Room

	for i := 0; i < attempts; i++ {
		room := models.Room{
			Width:  minSize + rng.Intn(maxSize-minSize),
			Height: minSize + rng.Intn(maxSize-minSize),
		}
		if room.Width > cw || room.Height > ch {
			continue
		}
		room.X = rng.Intn(cw - room.Width + 1)
		room.Y = rng.Intn(ch - room.Height + 1)

		if isTaken(taken, cw, room) {
			continue
		}
		for cy := room.Y; cy < room.Y+room.Height; cy++ {
			for cx := room.X; cx < room.X+room.Width; cx++ {
				taken[cy*cw+cx] = true
			}
		}

		door, err := enclose(g, rng, room)
		if err != nil {
			return nil, err
		}
		room.Door = door
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func isTaken(taken []bool, cw int, r models.Room) bool {
	for cy := r.Y; cy < r.Y+r.Height; cy++ {
		for cx := r.X; cx < r.X+r.Width; cx++ {
			if taken[cy*cw+cx] {
				return true
			}
		}
	}
	return false
}

// enclose walls the room's ring, opens one door and marks the pillars strictly
// inside the ring RoomInterior. Interior cells and connectors stay Open.
func enclose(g *Grid, rng *rand.Rand, r models.Room) (models.Point, error) {
	x0, y0, x1, y1 := RoomBounds(r)
	var candidates []models.Point

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			onRing := x == x0 || x == x1 || y == y0 || y == y1
			switch {
			case onRing:
				if !IsPillar(x, y) {
					candidates = append(candidates, models.Point{X: x, Y: y})
				}
				if err := g.Set(x, y, models.TileWall); err != nil {
					return models.Point{}, err
				}
			case IsPillar(x, y):
				if err := g.Set(x, y, models.TileRoomInterior); err != nil {
					return models.Point{}, err
				}
			}
		}
	}

	if len(candidates) == 0 {
		return models.Point{}, fmt.Errorf("%w: room %dx%d at (%d,%d) has no door candidates",
			ErrInvalidConfiguration, r.Width, r.Height, r.X, r.Y)
	}
	door := candidates[rng.Intn(len(candidates))]
	if err := g.Set(door.X, door.Y, models.TileOpen); err != nil {
		return models.Point{}, err
	}
	return door, g.MarkDoor(door.X, door.Y)
}
