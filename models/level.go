package models

import "time"

// Room is a rectangle on the connector lattice. X and Y are the top-left
// connector cell; Width and Height are measured in connector cells.
type Room struct {
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Door   Point `json:"door"` // Grid coordinate of the single door tile
}

// Overlaps reports whether two rooms share a connector cell
func (r Room) Overlaps(other Room) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// Level is the immutable snapshot of one generated stage
type Level struct {
	ID        string    `json:"id"`
	Stage     int       `json:"stage"`
	Seed      int64     `json:"seed"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Tiles     [][]Tile  `json:"tiles"` // Tiles[y][x]
	Rooms     []Room    `json:"rooms"`
	Goal      Point     `json:"goal"`
	CreatedAt time.Time `json:"created_at"`
}

// TileAt returns the tile at (x, y) and false if the coordinate is outside the level
func (l *Level) TileAt(x, y int) (Tile, bool) {
	if y < 0 || y >= len(l.Tiles) || x < 0 || x >= len(l.Tiles[y]) {
		return TileWall, false
	}
	return l.Tiles[y][x], true
}
