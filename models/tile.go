package models

// Tile is the classification of a single maze tile. Every tile holds exactly
// one classification, so a tile can never be a wall and a path at once.
// Tiles are stored as integers to keep level snapshots compact.
type Tile int

const (
	TileWall Tile = iota
	TileOpen
	TileCorridor
	TileRoomInterior
	TileGoal
)

// String returns the tile's name
func (t Tile) String() string {
	switch t {
	case TileWall:
		return "wall"
	case TileOpen:
		return "open"
	case TileCorridor:
		return "corridor"
	case TileRoomInterior:
		return "room"
	case TileGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// Passable reports whether a player can stand on the tile
func (t Tile) Passable() bool {
	return t != TileWall
}

// ObjectKind names the game object a spawner creates for a tile
type ObjectKind string

const (
	ObjectWall  ObjectKind = "wall"
	ObjectPoint ObjectKind = "point"
	ObjectGoal  ObjectKind = "goal"
)

// Point is an integer tile coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement is a request to create one game object at a tile
type Placement struct {
	Tile   Point      `json:"tile"`
	Kind   ObjectKind `json:"kind"`
	WorldX float64    `json:"world_x"`
	WorldY float64    `json:"world_y"`
}
