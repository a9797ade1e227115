package models

import "time"

type Player struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	BestStage int       `json:"best_stage"` // Highest stage whose goal this player reached
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Enemy struct {
	ID     string  `json:"id"`
	Stage  int     `json:"stage"`
	Tile   Point   `json:"tile"`
	WorldX float64 `json:"world_x"`
	WorldY float64 `json:"world_y"`
}
