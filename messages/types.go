package messages

import (
	"maze-realm/server/models"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeJoin        MessageType = "join"
	MessageTypeJoinSuccess MessageType = "join_success"
	MessageTypeLevelStart  MessageType = "level_start"
	MessageTypeLevelBatch  MessageType = "level_batch"
	MessageTypeEnemySpawn  MessageType = "enemy_spawn"
	MessageTypeGoalReached MessageType = "goal_reached"
	MessageTypeStageClear  MessageType = "stage_cleared"
	MessageTypeError       MessageType = "error"
)

// BaseMessage is the base structure for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// JoinMessage asks to enter the current level under a username
type JoinMessage struct {
	Username string `json:"username"`
}

// JoinSuccessMessage confirms a join
type JoinSuccessMessage struct {
	PlayerID    string `json:"player_id"`
	BestStage   int    `json:"best_stage"`
	PlayerCount int    `json:"player_count"`
	Message     string `json:"message"`
}

// LevelStartMessage announces a level. Its placements follow as
// BatchCount level_batch messages.
type LevelStartMessage struct {
	LevelID    string        `json:"level_id"`
	Stage      int           `json:"stage"`
	Seed       int64         `json:"seed"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	TileScale  float64       `json:"tile_scale"`
	Goal       models.Point  `json:"goal"`
	Rooms      []models.Room `json:"rooms"`
	BatchCount int           `json:"batch_count"`
}

// LevelBatchMessage carries the placements of one chunk
type LevelBatchMessage struct {
	LevelID    string             `json:"level_id"`
	Index      int                `json:"index"`
	ChunkX     int                `json:"chunk_x"`
	ChunkY     int                `json:"chunk_y"`
	Placements []models.Placement `json:"placements"`
}

// EnemySpawnMessage lists enemies placed on the current level
type EnemySpawnMessage struct {
	Stage   int            `json:"stage"`
	Enemies []models.Enemy `json:"enemies"`
}

// GoalReachedMessage reports that the sender stepped on the goal
type GoalReachedMessage struct {
	Stage int `json:"stage"`
}

// StageClearedMessage tells everyone who finished a stage
type StageClearedMessage struct {
	Stage    int    `json:"stage"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
