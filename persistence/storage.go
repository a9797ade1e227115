package persistence

import (
	"errors"

	"maze-realm/server/models"
)

// ErrNotFound is returned when a requested level or player does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SavePlayer(player *models.Player) error
	LoadPlayer(playerID string) (*models.Player, error)
	LoadPlayerByUsername(username string) (*models.Player, error)
	SaveLevel(level *models.Level) error
	LoadLevel(levelID string) (*models.Level, error)
	LatestLevel() (*models.Level, error)
	Close() error
}
