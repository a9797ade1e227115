package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"maze-realm/server/models"
	"maze-realm/server/persistence"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidUsername = errors.New("username must be 1-32 characters")
)

const maxUsernameLength = 32

// PlayerService manages player-related operations
type PlayerService struct {
	players map[string]*models.Player
	db      persistence.Storage
	mutex   sync.RWMutex
}

// NewPlayerService creates a new player service
func NewPlayerService(db persistence.Storage) *PlayerService {
	return &PlayerService{
		players: make(map[string]*models.Player),
		db:      db,
	}
}

// GetOrCreatePlayer gets an existing player or creates a new one
func (ps *PlayerService) GetOrCreatePlayer(username string) (*models.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for _, player := range ps.players {
		if player.Username == username {
			return player, nil
		}
	}

	player, err := ps.db.LoadPlayerByUsername(username)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			return nil, fmt.Errorf("failed to load player: %w", err)
		}

		now := time.Now()
		player = &models.Player{
			ID:        uuid.NewString(),
			Username:  username,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := ps.db.SavePlayer(player); err != nil {
			return nil, fmt.Errorf("failed to save new player to database: %w", err)
		}
	}

	ps.players[player.ID] = player
	return player, nil
}

// GetPlayer retrieves a player by ID
func (ps *PlayerService) GetPlayer(playerID string) (*models.Player, error) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	player, exists := ps.players[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// RecordStage stores stage as the player's best if it beats the previous one
func (ps *PlayerService) RecordStage(playerID string, stage int) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	player, exists := ps.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}
	if stage <= player.BestStage {
		return nil
	}

	player.BestStage = stage
	player.UpdatedAt = time.Now()

	if err := ps.db.SavePlayer(player); err != nil {
		return fmt.Errorf("failed to save updated player to database: %w", err)
	}
	return nil
}
