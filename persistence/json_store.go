package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"maze-realm/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath  string
	mutex     sync.RWMutex
	fileMutex sync.Mutex // Serializes writers of the temp file
	data      *JSONData
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Players map[string]*models.Player `json:"players"`
	Levels  map[string]*models.Level  `json:"levels"`
	Latest  string                    `json:"latest"` // ID of the most recently saved level
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Players: make(map[string]*models.Player),
			Levels:  make(map[string]*models.Level),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	// Files written by older builds may lack a section
	if js.data.Players == nil {
		js.data.Players = make(map[string]*models.Player)
	}
	if js.data.Levels == nil {
		js.data.Levels = make(map[string]*models.Level)
	}
	return nil
}

// saveToFile writes the whole store to a temp file and renames it over the old one
func (js *JSONStore) saveToFile() error {
	js.fileMutex.Lock()
	defer js.fileMutex.Unlock()

	js.mutex.RLock()
	data, err := json.Marshal(js.data)
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SavePlayer saves a player to the store
func (js *JSONStore) SavePlayer(player *models.Player) error {
	js.mutex.Lock()
	js.data.Players[player.ID] = player
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadPlayer loads a player by ID
func (js *JSONStore) LoadPlayer(playerID string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	player, exists := js.data.Players[playerID]
	if !exists {
		return nil, fmt.Errorf("player with ID %s: %w", playerID, ErrNotFound)
	}

	return player, nil
}

// LoadPlayerByUsername loads a player by username
func (js *JSONStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	for _, player := range js.data.Players {
		if player.Username == username {
			return player, nil
		}
	}

	return nil, fmt.Errorf("player with username %s: %w", username, ErrNotFound)
}

// SaveLevel saves a level and marks it as the latest
func (js *JSONStore) SaveLevel(level *models.Level) error {
	js.mutex.Lock()
	js.data.Levels[level.ID] = level
	js.data.Latest = level.ID
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadLevel loads a level by ID
func (js *JSONStore) LoadLevel(levelID string) (*models.Level, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	level, exists := js.data.Levels[levelID]
	if !exists {
		return nil, fmt.Errorf("level with ID %s: %w", levelID, ErrNotFound)
	}

	return level, nil
}

// LatestLevel loads the most recently saved level
func (js *JSONStore) LatestLevel() (*models.Level, error) {
	js.mutex.RLock()
	latest := js.data.Latest
	js.mutex.RUnlock()

	if latest == "" {
		return nil, fmt.Errorf("latest level: %w", ErrNotFound)
	}
	return js.LoadLevel(latest)
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
