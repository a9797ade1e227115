package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"maze-realm/server/logger"
	"maze-realm/server/maze"
	"maze-realm/server/messages"
	"maze-realm/server/models"
	"maze-realm/server/services"
)

// ClientManager manages connected clients and replicates levels to them.
// It is the services.Spawner of a running server.
type ClientManager struct {
	clients map[string]*ClientHandler // Map PlayerID to ClientHandler
	mutex   sync.RWMutex

	// spawnMutex orders level replication against clients catching up on join
	spawnMutex sync.Mutex
}

var _ services.Spawner = (*ClientManager)(nil)

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
	}
}

// AddClient registers a client. catchUp runs first, so anything replicated
// after the client is visible arrives after its catch-up messages.
func (cm *ClientManager) AddClient(playerID string, handler *ClientHandler, catchUp func()) {
	cm.spawnMutex.Lock()
	defer cm.spawnMutex.Unlock()

	if catchUp != nil {
		catchUp()
	}

	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[playerID] = handler
}

// RemoveClient removes a client unless the player has since reconnected
// through another handler
func (cm *ClientManager) RemoveClient(playerID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	if cm.clients[playerID] == handler {
		delete(cm.clients, playerID)
	}
}

// ClientCount returns the number of registered clients
func (cm *ClientManager) ClientCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to all connected clients
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, client := range cm.clients {
		if err := client.conn.SendMessage(msg); err != nil {
			logger.Log.WithError(err).WithField("player_id", id).Warn("Error broadcasting to client")
		}
	}
}

// SpawnLevel broadcasts a level announcement followed by its batches
func (cm *ClientManager) SpawnLevel(level *models.Level, batches []services.Batch) error {
	cm.spawnMutex.Lock()
	defer cm.spawnMutex.Unlock()

	for _, msg := range levelMessages(level, batches) {
		cm.BroadcastToAll(msg)
	}

	logger.Log.WithFields(logrus.Fields{
		"level_id": level.ID,
		"stage":    level.Stage,
		"batches":  len(batches),
		"clients":  cm.ClientCount(),
	}).Info("Level replicated")
	return nil
}

// SpawnEnemies broadcasts newly placed enemies
func (cm *ClientManager) SpawnEnemies(stage int, enemies []models.Enemy) error {
	cm.spawnMutex.Lock()
	defer cm.spawnMutex.Unlock()

	cm.BroadcastToAll(enemyMessage(stage, enemies))
	return nil
}

// levelMessages builds the level_start message and one level_batch per batch
func levelMessages(level *models.Level, batches []services.Batch) []messages.BaseMessage {
	msgs := make([]messages.BaseMessage, 0, len(batches)+1)
	msgs = append(msgs, messages.BaseMessage{
		Type: messages.MessageTypeLevelStart,
		Payload: messages.LevelStartMessage{
			LevelID:    level.ID,
			Stage:      level.Stage,
			Seed:       level.Seed,
			Width:      level.Width,
			Height:     level.Height,
			TileScale:  maze.TileScale,
			Goal:       level.Goal,
			Rooms:      level.Rooms,
			BatchCount: len(batches),
		},
	})
	for i, b := range batches {
		msgs = append(msgs, messages.BaseMessage{
			Type: messages.MessageTypeLevelBatch,
			Payload: messages.LevelBatchMessage{
				LevelID:    level.ID,
				Index:      i,
				ChunkX:     b.ChunkX,
				ChunkY:     b.ChunkY,
				Placements: b.Placements,
			},
		})
	}
	return msgs
}

func enemyMessage(stage int, enemies []models.Enemy) messages.BaseMessage {
	return messages.BaseMessage{
		Type: messages.MessageTypeEnemySpawn,
		Payload: messages.EnemySpawnMessage{
			Stage:   stage,
			Enemies: enemies,
		},
	}
}
