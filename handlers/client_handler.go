package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"maze-realm/server/logger"
	"maze-realm/server/messages"
	"maze-realm/server/models"
	"maze-realm/server/network"
	"maze-realm/server/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	playerService *services.PlayerService
	levelService  *services.LevelService
	clientManager *ClientManager
	player        *models.Player
}

// ServeWS upgrades HTTP requests to websocket client connections
func ServeWS(playerService *services.PlayerService, levelService *services.LevelService, clientManager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to upgrade connection")
			return
		}
		HandleClientConnection(wsConn, playerService, levelService, clientManager)
	}
}

// HandleClientConnection serves one client until its connection closes
func HandleClientConnection(wsConn *websocket.Conn, playerService *services.PlayerService, levelService *services.LevelService, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn)
	logger.Log.WithField("remote", conn.RemoteAddr()).Info("New connection")

	handler := &ClientHandler{
		conn:          conn,
		playerService: playerService,
		levelService:  levelService,
		clientManager: clientManager,
	}

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	if handler.player != nil {
		clientManager.RemoveClient(handler.player.ID, handler)
		remaining := levelService.RemovePlayer(handler.player.ID)
		logger.Log.WithFields(logrus.Fields{
			"player_id": handler.player.ID,
			"username":  handler.player.Username,
			"players":   remaining,
		}).Info("Player left")
	}
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	logger.Log.WithField("remote", conn.RemoteAddr()).Debugf("Received: %s", message)

	var baseMsg struct {
		Type    messages.MessageType `json:"type"`
		Payload json.RawMessage      `json:"payload"`
	}
	if err := json.Unmarshal(message, &baseMsg); err != nil {
		logger.Log.WithError(err).Warn("Error unmarshaling message")
		h.sendError("BAD_MESSAGE", "Message is not valid JSON")
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeJoin:
		h.handleJoin(baseMsg.Payload)
	case messages.MessageTypeGoalReached:
		h.handleGoalReached(baseMsg.Payload)
	default:
		logger.Log.WithField("type", baseMsg.Type).Warn("Unknown message type")
		h.sendError("UNKNOWN_MESSAGE_TYPE", "Unknown message type received")
	}
}

// handleJoin registers the player and catches them up on the current level
func (h *ClientHandler) handleJoin(payload json.RawMessage) {
	if h.player != nil {
		h.sendError("ALREADY_JOINED", "Already joined")
		return
	}

	var joinMsg messages.JoinMessage
	if err := json.Unmarshal(payload, &joinMsg); err != nil {
		h.sendError("BAD_MESSAGE", "Malformed join payload")
		return
	}

	player, err := h.playerService.GetOrCreatePlayer(joinMsg.Username)
	if err != nil {
		if errors.Is(err, services.ErrInvalidUsername) {
			h.sendError("INVALID_USERNAME", err.Error())
			return
		}
		logger.Log.WithError(err).WithField("username", joinMsg.Username).Error("Error getting/creating player")
		h.sendError("JOIN_FAILED", "Failed to join")
		return
	}
	h.player = player

	count := h.levelService.AddPlayer(player)
	h.clientManager.AddClient(player.ID, h, func() {
		h.send(messages.BaseMessage{
			Type: messages.MessageTypeJoinSuccess,
			Payload: messages.JoinSuccessMessage{
				PlayerID:    player.ID,
				BestStage:   player.BestStage,
				PlayerCount: count,
				Message:     "Join successful",
			},
		})
		h.sendCurrentLevel()
	})

	logger.Log.WithFields(logrus.Fields{
		"player_id": player.ID,
		"username":  player.Username,
		"players":   count,
	}).Info("Player joined")
}

// sendCurrentLevel replays the current level and its enemies to this client
func (h *ClientHandler) sendCurrentLevel() {
	level, batches, enemies, err := h.levelService.Snapshot()
	if err != nil {
		if !errors.Is(err, services.ErrNoLevel) {
			logger.Log.WithError(err).Error("Error reading current level")
		}
		return
	}

	for _, msg := range levelMessages(level, batches) {
		h.send(msg)
	}
	if len(enemies) > 0 {
		h.send(enemyMessage(level.Stage, enemies))
	}
}

// handleGoalReached forwards a goal report; only the first one per stage counts
func (h *ClientHandler) handleGoalReached(payload json.RawMessage) {
	if h.player == nil {
		h.sendError("NOT_JOINED", "Join before reporting a goal")
		return
	}

	var goalMsg messages.GoalReachedMessage
	if err := json.Unmarshal(payload, &goalMsg); err != nil {
		h.sendError("BAD_MESSAGE", "Malformed goal payload")
		return
	}

	advanced, next, err := h.levelService.ReportGoal(h.player.ID, goalMsg.Stage)
	if err != nil {
		logger.Log.WithError(err).WithField("stage", goalMsg.Stage).Error("Error advancing stage")
		if !advanced {
			h.sendError("GOAL_FAILED", "Failed to start the next stage")
			return
		}
	}
	if !advanced {
		return
	}

	if err := h.playerService.RecordStage(h.player.ID, goalMsg.Stage); err != nil {
		logger.Log.WithError(err).WithField("player_id", h.player.ID).Warn("Error recording stage")
	}

	h.clientManager.BroadcastToAll(messages.BaseMessage{
		Type: messages.MessageTypeStageClear,
		Payload: messages.StageClearedMessage{
			Stage:    goalMsg.Stage,
			PlayerID: h.player.ID,
			Username: h.player.Username,
		},
	})

	logger.Log.WithFields(logrus.Fields{
		"player_id":  h.player.ID,
		"stage":      goalMsg.Stage,
		"next_level": next.ID,
	}).Info("Stage cleared")
}

func (h *ClientHandler) send(msg messages.BaseMessage) {
	if err := h.conn.SendMessage(msg); err != nil {
		logger.Log.WithError(err).WithField("type", msg.Type).Warn("Error sending message")
	}
}

func (h *ClientHandler) sendError(code, message string) {
	h.send(messages.BaseMessage{
		Type: messages.MessageTypeError,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	})
}
