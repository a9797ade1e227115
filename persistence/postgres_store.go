package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"maze-realm/server/logger"
	"maze-realm/server/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema initializes the database schema
func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		best_stage INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS levels (
		id TEXT PRIMARY KEY,
		stage INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		tiles JSONB NOT NULL,
		rooms JSONB NOT NULL,
		goal_x INTEGER NOT NULL,
		goal_y INTEGER NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS levels_created_at_idx ON levels (created_at DESC);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SavePlayer saves a player to the database
func (ps *PostgresStore) SavePlayer(player *models.Player) error {
	query := `
	INSERT INTO players (id, username, best_stage)
	VALUES ($1, $2, $3)
	ON CONFLICT (id)
	DO UPDATE SET
		best_stage = $3,
		updated_at = NOW()
	`

	if _, err := ps.db.Exec(query, player.ID, player.Username, player.BestStage); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

// LoadPlayer loads a player from the database by ID
func (ps *PostgresStore) LoadPlayer(playerID string) (*models.Player, error) {
	query := `SELECT id, username, best_stage, created_at, updated_at FROM players WHERE id = $1`
	return ps.scanPlayer(ps.db.QueryRow(query, playerID), "ID "+playerID)
}

// LoadPlayerByUsername loads a player from the database by username
func (ps *PostgresStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	query := `SELECT id, username, best_stage, created_at, updated_at FROM players WHERE username = $1`
	return ps.scanPlayer(ps.db.QueryRow(query, username), "username "+username)
}

func (ps *PostgresStore) scanPlayer(row *sql.Row, key string) (*models.Player, error) {
	var player models.Player
	err := row.Scan(&player.ID, &player.Username, &player.BestStage, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("player with %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}

// SaveLevel saves a level to the database. Levels are immutable, so a second
// save of the same ID is ignored.
func (ps *PostgresStore) SaveLevel(level *models.Level) error {
	tilesJSON, err := json.Marshal(level.Tiles)
	if err != nil {
		return fmt.Errorf("failed to marshal level tiles: %w", err)
	}
	roomsJSON, err := json.Marshal(level.Rooms)
	if err != nil {
		return fmt.Errorf("failed to marshal level rooms: %w", err)
	}

	query := `
	INSERT INTO levels (id, stage, seed, width, height, tiles, rooms, goal_x, goal_y, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO NOTHING
	`

	_, err = ps.db.Exec(query,
		level.ID, level.Stage, level.Seed, level.Width, level.Height,
		string(tilesJSON), string(roomsJSON), level.Goal.X, level.Goal.Y, level.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save level: %w", err)
	}

	return nil
}

const levelColumns = `id, stage, seed, width, height, tiles, rooms, goal_x, goal_y, created_at`

// LoadLevel loads a level from the database by ID
func (ps *PostgresStore) LoadLevel(levelID string) (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1`
	return ps.scanLevel(ps.db.QueryRow(query, levelID), "ID "+levelID)
}

// LatestLevel loads the most recently created level
func (ps *PostgresStore) LatestLevel() (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels ORDER BY created_at DESC LIMIT 1`
	return ps.scanLevel(ps.db.QueryRow(query), "latest created_at")
}

func (ps *PostgresStore) scanLevel(row *sql.Row, key string) (*models.Level, error) {
	var level models.Level
	var tilesJSON, roomsJSON string

	err := row.Scan(
		&level.ID, &level.Stage, &level.Seed, &level.Width, &level.Height,
		&tilesJSON, &roomsJSON, &level.Goal.X, &level.Goal.Y, &level.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("level with %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load level: %w", err)
	}

	if err := json.Unmarshal([]byte(tilesJSON), &level.Tiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level tiles: %w", err)
	}
	if err := json.Unmarshal([]byte(roomsJSON), &level.Rooms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level rooms: %w", err)
	}

	return &level, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	logger.Log.Info("Closing database connection")
	return ps.db.Close()
}
