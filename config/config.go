package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"maze-realm/server/maze"
)

// Config is the server configuration, read from the environment
type Config struct {
	Port        string
	DBType      string // "json" or "postgres"
	DBFile      string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	Maze maze.Config // Maze.Seed 0 means a time-based seed

	MaxEnemies     int
	InitialEnemies int
	EnemySpawn     time.Duration // 0 disables timed spawning
	ChunkSize      int
}

const defaultDatabaseURL = "host=localhost user=mazerealm password=mazerealm dbname=maze_realm sslmode=disable"

// Load reads the configuration from environment variables, falling back to defaults
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DBType:      getEnv("DB_TYPE", "json"),
		DBFile:      getEnv("DB_FILE", "db.json"),
		DatabaseURL: getEnv("DATABASE_URL", defaultDatabaseURL),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	var spawnSeconds int
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"MAZE_WIDTH", maze.DefaultWidth, &cfg.Maze.Width},
		{"MAZE_HEIGHT", maze.DefaultHeight, &cfg.Maze.Height},
		{"MAZE_ROOM_ATTEMPTS", maze.DefaultRoomAttempts, &cfg.Maze.RoomAttempts},
		{"MAZE_MIN_ROOM", maze.DefaultMinRoomSize, &cfg.Maze.MinRoomSize},
		{"MAZE_MAX_ROOM", maze.DefaultMaxRoomSize, &cfg.Maze.MaxRoomSize},
		{"MAX_ENEMIES", 25, &cfg.MaxEnemies},
		{"INITIAL_ENEMIES", 5, &cfg.InitialEnemies},
		{"CHUNK_SIZE", 16, &cfg.ChunkSize},
		{"ENEMY_SPAWN_SECONDS", 20, &spawnSeconds},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.def)
		if err != nil {
			return Config{}, err
		}
		*v.dest = n
	}
	cfg.EnemySpawn = time.Duration(spawnSeconds) * time.Second

	if raw, ok := os.LookupEnv("MAZE_SEED"); ok && raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAZE_SEED %q: %w", raw, err)
		}
		cfg.Maze.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c Config) Validate() error {
	if c.DBType != "json" && c.DBType != "postgres" {
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.MaxEnemies < 0 || c.InitialEnemies < 0 || c.EnemySpawn < 0 {
		return fmt.Errorf("enemy limits must not be negative")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	return c.Maze.Validate()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
