package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"maze-realm/server/logger"
	"maze-realm/server/maze"
	"maze-realm/server/models"
	"maze-realm/server/persistence"
)

var ErrNoLevel = errors.New("no level has been generated")

// Spawner replicates a generated level's objects to participants. Batches
// arrive in order and together carry exactly one goal placement.
type Spawner interface {
	SpawnLevel(level *models.Level, batches []Batch) error
	SpawnEnemies(stage int, enemies []models.Enemy) error
}

// LevelOptions configures level generation and enemy placement
type LevelOptions struct {
	Maze           maze.Config // Maze.Seed is the base seed; 0 picks one from the clock
	MaxEnemies     int
	InitialEnemies int
	ChunkSize      int
}

// LevelService is the single authority for generating levels. It runs the
// maze pipeline once per stage, persists the snapshot, and hands the
// resulting placements to the spawner.
type LevelService struct {
	opts     LevelOptions
	baseSeed int64
	db       persistence.Storage
	spawner  Spawner
	batcher  *Batcher

	current     *models.Level
	batches     []Batch
	placer      *EnemyPlacer
	enemies     []models.Enemy
	goalReached bool
	players     map[string]*models.Player
	mutex       sync.RWMutex

	// spawnMutex is held from publish through spawn, so the spawner sees
	// levels and enemies in publish order
	spawnMutex sync.Mutex
}

// NewLevelService creates a new level service
func NewLevelService(db persistence.Storage, spawner Spawner, opts LevelOptions) *LevelService {
	baseSeed := opts.Maze.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	return &LevelService{
		opts:     opts,
		baseSeed: baseSeed,
		db:       db,
		spawner:  spawner,
		batcher:  NewBatcher(opts.ChunkSize),
		players:  make(map[string]*models.Player),
	}
}

// stagePlan bundles everything built for one level before it is published
type stagePlan struct {
	level   *models.Level
	batches []Batch
	placer  *EnemyPlacer
	enemies []models.Enemy
}

// StartStage generates, persists and spawns the level for the given stage
func (ls *LevelService) StartStage(n int) (*models.Level, error) {
	ls.spawnMutex.Lock()
	defer ls.spawnMutex.Unlock()

	ls.mutex.Lock()
	st, err := ls.generate(n)
	if err != nil {
		ls.mutex.Unlock()
		return nil, err
	}
	ls.publish(st)
	ls.mutex.Unlock()

	return st.level, ls.spawn(st)
}

// Resume adopts the most recently saved level instead of generating a new
// one. It returns persistence.ErrNotFound when nothing has been saved yet.
func (ls *LevelService) Resume() (*models.Level, error) {
	level, err := ls.db.LatestLevel()
	if err != nil {
		return nil, err
	}

	grid, err := maze.FromTiles(level.Tiles)
	if err != nil {
		return nil, fmt.Errorf("stored level %s: %w", level.ID, err)
	}
	placements, err := maze.Materialize(grid)
	if err != nil {
		return nil, fmt.Errorf("stored level %s: %w", level.ID, err)
	}

	placer := NewEnemyPlacer(grid, level.Stage, ls.opts.MaxEnemies, maze.NewRand(level.Seed))
	st := &stagePlan{
		level:   level,
		batches: ls.batcher.Split(placements),
		placer:  placer,
		enemies: placer.PlaceN(ls.opts.InitialEnemies),
	}

	ls.spawnMutex.Lock()
	defer ls.spawnMutex.Unlock()

	ls.mutex.Lock()
	ls.baseSeed = level.Seed - int64(level.Stage)
	ls.publish(st)
	ls.mutex.Unlock()

	ls.log(level).Info("Resumed stored level")
	return level, ls.spawn(st)
}

// ReportGoal records that a player reached the goal of the given stage. The
// first report for the current stage advances to the next one; later or
// stale reports are ignored and return false.
func (ls *LevelService) ReportGoal(playerID string, n int) (bool, *models.Level, error) {
	ls.spawnMutex.Lock()
	defer ls.spawnMutex.Unlock()

	ls.mutex.Lock()
	if ls.current == nil || ls.current.Stage != n || ls.goalReached {
		ls.mutex.Unlock()
		return false, nil, nil
	}
	ls.goalReached = true

	ls.log(ls.current).WithField("player_id", playerID).Info("Goal reached")

	st, err := ls.generate(n + 1)
	if err != nil {
		ls.goalReached = false
		ls.mutex.Unlock()
		return false, nil, err
	}
	ls.publish(st)
	ls.mutex.Unlock()

	return true, st.level, ls.spawn(st)
}

// generate runs the maze pipeline for a stage and persists the result.
// Nothing is published if any step fails.
func (ls *LevelService) generate(n int) (*stagePlan, error) {
	cfg := ls.opts.Maze
	cfg.Seed = ls.baseSeed + int64(n)

	res, err := maze.Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate stage %d: %w", n, err)
	}
	placements, err := maze.Materialize(res.Grid)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize stage %d: %w", n, err)
	}

	level := &models.Level{
		ID:        uuid.NewString(),
		Stage:     n,
		Seed:      cfg.Seed,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Tiles:     res.Grid.Snapshot(),
		Rooms:     res.Rooms,
		Goal:      res.Goal,
		CreatedAt: time.Now().UTC(),
	}
	if err := ls.db.SaveLevel(level); err != nil {
		return nil, fmt.Errorf("failed to save stage %d: %w", n, err)
	}

	placer := NewEnemyPlacer(res.Grid, n, ls.opts.MaxEnemies, maze.NewRand(cfg.Seed))

	ls.log(level).WithFields(logrus.Fields{
		"rooms":      len(res.Rooms),
		"cells":      res.Stats.Cells,
		"doors":      res.Stats.Doors,
		"sealed":     res.Stats.Sealed,
		"placements": len(placements),
	}).Info("Level generated")

	return &stagePlan{
		level:   level,
		batches: ls.batcher.Split(placements),
		placer:  placer,
		enemies: placer.PlaceN(ls.opts.InitialEnemies),
	}, nil
}

// publish makes a stage current. Callers hold the write lock.
func (ls *LevelService) publish(st *stagePlan) {
	ls.current = st.level
	ls.batches = st.batches
	ls.placer = st.placer
	ls.enemies = st.enemies
	ls.goalReached = false
}

// spawn hands a published stage to the spawner outside the service lock
func (ls *LevelService) spawn(st *stagePlan) error {
	if ls.spawner == nil {
		return nil
	}
	if err := ls.spawner.SpawnLevel(st.level, st.batches); err != nil {
		return fmt.Errorf("failed to spawn level %s: %w", st.level.ID, err)
	}
	if len(st.enemies) > 0 {
		if err := ls.spawner.SpawnEnemies(st.level.Stage, st.enemies); err != nil {
			return fmt.Errorf("failed to spawn enemies for level %s: %w", st.level.ID, err)
		}
	}
	return nil
}

// PlaceEnemies places up to n more enemies on the current level and spawns them
func (ls *LevelService) PlaceEnemies(n int) ([]models.Enemy, error) {
	ls.spawnMutex.Lock()
	defer ls.spawnMutex.Unlock()

	ls.mutex.Lock()
	if ls.current == nil {
		ls.mutex.Unlock()
		return nil, ErrNoLevel
	}
	stageNum := ls.current.Stage
	enemies := ls.placer.PlaceN(n)
	ls.enemies = append(ls.enemies, enemies...)
	ls.mutex.Unlock()

	if len(enemies) == 0 || ls.spawner == nil {
		return enemies, nil
	}
	return enemies, ls.spawner.SpawnEnemies(stageNum, enemies)
}

// RunEnemySpawner places one enemy per interval until ctx is done
func (ls *LevelService) RunEnemySpawner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enemies, err := ls.PlaceEnemies(1)
			if err != nil && !errors.Is(err, ErrNoLevel) {
				logger.Log.WithError(err).Warn("Enemy spawn failed")
				continue
			}
			for _, e := range enemies {
				logger.Log.WithFields(logrus.Fields{
					"enemy_id": e.ID,
					"stage":    e.Stage,
					"x":        e.Tile.X,
					"y":        e.Tile.Y,
				}).Debug("Enemy spawned")
			}
		}
	}
}

// Snapshot returns the current level with its batches and enemies, for
// participants that join mid-stage
func (ls *LevelService) Snapshot() (*models.Level, []Batch, []models.Enemy, error) {
	ls.mutex.RLock()
	defer ls.mutex.RUnlock()

	if ls.current == nil {
		return nil, nil, nil, ErrNoLevel
	}
	return ls.current, ls.batches, ls.enemies, nil
}

// AddPlayer adds a player to the level and returns the player count
func (ls *LevelService) AddPlayer(player *models.Player) int {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()

	ls.players[player.ID] = player
	return len(ls.players)
}

// RemovePlayer removes a player from the level and returns the player count
func (ls *LevelService) RemovePlayer(playerID string) int {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()

	delete(ls.players, playerID)
	return len(ls.players)
}

func (ls *LevelService) log(level *models.Level) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"level_id": level.ID,
		"stage":    level.Stage,
		"seed":     level.Seed,
	})
}
