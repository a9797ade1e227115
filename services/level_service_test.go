package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maze-realm/server/logger"
	"maze-realm/server/maze"
	"maze-realm/server/models"
	"maze-realm/server/persistence"
)

type recordingSpawner struct {
	mu      sync.Mutex
	levels  []*models.Level
	batches [][]Batch
	enemies []models.Enemy
	err     error

	// When hold is set, SpawnLevel for holdStage signals entered and waits on hold
	hold      chan struct{}
	entered   chan struct{}
	holdStage int
}

func (s *recordingSpawner) SpawnLevel(level *models.Level, batches []Batch) error {
	if s.hold != nil && level.Stage == s.holdStage {
		s.entered <- struct{}{}
		<-s.hold
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
	s.batches = append(s.batches, batches)
	return s.err
}

func (s *recordingSpawner) SpawnEnemies(stage int, enemies []models.Enemy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enemies = append(s.enemies, enemies...)
	return nil
}

func (s *recordingSpawner) levelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.levels)
}

func testOptions(seed int64) LevelOptions {
	return LevelOptions{
		Maze: maze.Config{
			Width: 21, Height: 15, RoomAttempts: 10, MinRoomSize: 3, MaxRoomSize: 5, Seed: seed,
		},
		MaxEnemies:     4,
		InitialEnemies: 2,
		ChunkSize:      8,
	}
}

func newTestLevelService(t *testing.T, seed int64) (*LevelService, *recordingSpawner, persistence.Storage, string) {
	t.Helper()
	logger.Discard()

	path := filepath.Join(t.TempDir(), "db.json")
	store, err := persistence.NewJSONStore(path)
	require.NoError(t, err)

	spawner := &recordingSpawner{}
	return NewLevelService(store, spawner, testOptions(seed)), spawner, store, path
}

func goalCount(batches []Batch) int {
	n := 0
	for _, b := range batches {
		for _, p := range b.Placements {
			if p.Kind == models.ObjectGoal {
				n++
			}
		}
	}
	return n
}

func TestLevelService_StartStage(t *testing.T) {
	ls, spawner, store, _ := newTestLevelService(t, 100)

	_, _, _, err := ls.Snapshot()
	assert.ErrorIs(t, err, ErrNoLevel)

	level, err := ls.StartStage(1)
	require.NoError(t, err)
	assert.Equal(t, 1, level.Stage)
	assert.Equal(t, int64(101), level.Seed)

	require.Equal(t, 1, spawner.levelCount())
	assert.Same(t, level, spawner.levels[0])
	assert.Equal(t, 1, goalCount(spawner.batches[0]))
	assert.LessOrEqual(t, len(spawner.enemies), 2)

	saved, err := store.LoadLevel(level.ID)
	require.NoError(t, err)
	assert.Equal(t, level.Tiles, saved.Tiles)

	// The stored seed reproduces the same grid
	res, err := maze.Generate(maze.Config{
		Width: 21, Height: 15, RoomAttempts: 10, MinRoomSize: 3, MaxRoomSize: 5, Seed: level.Seed,
	})
	require.NoError(t, err)
	assert.Equal(t, res.Grid.Snapshot(), level.Tiles)

	current, batches, enemies, err := ls.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, level.ID, current.ID)
	assert.Equal(t, spawner.batches[0], batches)
	assert.ElementsMatch(t, spawner.enemies, enemies)
}

func TestLevelService_EnemiesStayInRooms(t *testing.T) {
	ls, spawner, _, _ := newTestLevelService(t, 7)

	level, err := ls.StartStage(1)
	require.NoError(t, err)
	require.NotEmpty(t, spawner.enemies)

	grid, err := maze.FromTiles(level.Tiles)
	require.NoError(t, err)
	rooms := grid.Points(models.TileRoomInterior)

	for _, e := range spawner.enemies {
		assert.Contains(t, rooms, e.Tile)
		assert.True(t, maze.IsPillar(e.Tile.X, e.Tile.Y))
	}
}

func TestLevelService_PlaceEnemiesRespectsCap(t *testing.T) {
	ls, _, _, _ := newTestLevelService(t, 9)

	_, err := ls.PlaceEnemies(1)
	assert.ErrorIs(t, err, ErrNoLevel)

	_, err = ls.StartStage(1)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := ls.PlaceEnemies(1)
		require.NoError(t, err)
	}
	_, _, enemies, err := ls.Snapshot()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(enemies), 4)

	seen := make(map[models.Point]bool)
	for _, e := range enemies {
		assert.False(t, seen[e.Tile])
		seen[e.Tile] = true
	}
}

func TestLevelService_ReportGoal(t *testing.T) {
	ls, spawner, _, _ := newTestLevelService(t, 5)

	first, err := ls.StartStage(1)
	require.NoError(t, err)

	advanced, next, err := ls.ReportGoal("p1", 1)
	require.NoError(t, err)
	assert.True(t, advanced)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.Stage)
	assert.Equal(t, first.Seed+1, next.Seed)
	assert.NotEqual(t, first.ID, next.ID)

	// A second report for the finished stage is stale
	advanced, next, err = ls.ReportGoal("p2", 1)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Nil(t, next)

	// Reports for stages that are not current are ignored
	advanced, _, err = ls.ReportGoal("p2", 7)
	require.NoError(t, err)
	assert.False(t, advanced)

	assert.Equal(t, 2, spawner.levelCount())
}

func TestLevelService_ReportGoalConcurrent(t *testing.T) {
	ls, spawner, _, _ := newTestLevelService(t, 21)

	_, err := ls.StartStage(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			advanced, _, err := ls.ReportGoal("p", 1)
			assert.NoError(t, err)
			if advanced {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 2, spawner.levelCount())
}

func TestLevelService_SpawnsInPublishOrder(t *testing.T) {
	ls, spawner, _, _ := newTestLevelService(t, 33)

	_, err := ls.StartStage(1)
	require.NoError(t, err)

	spawner.hold = make(chan struct{})
	spawner.entered = make(chan struct{}, 1)
	spawner.holdStage = 2

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		advanced, _, err := ls.ReportGoal("p1", 1)
		assert.NoError(t, err)
		assert.True(t, advanced)
	}()

	// Stage 2 is published and its spawn is stuck in the spawner
	<-spawner.entered

	var advancedTo3 bool
	go func() {
		defer wg.Done()
		advanced, _, err := ls.ReportGoal("p2", 2)
		assert.NoError(t, err)
		advancedTo3 = advanced
	}()

	time.Sleep(50 * time.Millisecond)
	close(spawner.hold)
	wg.Wait()

	current, _, _, err := ls.Snapshot()
	require.NoError(t, err)

	spawner.mu.Lock()
	defer spawner.mu.Unlock()
	stages := make([]int, 0, len(spawner.levels))
	for _, l := range spawner.levels {
		stages = append(stages, l.Stage)
	}
	assert.True(t, advancedTo3)
	assert.Equal(t, []int{1, 2, 3}, stages)
	assert.Equal(t, current.ID, spawner.levels[len(spawner.levels)-1].ID)
}

func TestLevelService_Resume(t *testing.T) {
	ls, _, _, path := newTestLevelService(t, 40)

	_, err := ls.Resume()
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	_, err = ls.StartStage(1)
	require.NoError(t, err)
	_, stage2, err := ls.ReportGoal("p1", 1)
	require.NoError(t, err)

	store, err := persistence.NewJSONStore(path)
	require.NoError(t, err)
	spawner := &recordingSpawner{}
	resumed := NewLevelService(store, spawner, testOptions(0))

	level, err := resumed.Resume()
	require.NoError(t, err)
	assert.Equal(t, stage2.ID, level.ID)
	assert.Equal(t, 1, spawner.levelCount())
	assert.Equal(t, 1, goalCount(spawner.batches[0]))

	// The base seed is recovered, so the next stage matches an uninterrupted run
	_, stage3, err := resumed.ReportGoal("p1", 2)
	require.NoError(t, err)
	assert.Equal(t, stage2.Seed+1, stage3.Seed)
}

func TestLevelService_SpawnError(t *testing.T) {
	ls, spawner, _, _ := newTestLevelService(t, 3)
	spawner.err = errors.New("no clients")

	level, err := ls.StartStage(1)
	assert.Error(t, err)
	require.NotNil(t, level)

	// The level is still current even when replication failed
	current, _, _, err := ls.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, level.ID, current.ID)
}

func TestLevelService_InvalidConfig(t *testing.T) {
	logger.Discard()
	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	opts := testOptions(1)
	opts.Maze.Width = 20
	ls := NewLevelService(store, nil, opts)

	_, err = ls.StartStage(1)
	assert.ErrorIs(t, err, maze.ErrInvalidConfiguration)

	_, err = store.LatestLevel()
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestLevelService_Players(t *testing.T) {
	ls, _, _, _ := newTestLevelService(t, 1)

	assert.Equal(t, 1, ls.AddPlayer(&models.Player{ID: "a"}))
	assert.Equal(t, 2, ls.AddPlayer(&models.Player{ID: "b"}))
	assert.Equal(t, 2, ls.AddPlayer(&models.Player{ID: "b"}))
	assert.Equal(t, 1, ls.RemovePlayer("a"))
	assert.Equal(t, 1, ls.RemovePlayer("missing"))
}
