package services

import (
	"fmt"
	"sort"

	"maze-realm/server/models"
)

// Batch is a group of placements inside one square chunk of the level
type Batch struct {
	ChunkX     int                `json:"chunk_x"`
	ChunkY     int                `json:"chunk_y"`
	Placements []models.Placement `json:"placements"`
}

// Batcher splits a level's placements into chunk-sized batches so a spawner
// can stream a large level without one oversized message
type Batcher struct {
	chunkSize int
}

// NewBatcher creates a batcher with square chunks of chunkSize tiles
func NewBatcher(chunkSize int) *Batcher {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &Batcher{chunkSize: chunkSize}
}

// getChunkCoordinates calculates the chunk coordinates for a tile
func (b *Batcher) getChunkCoordinates(p models.Point) (int, int) {
	return p.X / b.chunkSize, p.Y / b.chunkSize
}

// getChunkKey generates a unique key for a chunk
func (b *Batcher) getChunkKey(chunkX, chunkY int) string {
	return fmt.Sprintf("%d,%d", chunkX, chunkY)
}

// Split groups placements by chunk. Batches are ordered row-major by chunk
// and keep the input order inside each chunk, so every placement, including
// the single goal, appears exactly once.
func (b *Batcher) Split(placements []models.Placement) []Batch {
	index := make(map[string]int)
	var batches []Batch

	for _, p := range placements {
		cx, cy := b.getChunkCoordinates(p.Tile)
		key := b.getChunkKey(cx, cy)
		i, exists := index[key]
		if !exists {
			i = len(batches)
			index[key] = i
			batches = append(batches, Batch{ChunkX: cx, ChunkY: cy})
		}
		batches[i].Placements = append(batches[i].Placements, p)
	}

	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].ChunkY != batches[j].ChunkY {
			return batches[i].ChunkY < batches[j].ChunkY
		}
		return batches[i].ChunkX < batches[j].ChunkX
	})
	return batches
}
