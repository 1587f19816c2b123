package voxelize

import "sync"

// ChunkMap is a world's exclusive store of chunks, keyed by 2-D chunk
// coordinate and bounded by the world's configured min/max chunk. Chunks
// are created lazily on first reference and never destroyed during a
// world's lifetime.
type ChunkMap struct {
	mu        sync.RWMutex
	chunks    map[ChunkCoordinate]*Chunk
	size      int32
	maxHeight int32
	minChunk  [2]int32
	maxChunk  [2]int32
}

func NewChunkMap(size, maxHeight int32, minChunk, maxChunk [2]int32) *ChunkMap {
	return &ChunkMap{
		chunks:    make(map[ChunkCoordinate]*Chunk),
		size:      size,
		maxHeight: maxHeight,
		minChunk:  minChunk,
		maxChunk:  maxChunk,
	}
}

// InBounds reports whether a chunk coordinate is within the world's
// configured min/max chunk (both inclusive).
func (m *ChunkMap) InBounds(coord ChunkCoordinate) bool {
	return coord.X >= m.minChunk[0] && coord.X <= m.maxChunk[0] &&
		coord.Z >= m.minChunk[1] && coord.Z <= m.maxChunk[1]
}

// GetChunk returns the chunk at coord, creating it lazily if it is within
// world bounds and not yet present. Returns nil if out of bounds.
func (m *ChunkMap) GetChunk(coord ChunkCoordinate) *Chunk {
	if !m.InBounds(coord) {
		return nil
	}
	m.mu.RLock()
	c, ok := m.chunks[coord]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.chunks[coord]; ok {
		return c
	}
	c = NewChunk(coord, m.size, m.maxHeight)
	m.chunks[coord] = c
	return c
}

// PeekChunk returns the chunk at coord without creating it.
func (m *ChunkMap) PeekChunk(coord ChunkCoordinate) (*Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[coord]
	return c, ok
}

// IsChunkReady reports whether the chunk at chunk coordinate coord exists
// and has advanced past every registered pipeline stage.
func (m *ChunkMap) IsChunkReady(coord ChunkCoordinate, pipelineLen int) bool {
	c, ok := m.PeekChunk(coord)
	if !ok {
		return false
	}
	return c.StageIndex >= pipelineLen
}

// ChunkCoordAt returns the chunk coordinate owning a voxel position.
func (m *ChunkMap) ChunkCoordAt(vx, vz int32) ChunkCoordinate {
	cx, cz := ChunkCoord(vx, vz, m.size)
	return ChunkCoordinate{X: cx, Z: cz}
}

// GetVoxel implements VoxelAccess over the whole world: out-of-range or
// not-yet-generated chunks read as air.
func (m *ChunkMap) GetVoxel(vx, vy, vz int32) uint32 {
	coord := m.ChunkCoordAt(vx, vz)
	c, ok := m.PeekChunk(coord)
	if !ok {
		return AirID
	}
	return c.GetVoxel(vx, vy, vz)
}

// SetVoxel implements VoxelAccess over the whole world, creating the owning
// chunk lazily.
func (m *ChunkMap) SetVoxel(vx, vy, vz int32, id uint32) {
	coord := m.ChunkCoordAt(vx, vz)
	c := m.GetChunk(coord)
	if c == nil {
		return
	}
	c.SetVoxel(vx, vy, vz, id)
}

// GetMaxHeight returns the cached heightmap value owning (vx, vz), or 0 if
// the chunk does not yet exist.
func (m *ChunkMap) GetMaxHeight(vx, vz int32) int32 {
	coord := m.ChunkCoordAt(vx, vz)
	c, ok := m.PeekChunk(coord)
	if !ok {
		return 0
	}
	return c.GetHeight(vx, vz)
}

var _ VoxelAccess = (*ChunkMap)(nil)
