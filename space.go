package voxelize

// Space is a lazy, read-only view over a center chunk plus its neighbors
// out to a fixed margin, assembled on demand for pipeline stages that
// declare a neighbor requirement. It is always backed by an already
// generated ChunkMap; stages must never be able to mutate a neighbor
// through it.
type Space struct {
	chunks *ChunkMap
	center ChunkCoordinate
	margin int32
}

// NewSpace builds a Space around the given center chunk coordinate. The
// backing ChunkMap is read lazily chunk-by-chunk as voxels are queried, so
// building a Space itself never forces neighbor generation.
func NewSpace(chunks *ChunkMap, center ChunkCoordinate, margin int32) *Space {
	return &Space{chunks: chunks, center: center, margin: margin}
}

// GetVoxel reads a voxel id, returning air if the owning chunk falls
// outside the declared margin or has not been generated yet.
func (s *Space) GetVoxel(vx, vy, vz int32) uint32 {
	if !s.withinMargin(vx, vz) {
		return AirID
	}
	c, ok := s.chunks.PeekChunk(s.chunks.ChunkCoordAt(vx, vz))
	if !ok {
		return AirID
	}
	return c.GetVoxel(vx, vy, vz)
}

// SetVoxel is a no-op: Space is a read-only neighbor assembly and must
// never let a stage mutate a neighbor chunk through it.
func (s *Space) SetVoxel(vx, vy, vz int32, id uint32) {}

// GetMaxHeight reads the cached heightmap, bounded the same way as GetVoxel.
func (s *Space) GetMaxHeight(vx, vz int32) int32 {
	if !s.withinMargin(vx, vz) {
		return 0
	}
	return s.chunks.GetMaxHeight(vx, vz)
}

func (s *Space) withinMargin(vx, vz int32) bool {
	coord := s.chunks.ChunkCoordAt(vx, vz)
	dx := coord.X - s.center.X
	dz := coord.Z - s.center.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return dx <= s.margin && dz <= s.margin
}

// NeighborsComplete reports whether every chunk within the margin around
// center exists and has completed every stage strictly before beforeStage.
func NeighborsComplete(chunks *ChunkMap, center ChunkCoordinate, margin int32, beforeStage int) bool {
	for dx := -margin; dx <= margin; dx++ {
		for dz := -margin; dz <= margin; dz++ {
			coord := ChunkCoordinate{X: center.X + dx, Z: center.Z + dz}
			if !chunks.InBounds(coord) {
				continue // world edge: no neighbor to wait on
			}
			c, ok := chunks.PeekChunk(coord)
			if !ok || c.StageIndex < beforeStage {
				return false
			}
		}
	}
	return true
}

var _ VoxelAccess = (*Space)(nil)
