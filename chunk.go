package voxelize

// ChunkCoordinate identifies a chunk by its horizontal 2-D integer position.
type ChunkCoordinate struct {
	X, Z int32
}

// Chunk owns a dense column of voxels, a derived heightmap, and tracks how
// far it has advanced through the generation pipeline.
type Chunk struct {
	Coord ChunkCoordinate

	size      int32
	maxHeight int32

	voxels    []uint32 // shape (size, maxHeight, size), x-major then y then z
	heightMap []int32  // shape (size, size)

	// StageIndex is the next pipeline stage this chunk is eligible for.
	StageIndex int
}

// NewChunk allocates an empty (all-air) chunk at the given coordinate.
func NewChunk(coord ChunkCoordinate, size, maxHeight int32) *Chunk {
	return &Chunk{
		Coord:     coord,
		size:      size,
		maxHeight: maxHeight,
		voxels:    make([]uint32, size*maxHeight*size),
		heightMap: make([]int32, size*size),
	}
}

// Min returns the inclusive voxel-space min corner of this chunk.
func (c *Chunk) Min() (vx, vy, vz int32) {
	return c.Coord.X * c.size, 0, c.Coord.Z * c.size
}

// Max returns the exclusive voxel-space max corner of this chunk.
func (c *Chunk) Max() (vx, vy, vz int32) {
	return (c.Coord.X + 1) * c.size, c.maxHeight, (c.Coord.Z + 1) * c.size
}

// Contains reports whether an absolute voxel coordinate falls in this chunk.
func (c *Chunk) Contains(vx, vy, vz int32) bool {
	if vy < 0 || vy >= c.maxHeight {
		return false
	}
	minX, _, minZ := c.Min()
	return vx >= minX && vx < minX+c.size && vz >= minZ && vz < minZ+c.size
}

func (c *Chunk) voxelIndex(lx, ly, lz int32) int {
	return int(lx*c.maxHeight*c.size + ly*c.size + lz)
}

func (c *Chunk) heightIndex(lx, lz int32) int {
	return int(lx*c.size + lz)
}

// GetVoxel reads a voxel id given absolute voxel coordinates. Out-of-range
// reads (including height out of bounds) return air.
func (c *Chunk) GetVoxel(vx, vy, vz int32) uint32 {
	if !c.Contains(vx, vy, vz) {
		return AirID
	}
	lx, lz := LocalCoord(vx, vz, c.size)
	return c.voxels[c.voxelIndex(lx, vy, lz)]
}

// SetVoxel writes a voxel id given absolute voxel coordinates. Out-of-range
// writes are silently dropped.
func (c *Chunk) SetVoxel(vx, vy, vz int32, id uint32) {
	if !c.Contains(vx, vy, vz) {
		return
	}
	lx, lz := LocalCoord(vx, vz, c.size)
	c.voxels[c.voxelIndex(lx, vy, lz)] = id
}

// GetHeight returns the cached heightmap value at absolute (vx, vz).
func (c *Chunk) GetHeight(vx, vz int32) int32 {
	if !c.Contains(vx, 0, vz) {
		return 0
	}
	lx, lz := LocalCoord(vx, vz, c.size)
	return c.heightMap[c.heightIndex(lx, lz)]
}

func (c *Chunk) setHeight(vx, vz, h int32) {
	lx, lz := LocalCoord(vx, vz, c.size)
	c.heightMap[c.heightIndex(lx, lz)] = h
}

// RecomputeHeightMap rebuilds the heightmap from current voxel content: for
// each column, the highest non-air voxel's y, or 0 if the column is empty.
func (c *Chunk) RecomputeHeightMap() {
	for lx := int32(0); lx < c.size; lx++ {
		for lz := int32(0); lz < c.size; lz++ {
			top := int32(0)
			for ly := c.maxHeight - 1; ly >= 0; ly-- {
				if c.voxels[c.voxelIndex(lx, ly, lz)] != AirID {
					top = ly
					break
				}
			}
			c.heightMap[c.heightIndex(lx, lz)] = top
		}
	}
}
