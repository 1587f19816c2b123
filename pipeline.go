package voxelize

// SpaceRequirement declares the neighbor context a chunk stage needs before
// it is eligible to run on a given chunk.
type SpaceRequirement struct {
	Margin         int32
	NeedsVoxels    bool
	NeedsHeightMap bool
	NeedsLight     bool
}

// ChunkStage is a deterministic, pure transformation applied to a chunk as
// it advances through generation. Stages are infallible by contract; a
// stage that cannot complete must recover internally and leave the chunk
// unchanged rather than panic (see Pipeline.runOne).
type ChunkStage interface {
	Name() string

	// NeedsSpace returns the stage's neighbor requirement, or nil if the
	// stage only ever looks at its own chunk.
	NeedsSpace() *SpaceRequirement

	Process(chunk *Chunk, registry *Registry, config *WorldConfig, space *Space)
}

// Pipeline is the ordered list of chunk stages a world's chunks advance
// through. A chunk at stage k is eligible for stage k only once every
// neighbor within that stage's declared margin has completed stages < k.
type Pipeline struct {
	stages []ChunkStage
}

func NewPipeline(stages ...ChunkStage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Len() int { return len(p.stages) }

// eligiblePair is a chunk×stage-index candidate awaiting processing.
type eligiblePair struct {
	chunk      *Chunk
	stageIndex int
	distance   int64 // squared distance to origin, for scheduling tie-break
}

// Advance processes up to maxPerTick eligible chunk×stage pairs across the
// given chunks, preferring lower stage indices and then proximity to
// origin, and returns how many pairs it actually processed.
func (p *Pipeline) Advance(chunks *ChunkMap, registry *Registry, config *WorldConfig, candidates []*Chunk, maxPerTick int, logger Logger) int {
	if len(p.stages) == 0 {
		return 0
	}

	var pending []eligiblePair
	for _, c := range candidates {
		if c.StageIndex >= len(p.stages) {
			continue
		}
		stage := p.stages[c.StageIndex]
		req := stage.NeedsSpace()
		margin := int32(0)
		if req != nil {
			margin = req.Margin
		}
		if !NeighborsComplete(chunks, c.Coord, margin, c.StageIndex) {
			continue
		}
		dx, dz := int64(c.Coord.X), int64(c.Coord.Z)
		pending = append(pending, eligiblePair{chunk: c, stageIndex: c.StageIndex, distance: dx*dx + dz*dz})
	}

	sortPairs(pending)

	processed := 0
	for _, pair := range pending {
		if processed >= maxPerTick {
			break
		}
		// A chunk listed twice among the candidates already advanced past
		// this pair's stage; its next stage has not been checked for
		// eligibility.
		if pair.chunk.StageIndex != pair.stageIndex {
			continue
		}
		p.runOne(pair.chunk, registry, config, chunks, logger)
		processed++
	}
	return processed
}

func (p *Pipeline) runOne(c *Chunk, registry *Registry, config *WorldConfig, chunks *ChunkMap, logger Logger) {
	stage := p.stages[c.StageIndex]

	defer func() {
		if r := recover(); r != nil {
			// Pipeline stage error: infallible by contract, so a failure
			// becomes a no-op for this chunk×stage pair plus a log event.
			if logger != nil {
				logger.Errorf("pipeline stage %q panicked on chunk (%d,%d): %v", stage.Name(), c.Coord.X, c.Coord.Z, r)
			}
		}
	}()

	var space *Space
	if req := stage.NeedsSpace(); req != nil {
		space = NewSpace(chunks, c.Coord, req.Margin)
	}

	stage.Process(c, registry, config, space)
	c.StageIndex++
}

func sortPairs(pairs []eligiblePair) {
	// Insertion sort: candidate lists per tick are small (bounded by
	// max_chunk_per_tick-sized windows in practice), stability matters more
	// than asymptotics here.
	for i := 1; i < len(pairs); i++ {
		j := i
		for j > 0 && less(pairs[j], pairs[j-1]) {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
			j--
		}
	}
}

func less(a, b eligiblePair) bool {
	if a.stageIndex != b.stageIndex {
		return a.stageIndex < b.stageIndex
	}
	return a.distance < b.distance
}

// HeightMapStage is a built-in stage that recomputes a chunk's heightmap
// from its current voxel content. Idempotent: running it twice in a row
// yields the same heightmap.
type HeightMapStage struct{}

func (HeightMapStage) Name() string                  { return "HeightMap" }
func (HeightMapStage) NeedsSpace() *SpaceRequirement { return nil }

func (HeightMapStage) Process(chunk *Chunk, registry *Registry, config *WorldConfig, space *Space) {
	chunk.RecomputeHeightMap()
}

// FlatlandStage is a built-in stage that fills a chunk with three
// horizontal y-layers: bottom block from y=0, middle block for the
// interior, top block for the surface layer, leaving `padding` layers of
// air above before max_height.
type FlatlandStage struct {
	Top, Middle, Bottom uint32
	Padding             int32
}

func (FlatlandStage) Name() string                  { return "Flatland" }
func (FlatlandStage) NeedsSpace() *SpaceRequirement { return nil }

func (s FlatlandStage) Process(chunk *Chunk, registry *Registry, config *WorldConfig, space *Space) {
	minX, _, minZ := chunk.Min()
	surface := config.MaxHeight - s.Padding
	if surface < 1 {
		surface = 1
	}
	for lx := int32(0); lx < config.ChunkSize; lx++ {
		for lz := int32(0); lz < config.ChunkSize; lz++ {
			vx, vz := minX+lx, minZ+lz
			for vy := int32(0); vy < surface; vy++ {
				switch {
				case vy == 0:
					chunk.SetVoxel(vx, vy, vz, s.Bottom)
				case vy == surface-1:
					chunk.SetVoxel(vx, vy, vz, s.Top)
				default:
					chunk.SetVoxel(vx, vy, vz, s.Middle)
				}
			}
		}
	}
}

var _ ChunkStage = HeightMapStage{}
var _ ChunkStage = FlatlandStage{}
