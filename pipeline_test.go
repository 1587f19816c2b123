package voxelize

import "testing"

// recordingStage appends the coordinate of every chunk it processes, in the
// order Pipeline.Advance calls it, so tests can assert on ordering.
type recordingStage struct {
	processed *[]ChunkCoordinate
}

func (s recordingStage) Name() string                  { return "Recording" }
func (s recordingStage) NeedsSpace() *SpaceRequirement { return nil }
func (s recordingStage) Process(chunk *Chunk, registry *Registry, config *WorldConfig, space *Space) {
	*s.processed = append(*s.processed, chunk.Coord)
}

func newPipelineTestConfig() *WorldConfig {
	return NewWorldConfig().
		ChunkSize(4).
		MaxHeight(8).
		MinChunk([2]int32{-3, -3}).
		MaxChunk([2]int32{3, 3}).
		Build()
}

func TestPipeline_Advance_OrdersByStageThenDistance(t *testing.T) {
	config := newPipelineTestConfig()
	registry := NewRegistry()
	chunks := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)

	var processed []ChunkCoordinate
	pipeline := NewPipeline(recordingStage{processed: &processed})

	far := chunks.GetChunk(ChunkCoordinate{X: 2, Z: 0})
	near := chunks.GetChunk(ChunkCoordinate{X: 0, Z: 0})
	mid := chunks.GetChunk(ChunkCoordinate{X: 1, Z: 0})

	// Feed candidates in a deliberately scrambled order; the pipeline must
	// still process them nearest-origin-first within the same stage.
	candidates := []*Chunk{far, near, mid}
	n := pipeline.Advance(chunks, registry, config, candidates, 10, nil)

	if n != 3 {
		t.Fatalf("expected all 3 candidates processed, got %d", n)
	}
	want := []ChunkCoordinate{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 2, Z: 0}}
	if len(processed) != len(want) {
		t.Fatalf("expected %d processed chunks, got %d", len(want), len(processed))
	}
	for i, c := range want {
		if processed[i] != c {
			t.Errorf("processed[%d] = %+v, want %+v", i, processed[i], c)
		}
	}
}

func TestPipeline_Advance_BoundedByMaxPerTick(t *testing.T) {
	config := newPipelineTestConfig()
	registry := NewRegistry()
	chunks := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)

	var processed []ChunkCoordinate
	pipeline := NewPipeline(recordingStage{processed: &processed})

	a := chunks.GetChunk(ChunkCoordinate{X: 0, Z: 0})
	b := chunks.GetChunk(ChunkCoordinate{X: 1, Z: 0})

	n := pipeline.Advance(chunks, registry, config, []*Chunk{b, a}, 1, nil)

	if n != 1 {
		t.Fatalf("expected exactly 1 pair processed under maxPerTick=1, got %d", n)
	}
	if len(processed) != 1 || processed[0] != (ChunkCoordinate{X: 0, Z: 0}) {
		t.Errorf("expected the nearest chunk (0,0) to be the one processed, got %+v", processed)
	}
	if a.StageIndex != 1 {
		t.Errorf("expected processed chunk's StageIndex to advance to 1, got %d", a.StageIndex)
	}
	if b.StageIndex != 0 {
		t.Errorf("expected unprocessed chunk's StageIndex to remain 0, got %d", b.StageIndex)
	}
}

// marginStage declares a neighbor margin so NeighborsComplete gating can be
// exercised independently of distance/maxPerTick ordering.
type marginStage struct {
	margin    int32
	processed *int
}

func (s marginStage) Name() string { return "Margin" }
func (s marginStage) NeedsSpace() *SpaceRequirement {
	return &SpaceRequirement{Margin: s.margin}
}
func (s marginStage) Process(chunk *Chunk, registry *Registry, config *WorldConfig, space *Space) {
	*s.processed++
}

func TestPipeline_Advance_GatedByNeighborMargin(t *testing.T) {
	config := newPipelineTestConfig()
	registry := NewRegistry()
	chunks := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)

	processed := 0
	pipeline := NewPipeline(marginStage{margin: 1, processed: &processed})

	center := chunks.GetChunk(ChunkCoordinate{X: 0, Z: 0})

	// Neighbors do not exist yet: the stage must not be eligible.
	n := pipeline.Advance(chunks, registry, config, []*Chunk{center}, 10, nil)
	if n != 0 || processed != 0 {
		t.Fatalf("expected 0 processed while neighbors are ungenerated, got n=%d processed=%d", n, processed)
	}

	// Generate every neighbor within margin 1; now the stage becomes
	// eligible.
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			chunks.GetChunk(ChunkCoordinate{X: dx, Z: dz})
		}
	}
	n = pipeline.Advance(chunks, registry, config, []*Chunk{center}, 10, nil)
	if n != 1 || processed != 1 {
		t.Errorf("expected chunk to become eligible once all neighbors exist, got n=%d processed=%d", n, processed)
	}
}

func TestHeightMapStage_Idempotent(t *testing.T) {
	config := newPipelineTestConfig()
	registry := NewRegistry()
	registry.Register(NewBlock("Stone").ID(1).Faces("all").Build())

	chunk := NewChunk(ChunkCoordinate{X: 0, Z: 0}, config.ChunkSize, config.MaxHeight)
	chunk.SetVoxel(0, 0, 0, 1)
	chunk.SetVoxel(0, 3, 0, 1)
	chunk.SetVoxel(1, 1, 1, 1)

	stage := HeightMapStage{}
	stage.Process(chunk, registry, config, nil)
	first := append([]int32(nil), chunk.heightMap...)

	stage.Process(chunk, registry, config, nil)
	second := chunk.heightMap

	if len(first) != len(second) {
		t.Fatalf("heightmap length changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("heightmap[%d] changed on second pass: %d -> %d", i, first[i], second[i])
		}
	}
	if chunk.GetHeight(0, 0) != 3 {
		t.Errorf("expected column (0,0) height=3, got %d", chunk.GetHeight(0, 0))
	}
	if chunk.GetHeight(1, 1) != 1 {
		t.Errorf("expected column (1,1) height=1, got %d", chunk.GetHeight(1, 1))
	}
}
