// Command voxelize-demo mirrors the original engine's example server: it
// registers a handful of blocks, wires a noise-based terrain stage ahead of
// HeightMapStage on one world and a flat world on another, then runs the
// scheduler until Ctrl-C.
package main

import (
	"os"

	"github.com/aquilax/go-perlin"
	"github.com/geeksville/voxelize"
)

const demoPort = 4000

const (
	terrainScale      = 0.01
	terrainAmplifier  = 3.0
	terrainHeightBias = 3.0
	terrainHeightOffs = 50.0
)

// noiseTerrainStage fills every column up to a 3-D perlin-noise density
// threshold with stone, the same density shape as the original demo's
// simplex-noise TestStage.
type noiseTerrainStage struct {
	noise *perlin.Perlin
	stone uint32
}

func newNoiseTerrainStage(seed int64, stone uint32) *noiseTerrainStage {
	return &noiseTerrainStage{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		stone: stone,
	}
}

func (s *noiseTerrainStage) Name() string { return "NoiseTerrain" }

func (s *noiseTerrainStage) NeedsSpace() *voxelize.SpaceRequirement { return nil }

func (s *noiseTerrainStage) Process(chunk *voxelize.Chunk, registry *voxelize.Registry, config *voxelize.WorldConfig, space *voxelize.Space) {
	minX, _, minZ := chunk.Min()
	maxX, _, maxZ := chunk.Max()

	for vx := minX; vx < maxX; vx++ {
		for vz := minZ; vz < maxZ; vz++ {
			for vy := int32(0); vy < config.MaxHeight; vy++ {
				density := s.noise.Noise3D(
					float64(vx)*terrainScale,
					float64(vy)*terrainScale,
					float64(vz)*terrainScale,
				)*terrainAmplifier - terrainHeightBias*(float64(vy)-terrainHeightOffs)*terrainScale

				if density > 0 {
					chunk.SetVoxel(vx, vy, vz, s.stone)
				}
			}
		}
	}
}

var _ voxelize.ChunkStage = (*noiseTerrainStage)(nil)

func mustBlock(registry *voxelize.Registry, name string) voxelize.Block {
	b, ok := registry.GetBlockByName(name)
	if !ok {
		panic("voxelize-demo: block " + name + " not registered")
	}
	return b
}

func main() {
	logger := voxelize.NewDefaultLogger("voxelize-demo", false)

	registry := voxelize.NewRegistry()
	registry.Register(voxelize.NewBlock("Dirt").ID(1).Faces("all").Build())
	registry.Register(voxelize.NewBlock("Stone").ID(2).Faces("all").Build())
	registry.Register(voxelize.NewBlock("Marble").ID(3).Faces("all").Build())
	registry.Register(voxelize.NewBlock("Grass").ID(4).Faces("top", "side", "bottom").Build())

	server := voxelize.NewServerBuilder().Port(demoPort).Registry(registry).Logger(logger).Build()

	stone := mustBlock(registry, "Stone")
	dirt := mustBlock(registry, "Dirt")
	grass := mustBlock(registry, "Grass")

	config1 := voxelize.NewWorldConfig().
		MinChunk([2]int32{-1, -1}).
		MaxChunk([2]int32{1, 1}).
		ChunkSize(16).
		Seed(246246).
		Build()
	pipeline1 := voxelize.NewPipeline(
		newNoiseTerrainStage(int64(config1.Seed), stone.ID),
		voxelize.HeightMapStage{},
	)
	if _, err := server.CreateWorld("world1", config1, pipeline1); err != nil {
		logger.Errorf("could not create world1: %v", err)
		os.Exit(1)
	}

	config2 := voxelize.NewWorldConfig().
		MinChunk([2]int32{-5, -5}).
		MaxChunk([2]int32{5, 5}).
		Build()
	pipeline2 := voxelize.NewPipeline(voxelize.FlatlandStage{
		Top:     grass.ID,
		Middle:  dirt.ID,
		Bottom:  stone.ID,
		Padding: 1,
	})
	if _, err := server.CreateWorld("world2", config2, pipeline2); err != nil {
		logger.Errorf("could not create world2: %v", err)
		os.Exit(1)
	}

	logger.Infof("serving on port %d, Ctrl-C to stop", demoPort)
	server.Run()
}
