package voxelize

import "github.com/go-gl/mathgl/mgl32"

const (
	defaultMaxClients       = 100
	defaultInterval         = 8 // ms
	defaultChunkSize        = 16
	defaultMaxHeight        = 256
	defaultMaxLightLevel    = 15
	defaultMaxChunkPerTick  = 24
	defaultMaxUpdatesPerTick = 500
	defaultMaxResponsePerTick = 3
	defaultPreloadRadius    = 8
	defaultSeed             = 123123123
	defaultMinBounceImpulse = 0.1
	defaultAirDrag          = 0.1
	defaultFluidDrag        = 0.4
	defaultFluidDensity     = 2.0
	defaultCollisionRepulsion = 0.0
)

var defaultGravity = mgl32.Vec3{0, -9.8, 0}
var defaultMinChunk = [2]int32{minInt32 + 1, minInt32 + 1}
var defaultMaxChunk = [2]int32{maxInt32 - 1, maxInt32 - 1}

const minInt32 = -1 << 31
const maxInt32 = 1<<31 - 1

// WorldConfig is an enumerated, immutable set of options governing how a
// world is constructed and ticked.
type WorldConfig struct {
	MaxClients       int
	Interval         int // ms
	ChunkSize        int32
	MinChunk         [2]int32
	MaxChunk         [2]int32
	MaxHeight        int32
	MaxLightLevel    uint32
	MaxChunkPerTick  int
	MaxUpdatesPerTick int
	MaxResponsePerTick int
	PreloadRadius    uint32
	Seed             int32

	Gravity            mgl32.Vec3
	MinBounceImpulse   float32
	AirDrag            float32
	FluidDrag          float32
	FluidDensity       float32
	CollisionRepulsion float32
}

// GetInitConfig extracts the subset of WorldConfig published to new clients.
func (c *WorldConfig) GetInitConfig() InitPayload {
	return InitPayload{
		ChunkSize:     int(c.ChunkSize),
		MaxHeight:     int(c.MaxHeight),
		MaxLightLevel: c.MaxLightLevel,
		MinChunk:      c.MinChunk,
		MaxChunk:      c.MaxChunk,
	}
}

// WorldConfigBuilder builds a WorldConfig with a fluent, chainable API.
type WorldConfigBuilder struct {
	cfg WorldConfig
}

// NewWorldConfig starts a builder pre-seeded with the documented defaults.
func NewWorldConfig() *WorldConfigBuilder {
	return &WorldConfigBuilder{cfg: WorldConfig{
		MaxClients:         defaultMaxClients,
		Interval:           defaultInterval,
		ChunkSize:          defaultChunkSize,
		MinChunk:           defaultMinChunk,
		MaxChunk:           defaultMaxChunk,
		MaxHeight:          defaultMaxHeight,
		MaxLightLevel:      defaultMaxLightLevel,
		MaxChunkPerTick:    defaultMaxChunkPerTick,
		MaxUpdatesPerTick:  defaultMaxUpdatesPerTick,
		MaxResponsePerTick: defaultMaxResponsePerTick,
		PreloadRadius:      defaultPreloadRadius,
		Seed:               defaultSeed,
		Gravity:            defaultGravity,
		MinBounceImpulse:   defaultMinBounceImpulse,
		AirDrag:            defaultAirDrag,
		FluidDrag:          defaultFluidDrag,
		FluidDensity:       defaultFluidDensity,
		CollisionRepulsion: defaultCollisionRepulsion,
	}}
}

func (b *WorldConfigBuilder) MaxClients(v int) *WorldConfigBuilder { b.cfg.MaxClients = v; return b }
func (b *WorldConfigBuilder) Interval(v int) *WorldConfigBuilder   { b.cfg.Interval = v; return b }
func (b *WorldConfigBuilder) ChunkSize(v int32) *WorldConfigBuilder { b.cfg.ChunkSize = v; return b }
func (b *WorldConfigBuilder) MinChunk(v [2]int32) *WorldConfigBuilder { b.cfg.MinChunk = v; return b }
func (b *WorldConfigBuilder) MaxChunk(v [2]int32) *WorldConfigBuilder { b.cfg.MaxChunk = v; return b }
func (b *WorldConfigBuilder) MaxHeight(v int32) *WorldConfigBuilder { b.cfg.MaxHeight = v; return b }
func (b *WorldConfigBuilder) MaxLightLevel(v uint32) *WorldConfigBuilder {
	b.cfg.MaxLightLevel = v
	return b
}
func (b *WorldConfigBuilder) MaxChunkPerTick(v int) *WorldConfigBuilder {
	b.cfg.MaxChunkPerTick = v
	return b
}
func (b *WorldConfigBuilder) MaxUpdatesPerTick(v int) *WorldConfigBuilder {
	b.cfg.MaxUpdatesPerTick = v
	return b
}
func (b *WorldConfigBuilder) MaxResponsePerTick(v int) *WorldConfigBuilder {
	b.cfg.MaxResponsePerTick = v
	return b
}
func (b *WorldConfigBuilder) PreloadRadius(v uint32) *WorldConfigBuilder {
	b.cfg.PreloadRadius = v
	return b
}
func (b *WorldConfigBuilder) Seed(v int32) *WorldConfigBuilder { b.cfg.Seed = v; return b }
func (b *WorldConfigBuilder) Gravity(v mgl32.Vec3) *WorldConfigBuilder {
	b.cfg.Gravity = v
	return b
}
func (b *WorldConfigBuilder) MinBounceImpulse(v float32) *WorldConfigBuilder {
	b.cfg.MinBounceImpulse = v
	return b
}
func (b *WorldConfigBuilder) AirDrag(v float32) *WorldConfigBuilder { b.cfg.AirDrag = v; return b }
func (b *WorldConfigBuilder) FluidDrag(v float32) *WorldConfigBuilder {
	b.cfg.FluidDrag = v
	return b
}
func (b *WorldConfigBuilder) FluidDensity(v float32) *WorldConfigBuilder {
	b.cfg.FluidDensity = v
	return b
}
func (b *WorldConfigBuilder) CollisionRepulsion(v float32) *WorldConfigBuilder {
	b.cfg.CollisionRepulsion = v
	return b
}

// Build validates and returns the finished config. Panics if the chunk
// bounds do not make sense, matching the fail-fast contract for
// configuration errors.
func (b *WorldConfigBuilder) Build() *WorldConfig {
	if b.cfg.MaxChunk[0] < b.cfg.MinChunk[0] || b.cfg.MaxChunk[1] < b.cfg.MinChunk[1] {
		panic("voxelize: min/max chunk parameters do not make sense")
	}
	if b.cfg.ChunkSize <= 0 {
		panic("voxelize: chunk_size must be positive")
	}
	cfg := b.cfg
	return &cfg
}
