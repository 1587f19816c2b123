package voxelize

import "github.com/go-gl/mathgl/mgl32"

// reactivateSleepFrames is the sleep-frame-count reset applied whenever a
// body's velocity crosses back above the reactivation threshold; it
// guarantees at least this many awake ticks before the next sleep probe.
const reactivateSleepFrames = 10

// RigidBody is a voxel-world body integrated by IterateBody every tick.
// Mass <= 0 marks it static (never moved, velocity forced to zero).
//
// AirDragOverride / FluidDragOverride replace the source engine's
// negative-sentinel convention ("air_drag < 0 means use the world
// default"): a nil override means "use config's world default", matching
// the same intent with a proper optional field instead of a magic number.
type RigidBody struct {
	AABB AABB
	Mass float32

	Velocity mgl32.Vec3
	Forces   mgl32.Vec3
	Impulses mgl32.Vec3

	// Resting holds, per axis, -1/0/+1: the direction of the contact
	// surface the body is resting against, if any.
	Resting [3]int32

	InFluid      bool
	RatioInFluid float32

	Friction           float32
	Restitution        float32
	GravityMultiplier  float32
	AirDragOverride    *float32
	FluidDragOverride  *float32
	AutoStep           bool

	// Stepped is an output flag: true if autostep moved the body this tick.
	Stepped bool

	// Collision is the impulse of the most recent impact this tick, or nil
	// if the body had no new contact.
	Collision *mgl32.Vec3

	SleepFrameCount int
}

// NewRigidBody returns a body with sane non-static defaults: gravity fully
// applied, no drag override, autostep off, no restitution/friction. The
// body starts awake for reactivateSleepFrames ticks before its first sleep
// probe.
func NewRigidBody(aabb AABB, mass float32) *RigidBody {
	return &RigidBody{
		AABB:              aabb,
		Mass:              mass,
		GravityMultiplier: 1,
		SleepFrameCount:   reactivateSleepFrames,
	}
}

func (b *RigidBody) isStatic() bool {
	return b.Mass <= 0
}

// airDrag resolves the effective air drag for this body.
func (b *RigidBody) airDrag(config *WorldConfig) float32 {
	if b.AirDragOverride != nil {
		return *b.AirDragOverride
	}
	return config.AirDrag
}

// fluidDrag resolves the effective fluid drag for this body.
func (b *RigidBody) fluidDrag(config *WorldConfig) float32 {
	if b.FluidDragOverride != nil {
		return *b.FluidDragOverride
	}
	return config.FluidDrag
}
