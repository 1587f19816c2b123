package voxelize

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newIntegratorTestConfig() *WorldConfig {
	return NewWorldConfig().
		ChunkSize(16).
		MaxHeight(8).
		MinChunk([2]int32{-2, -2}).
		MaxChunk([2]int32{5, 5}).
		Gravity(mgl32.Vec3{0, -10, 0}).
		AirDrag(0).
		FluidDensity(3.0).
		Build()
}

func TestIterateBody_DtZero_NoOp(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()

	body := NewRigidBody(NewAABB(0, 10, 0, 1, 1, 1), 1)
	body.Velocity = mgl32.Vec3{1, 2, 3}
	before := *body

	IterateBody(body, 0, access, registry, config)

	if *body != before {
		t.Errorf("dt=0 must be a no-op: before=%+v after=%+v", before, *body)
	}
}

func TestIterateBody_StaticBodyUnchanged(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()

	body := NewRigidBody(NewAABB(0, 10, 0, 1, 1, 1), 0) // Mass<=0: static
	body.Velocity = mgl32.Vec3{5, 5, 5}
	body.Forces = mgl32.Vec3{1, 1, 1}
	body.Impulses = mgl32.Vec3{2, 2, 2}
	beforeAABB := body.AABB

	IterateBody(body, 0.1, access, registry, config)

	if body.Velocity != (mgl32.Vec3{}) {
		t.Errorf("static body velocity should be zeroed, got %+v", body.Velocity)
	}
	if body.Forces != (mgl32.Vec3{}) {
		t.Errorf("static body forces should be zeroed, got %+v", body.Forces)
	}
	if body.Impulses != (mgl32.Vec3{}) {
		t.Errorf("static body impulses should be zeroed, got %+v", body.Impulses)
	}
	if body.AABB != beforeAABB {
		t.Errorf("static body AABB must not move: before=%+v after=%+v", beforeAABB, body.AABB)
	}
}

func TestIterateBody_ForcesAndImpulsesResetAfterTick(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()

	// Open air, nowhere near a floor: no collision this tick.
	body := NewRigidBody(NewAABB(0, 50, 0, 1, 1, 1), 1)
	IterateBody(body, 0.1, access, registry, config)

	if body.Forces != (mgl32.Vec3{}) {
		t.Errorf("forces must be reset to zero after a collision-free tick, got %+v", body.Forces)
	}
	if body.Impulses != (mgl32.Vec3{}) {
		t.Errorf("impulses must be reset to zero after a collision-free tick, got %+v", body.Impulses)
	}
}

func TestIterateBody_FreeFall_SingleTickClosedForm(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()

	body := NewRigidBody(NewAABB(0, 50, 0, 1, 1, 1), 1)
	const dt = float32(0.1)

	IterateBody(body, dt, access, registry, config)

	wantVY := config.Gravity.Y() * dt
	if d := body.Velocity.Y() - wantVY; d > 1e-5 || d < -1e-5 {
		t.Errorf("expected Velocity.Y()=%v after one free-fall tick, got %v", wantVY, body.Velocity.Y())
	}

	wantMinY := float32(50) + config.Gravity.Y()*dt*dt
	if d := body.AABB.MinY - wantMinY; d > 1e-5 || d < -1e-5 {
		t.Errorf("expected AABB.MinY=%v after one free-fall tick, got %v", wantMinY, body.AABB.MinY)
	}
}

func TestApplyFluidForces_HalfSubmerged(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()
	registry.Register(NewBlock("Water").ID(9).Fluid().Build())

	access.SetVoxel(0, 0, 0, 9) // fluid at y=0 only; y=1 stays air
	body := NewRigidBody(NewAABB(0, 0, 0, 1, 2, 1), 1) // MinY=0, MaxY=2

	applyFluidForces(body, access, registry, config)

	if !body.InFluid {
		t.Fatalf("expected body to be flagged InFluid")
	}
	if d := body.RatioInFluid - 0.5; d > 1e-5 || d < -1e-5 {
		t.Errorf("expected RatioInFluid=0.5, got %v", body.RatioInFluid)
	}
	wantForceY := config.Gravity.Y() * config.FluidDensity * (body.AABB.Width() * body.AABB.Height() * body.AABB.Depth() * 0.5)
	if d := body.Forces.Y() - wantForceY; d > 1e-4 || d < -1e-4 {
		t.Errorf("expected buoyancy Forces.Y()=%v, got %v", wantForceY, body.Forces.Y())
	}
}

func TestApplyFluidForces_NotSubmerged(t *testing.T) {
	config := newIntegratorTestConfig()
	access := NewChunkMap(config.ChunkSize, config.MaxHeight, config.MinChunk, config.MaxChunk)
	registry := NewRegistry()
	registry.Register(NewBlock("Stone").ID(1).Faces("all").Build())

	access.SetVoxel(0, 0, 0, 1) // solid, not fluid
	body := NewRigidBody(NewAABB(0, 0, 0, 1, 2, 1), 1)

	applyFluidForces(body, access, registry, config)

	if body.InFluid {
		t.Errorf("expected InFluid=false above solid ground")
	}
	if body.RatioInFluid != 0 {
		t.Errorf("expected RatioInFluid=0, got %v", body.RatioInFluid)
	}
	if body.Forces != (mgl32.Vec3{}) {
		t.Errorf("expected no buoyancy force applied, got %+v", body.Forces)
	}
}

func newAutoStepTestFixture(t *testing.T) (*ChunkMap, *Registry, uint32) {
	t.Helper()
	registry := NewRegistry()
	registry.Register(NewBlock("Stone").ID(1).Faces("all").Build())
	access := NewChunkMap(16, 8, [2]int32{-2, -2}, [2]int32{5, 5})
	stone := uint32(1)

	for vx := int32(-2); vx <= 4; vx++ {
		for vz := int32(-2); vz <= 4; vz++ {
			access.SetVoxel(vx, 0, vz, stone) // floor
		}
	}
	return access, registry, stone
}

func TestTryAutoStep_SkipsWhenNotGroundedOrInFluid(t *testing.T) {
	access, registry, _ := newAutoStepTestFixture(t)

	body := NewRigidBody(NewAABB(0, 1, 0, 1, 1, 1), 1)
	body.Resting = [3]int32{1, 0, 0} // blocked on x, but airborne (Resting[1]==0)
	body.InFluid = false
	before := body.AABB

	tryAutoStep(body, access, registry, before, mgl32.Vec3{1, 0, 0})

	if body.AABB != before || body.Stepped {
		t.Errorf("expected no-op when body is neither grounded nor in fluid")
	}
}

func TestTryAutoStep_SkipsWhenNotHorizontallyBlocked(t *testing.T) {
	access, registry, _ := newAutoStepTestFixture(t)

	body := NewRigidBody(NewAABB(0, 1, 0, 1, 1, 1), 1)
	body.Resting = [3]int32{0, -1, 0} // grounded, nothing blocked horizontally
	before := body.AABB

	tryAutoStep(body, access, registry, before, mgl32.Vec3{1, 0, 0})

	if body.AABB != before || body.Stepped {
		t.Errorf("expected no-op when neither horizontal axis is blocked")
	}
}

func TestTryAutoStep_StepsOverOneVoxelWall(t *testing.T) {
	access, registry, stone := newAutoStepTestFixture(t)
	// A single-voxel step blocking +x at y=1, but open at y=2: autostep
	// should climb over it.
	access.SetVoxel(1, 1, 0, stone)

	body := NewRigidBody(NewAABB(0, 1, 0, 1, 1, 1), 1)
	body.Resting = [3]int32{1, -1, 0} // blocked on +x, resting on the floor
	oldAABB := body.AABB

	tryAutoStep(body, access, registry, oldAABB, mgl32.Vec3{1, 0, 0})

	if !body.Stepped {
		t.Fatalf("expected autostep to succeed over a one-voxel wall")
	}
	if d := body.AABB.MinY - (oldAABB.MinY + 1); d > 1e-5 || d < -1e-5 {
		t.Errorf("expected body to rise by exactly one voxel, got MinY=%v (was %v)", body.AABB.MinY, oldAABB.MinY)
	}
	if body.AABB.MinX <= oldAABB.MinX {
		t.Errorf("expected autostep to make horizontal progress, MinX=%v was %v", body.AABB.MinX, oldAABB.MinX)
	}
	if body.Resting[0] != 0 {
		t.Errorf("expected x-resting cleared after a successful step, got %v", body.Resting[0])
	}
}
