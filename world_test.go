package voxelize

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) (*World, *Registry) {
	t.Helper()
	registry := NewRegistry()
	registry.Register(NewBlock("Stone").ID(1).Faces("all").Build())

	config := NewWorldConfig().ChunkSize(16).MaxHeight(32).Build()
	w := NewWorld("test", config, registry, NewPipeline())
	return w, registry
}

func TestWorld_SpawnEntity_GeneratesID(t *testing.T) {
	w, _ := newTestWorld(t)
	cmd := w.App.Commands()

	eid := w.SpawnEntity(&ETypeComp{Type: "zombie"})
	w.App.FlushCommands()

	var id *IDComp
	MakeQuery1[IDComp](cmd).Map(func(candidate EntityId, comp *IDComp) bool {
		if candidate == eid {
			id = comp
		}
		return true
	})
	require.NotNil(t, id)
	assert.NotEmpty(t, id.ID)

	eid2 := w.SpawnEntity(&IDComp{ID: "caller-supplied"}, &ETypeComp{Type: "npc"})
	w.App.FlushCommands()

	var id2 *IDComp
	MakeQuery1[IDComp](cmd).Map(func(candidate EntityId, comp *IDComp) bool {
		if candidate == eid2 {
			id2 = comp
		}
		return true
	})
	require.NotNil(t, id2)
	assert.Equal(t, "caller-supplied", id2.ID, "SpawnEntity must not override a caller-supplied IDComp")
}

func TestWorld_Tick_IntegratesFallingBody(t *testing.T) {
	w, _ := newTestWorld(t)
	cmd := w.App.Commands()

	body := NewRigidBody(NewAABB(0, 10, 0, 1, 1, 1), 1)
	eid := cmd.AddEntity(
		&RigidBodyComp{Body: body},
		&PositionComp{Position: mgl32.Vec3{0.5, 10.5, 0.5}},
		&CurrentChunkComp{Coord: w.Chunks.ChunkCoordAt(0, 0)},
	)
	w.App.FlushCommands()
	w.Chunks.GetChunk(w.Chunks.ChunkCoordAt(0, 0)) // ready: empty pipeline, stage 0 >= len 0

	w.Tick(0.1)

	var pos *PositionComp
	MakeQuery1[PositionComp](cmd).Map(func(id EntityId, p *PositionComp) bool {
		if id == eid {
			pos = p
		}
		return true
	})
	require.NotNil(t, pos)
	assert.Less(t, pos.Position.Y(), float32(10.5), "body should have fallen under gravity")
}

func TestWorld_Tick_RestingOnFloorStopsFalling(t *testing.T) {
	w, registry := newTestWorld(t)
	cmd := w.App.Commands()

	stone, _ := registry.GetBlockByName("Stone")
	coord := w.Chunks.ChunkCoordAt(0, 0)
	chunk := w.Chunks.GetChunk(coord)
	for vx := int32(-2); vx <= 2; vx++ {
		for vz := int32(-2); vz <= 2; vz++ {
			w.Chunks.SetVoxel(vx, 0, vz, stone.ID)
		}
	}
	_ = chunk

	body := NewRigidBody(NewAABB(0, 1, 0, 1, 1, 1), 1)
	eid := cmd.AddEntity(
		&RigidBodyComp{Body: body},
		&PositionComp{Position: mgl32.Vec3{0.5, 1.5, 0.5}},
		&CurrentChunkComp{Coord: coord},
	)
	w.App.FlushCommands()

	for i := 0; i < 20; i++ {
		w.Tick(0.05)
	}

	var rb *RigidBodyComp
	MakeQuery1[RigidBodyComp](cmd).Map(func(id EntityId, r *RigidBodyComp) bool {
		if id == eid {
			rb = r
		}
		return true
	})
	require.NotNil(t, rb)
	assert.Equal(t, int32(-1), rb.Body.Resting[1], "body should come to rest on the floor beneath it")
	assert.Equal(t, float32(0), rb.Body.Velocity.Y())
}

func TestWorld_PhysicsSystem_InteractorRepulsion(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Config.CollisionRepulsion = 1.0
	cmd := w.App.Commands()

	coord := w.Chunks.ChunkCoordAt(0, 0)
	w.Chunks.GetChunk(coord)

	bodyA := NewRigidBody(NewAABB(0, 5, 0, 1, 1, 1), 1)
	bodyA.Mass = 0 // static: isolate repulsion impulse from gravity/integration
	handleA, colliderA := w.interactors.Register(mgl32.Vec3{0.5, 0.5, 0.5}, 1, 0, 0)
	eidA := cmd.AddEntity(
		&RigidBodyComp{Body: bodyA},
		&PositionComp{Position: mgl32.Vec3{0.5, 5.5, 0.5}},
		&CurrentChunkComp{Coord: coord},
		&InteractorComp{Body: handleA, Collider: colliderA},
	)

	bodyB := NewRigidBody(NewAABB(0.9, 5, 0, 1, 1, 1), 1)
	bodyB.Mass = 0
	handleB, colliderB := w.interactors.Register(mgl32.Vec3{0.5, 0.5, 0.5}, 1, 0, 0)
	cmd.AddEntity(
		&RigidBodyComp{Body: bodyB},
		&PositionComp{Position: mgl32.Vec3{1.4, 5.5, 0.5}},
		&CurrentChunkComp{Coord: coord},
		&InteractorComp{Body: handleB, Collider: colliderB},
	)
	w.App.FlushCommands()

	w.physicsSystem(cmd, 0.016)
	w.App.FlushCommands()

	var collisions *CollisionsComp
	MakeQuery1[CollisionsComp](cmd).Map(func(id EntityId, c *CollisionsComp) bool {
		if id == eidA {
			collisions = c
		}
		return true
	})
	require.NotNil(t, collisions, "overlapping interactors should produce a collision event")
	assert.NotEmpty(t, collisions.Events)
	assert.NotEqual(t, float32(0), bodyA.Impulses.X(), "overlapping non-client interactors should receive a repulsion impulse")
}
