package voxelize

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// World owns one self-contained simulation: its chunk map, a shared-immutable
// registry handle, the chunk generation pipeline, an entity-component store
// for everything that lives in it, and the interactor adapter used for
// client-shaped bodies. A Server schedules a fixed-interval tick per world.
type World struct {
	Name     string
	Config   *WorldConfig
	Registry *Registry
	Chunks   *ChunkMap
	Pipeline *Pipeline
	App      *App

	interactors *PhysicsWorld
}

// NewWorld wires a world's chunk store, pipeline, and entity-component app
// from a built WorldConfig and a shared registry. The caller installs
// whatever gameplay modules the world needs via World.App before the first
// tick.
func NewWorld(name string, config *WorldConfig, registry *Registry, pipeline *Pipeline) *World {
	chunks := NewChunkMap(int32(config.ChunkSize), int32(config.MaxHeight), config.MinChunk, config.MaxChunk)

	w := &World{
		Name:        name,
		Config:      config,
		Registry:    registry,
		Chunks:      chunks,
		Pipeline:    pipeline,
		App:         NewApp(),
		interactors: NewPhysicsWorld(),
	}
	w.interactors.Gravity = config.Gravity
	return w
}

// SpawnEntity adds an entity to the world's ECS, stamping it with a
// generated IDComp if the caller didn't supply one. Entities that need a
// stable cross-world/cross-reload identity (anything spawned server-side
// rather than echoed from a collaborator's own content ids) should go
// through this instead of calling Commands.AddEntity directly.
func (w *World) SpawnEntity(components ...any) EntityId {
	for _, c := range components {
		switch c.(type) {
		case IDComp, *IDComp:
			return w.App.Commands().AddEntity(components...)
		}
	}
	components = append(components, &IDComp{ID: uuid.NewString()})
	return w.App.Commands().AddEntity(components...)
}

// tickEntity is the per-tick snapshot of one body-owning entity, built
// single-threaded before the parallel integration pass and written back
// single-threaded after it; no two goroutines ever touch the same index.
type tickEntity struct {
	eid    EntityId
	chunk  ChunkCoordinate
	body   *RigidBody
	client bool

	hasInteractor bool
	interactorBdy BodyHandle
	collider      ColliderHandle
}

// Tick advances the world by one step of dt seconds, in the order the
// scheduler requires: advance the chunk pipeline, run PhysicsSystem
// (parallel voxel integration, interactor sync/step/merge, soft
// repulsion), then run the world's own registered ECS systems.
func (w *World) Tick(dt float32) {
	cmd := w.App.Commands()
	logger := w.App.Logger()

	candidates := w.collectPipelineCandidates(cmd)
	w.Pipeline.Advance(w.Chunks, w.Registry, w.Config, candidates, int(w.Config.MaxChunkPerTick), logger)

	w.physicsSystem(cmd, dt)

	for _, stage := range []Stage{Prelude, PreUpdate, Update, PostUpdate} {
		w.App.RunStage(stage)
	}
}

// physicsSystem is the per-tick body pass: parallel voxel integration for
// non-client bodies, interactor sync/step/merge for client-shaped bodies,
// then soft interactor repulsion.
func (w *World) physicsSystem(cmd *Commands, dt float32) {
	entities := w.snapshotBodies(cmd)
	w.integrateParallel(entities, dt)
	colliderToEntity := w.syncInteractors(entities)

	events := w.interactors.Step(dt)
	w.mergeCollisionEvents(cmd, colliderToEntity, events)
	w.applyRepulsion(cmd, entities)

	w.writeBackPositions(cmd, entities)
}

func (w *World) snapshotBodies(cmd *Commands) []tickEntity {
	var entities []tickEntity
	MakeQuery3[RigidBodyComp, PositionComp, CurrentChunkComp](cmd).Map(
		func(eid EntityId, rb *RigidBodyComp, pos *PositionComp, chunk *CurrentChunkComp) bool {
			if rb.Body == nil {
				return true
			}
			client := false
			var handle BodyHandle
			var collider ColliderHandle
			hasInteractor := false

			for _, c := range cmd.GetAllComponents(eid) {
				if ic, ok := c.(InteractorComp); ok {
					hasInteractor = true
					client = ic.IsClient
					handle = ic.Body
					collider = ic.Collider
					break
				}
			}

			entities = append(entities, tickEntity{
				eid:           eid,
				chunk:         chunk.Coord,
				body:          rb.Body,
				client:        client,
				hasInteractor: hasInteractor,
				interactorBdy: handle,
				collider:      collider,
			})
			return true
		})
	return entities
}

// integrateParallel runs IterateBody for every non-client body, partitioned
// into GOMAXPROCS contiguous slices of the snapshot so each goroutine only
// ever touches its own disjoint range — the same shape holds for any
// entity count, satisfying parallel-equals-serial-over-a-disjoint-set by
// construction.
func (w *World) integrateParallel(entities []tickEntity, dt float32) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(entities) {
		workers = len(entities)
	}
	if workers == 0 {
		return
	}

	chunkSize := (len(entities) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(entities); start += chunkSize {
		end := start + chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		wg.Add(1)
		go func(slice []tickEntity) {
			defer wg.Done()
			for i := range slice {
				e := &slice[i]
				if e.client {
					continue
				}
				if !w.Chunks.IsChunkReady(e.chunk, w.Pipeline.Len()) {
					continue
				}
				IterateBody(e.body, dt, w.Chunks, w.Registry, w.Config)
			}
		}(entities[start:end])
	}
	wg.Wait()
}

// syncInteractors teleports every interactor body to its owning entity's
// current position and returns the collider-handle to entity map Step's
// events are resolved against. It registers nothing: an InteractorComp's
// handles come from PhysicsWorld.Register, and MoveTo ignores a handle the
// adapter does not know.
func (w *World) syncInteractors(entities []tickEntity) map[ColliderHandle]EntityId {
	result := make(map[ColliderHandle]EntityId)
	for i := range entities {
		e := &entities[i]
		if !e.hasInteractor {
			continue
		}
		w.interactors.MoveTo(e.interactorBdy, e.body.AABB.Min().Add(e.body.AABB.Max()).Mul(0.5))
		result[e.collider] = e.eid
	}
	return result
}

func (w *World) mergeCollisionEvents(cmd *Commands, colliderToEntity map[ColliderHandle]EntityId, events []CollisionEvent) {
	byEntity := make(map[EntityId][]CollisionEvent)
	for _, ev := range events {
		eidA, okA := colliderToEntity[ev.A]
		eidB, okB := colliderToEntity[ev.B]
		if !okA || !okB {
			continue
		}
		byEntity[eidA] = append(byEntity[eidA], ev)
		byEntity[eidB] = append(byEntity[eidB], ev)
	}
	// Interactor entities with no event this tick get an empty list, so no
	// entity keeps the previous tick's events.
	for _, eid := range colliderToEntity {
		if _, ok := byEntity[eid]; !ok {
			byEntity[eid] = nil
		}
	}
	for eid, evs := range byEntity {
		cmd.AddComponents(eid, &CollisionsComp{Events: evs})
	}
}

// applyRepulsion implements the soft interactor repulsion described for
// non-client bodies that also carry an interactor: the delta between the
// interactor's post-step position and the voxel body's own position,
// dead-banded per axis at 0.001 and normalized, becomes a clamped
// horizontal/vertical impulse. Two bodies stacked exactly (dx=dz=0) are
// jittered to break the singularity instead of producing a zero impulse.
func (w *World) applyRepulsion(cmd *Commands, entities []tickEntity) {
	if w.Config.CollisionRepulsion <= 1e-6 {
		return
	}

	for i := range entities {
		e := &entities[i]
		if e.client || !e.hasInteractor {
			continue
		}
		ib := w.interactors.Get(e.interactorBdy)
		if ib == nil {
			continue
		}

		center := e.body.AABB.Min().Add(e.body.AABB.Max()).Mul(0.5)
		delta := ib.Position.Sub(center)
		for axis := 0; axis < 3; axis++ {
			if abs32(delta[axis]) < 0.001 {
				delta[axis] = 0
			}
		}

		if abs32(delta.X()) < 0.001 && abs32(delta.Z()) < 0.001 {
			delta[0] = (rand.Float32() - 0.5) * 0.002
			delta[2] = (rand.Float32() - 0.5) * 0.002
		}

		if delta.Len() < 1e-6 {
			continue
		}
		dir := delta.Normalize()

		impulse := mgl32.Vec3{
			clampf(dir.X()*w.Config.CollisionRepulsion, 3.0),
			clampf(dir.Y()*w.Config.CollisionRepulsion, 3.0),
			clampf(dir.Z()*w.Config.CollisionRepulsion, 3.0),
		}
		e.body.Impulses = e.body.Impulses.Add(impulse)
		cmd.app.Logger().Debugf("applied interactor repulsion to entity %d: %v", e.eid, impulse)
	}
}

func (w *World) writeBackPositions(cmd *Commands, entities []tickEntity) {
	for i := range entities {
		e := &entities[i]
		center := e.body.AABB.Min().Add(e.body.AABB.Max()).Mul(0.5)
		cmd.AddComponents(e.eid, &PositionComp{Position: center})

		coord := w.Chunks.ChunkCoordAt(int32(math32.Floor(center.X())), int32(math32.Floor(center.Z())))
		cmd.AddComponents(e.eid, &CurrentChunkComp{Coord: coord, Dirty: coord != e.chunk})
	}
}

func (w *World) collectPipelineCandidates(cmd *Commands) []*Chunk {
	var candidates []*Chunk
	MakeQuery1[CurrentChunkComp](cmd).Map(func(eid EntityId, chunk *CurrentChunkComp) bool {
		if c, ok := w.Chunks.PeekChunk(chunk.Coord); ok {
			candidates = append(candidates, c)
		}
		return true
	})
	return candidates
}

func clampf(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
