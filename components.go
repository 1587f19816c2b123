package voxelize

import "github.com/go-gl/mathgl/mgl32"

// IDComp carries the entity's externally-visible, stable id. EntityId is
// only meaningful within one Ecs/App instance; IDComp survives a
// save/reload or cross-world reference.
type IDComp struct {
	ID string
}

// ETypeComp tags an entity with its content-defined type name ("player",
// "zombie", "item.stack", ...). The registry that interprets this name is
// a collaborator's concern, not this engine's.
type ETypeComp struct {
	Type string
}

// PositionComp is the entity's authoritative world-space position. Systems
// that move an entity (physics, teleport, spawn) write here; CurrentChunkComp
// and InteractorComp are kept in sync with it by dedicated systems each tick.
type PositionComp struct {
	Position mgl32.Vec3
}

// CurrentChunkComp tracks which chunk an entity's PositionComp falls in.
// Dirty is set whenever the computed chunk differs from the stored one, so
// downstream systems (interest management, chunk load/unload) can react to
// crossings without recomputing chunk coordinates themselves.
type CurrentChunkComp struct {
	Coord ChunkCoordinate
	Dirty bool
}

// RigidBodyComp wraps a voxel-aware RigidBody integrated directly against
// the world's ChunkMap by IterateBody every tick. Most entities that fall,
// float, or collide with terrain carry one of these.
type RigidBodyComp struct {
	Body *RigidBody
}

// InteractorComp marks an entity as also registered with the interactor
// rigid-body adapter — the general-purpose solver used for client-shaped
// bodies that need body-vs-body contact resolution the voxel integrator
// doesn't provide. IsClient distinguishes a player-controlled interactor
// (position driven by client input, fed into the adapter) from a purely
// server-simulated one (integrated against the voxel world by IterateBody
// like any other body; its adapter body's post-step position only feeds
// the soft repulsion impulse).
type InteractorComp struct {
	Body     BodyHandle
	Collider ColliderHandle
	IsClient bool
}

// CollisionsComp accumulates the collision events this entity was party to
// during the current tick. It is cleared and repopulated every tick by the
// system that drains the interactor adapter's Step result; it is not a
// durable log.
type CollisionsComp struct {
	Events []CollisionEvent
}

// MetadataComp is an opaque bag for collaborator-defined entity state
// (inventory, health, display name, ...) that this engine stores and moves
// around but never interprets.
type MetadataComp struct {
	Data map[string]string
}
