package voxelize

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ColliderShape is the interactor adapter's collider primitive. Only box
// colliders are registered by the rest of this engine today; sphere is
// carried for parity with the solver it was promoted from.
type ColliderShape int

const (
	ShapeBox ColliderShape = iota
	ShapeSphere
)

// BodyHandle and ColliderHandle identify a body registered with a
// PhysicsWorld. This adapter registers exactly one collider per body, so
// the two handle values always coincide; they're kept as distinct types
// because CollisionEvent and the rest of the engine address bodies and
// colliders for different reasons (teleporting vs. event correlation).
type BodyHandle int
type ColliderHandle int

// CollisionEventKind distinguishes a pair of colliders beginning contact
// from a pair that was in contact last step but is not this step.
type CollisionEventKind int

const (
	CollisionStarted CollisionEventKind = iota
	CollisionStopped
)

// CollisionEvent reports one contact transition produced by a Step call.
type CollisionEvent struct {
	Kind   CollisionEventKind
	A, B   ColliderHandle
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	Depth  float32
}

// InteractorBody is the read-back view of a registered body, taken after
// Step has advanced the world.
type InteractorBody struct {
	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Sleeping        bool
}

type interactorState struct {
	shape       ColliderShape
	halfExtents mgl32.Vec3
	friction    float32
	restitution float32
	mass        float32
	isStatic    bool

	position        mgl32.Vec3
	rotation        mgl32.Quat
	velocity        mgl32.Vec3
	angularVelocity mgl32.Vec3
	invInertia      mgl32.Mat3
	sleeping        bool
	idleTime        float32
}

// PhysicsWorld is the general-purpose 3D rigid-body solver promoted to
// play the role of the "external rigid-body engine" (§4.6 of the
// requirements this was built against): box colliders, center-of-mass +
// inertia tensors, Baumgarte-stabilized contact impulses with restitution
// and Coulomb friction, and idle-time sleeping. It knows nothing about
// voxels, chunks, or terrain — body-vs-terrain collision for non-client
// bodies is IterateBody's job; this solver only resolves contacts between
// the bodies registered with it (client interactors, and whatever else a
// world chooses to register).
type PhysicsWorld struct {
	Gravity        mgl32.Vec3
	SleepThreshold float32
	SleepTime      float32

	bodies       map[BodyHandle]*interactorState
	nextID       BodyHandle
	activePairs  map[[2]BodyHandle]struct{}
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Gravity:        mgl32.Vec3{0, -9.81, 0},
		SleepThreshold: 0.05,
		SleepTime:      1.0,
		bodies:         make(map[BodyHandle]*interactorState),
		activePairs:    make(map[[2]BodyHandle]struct{}),
	}
}

// Register adds a box interactor and returns its body/collider handles.
func (w *PhysicsWorld) Register(halfExtents mgl32.Vec3, mass, friction, restitution float32) (BodyHandle, ColliderHandle) {
	w.nextID++
	id := w.nextID

	if mass <= 0 {
		mass = 1
	}
	width, height, depth := halfExtents.X()*2, halfExtents.Y()*2, halfExtents.Z()*2
	ix := (1.0 / 12.0) * mass * (height*height + depth*depth)
	iy := (1.0 / 12.0) * mass * (width*width + depth*depth)
	iz := (1.0 / 12.0) * mass * (width*width + height*height)
	inertia := mgl32.Mat3{ix, 0, 0, 0, iy, 0, 0, 0, iz}

	w.bodies[id] = &interactorState{
		shape:       ShapeBox,
		halfExtents: halfExtents,
		friction:    friction,
		restitution: restitution,
		mass:        mass,
		rotation:    mgl32.QuatIdent(),
		invInertia:  inertia.Inv(),
	}
	return id, ColliderHandle(id)
}

// Unregister removes a body; its handle must not be reused afterward.
func (w *PhysicsWorld) Unregister(handle BodyHandle) {
	delete(w.bodies, handle)
}

// MoveTo teleports a registered body to position and zeroes its velocity,
// angular velocity, and sleep state, mirroring the original adapter's
// move_rapier_body: every tick a client interactor snaps to its ECS
// position before the solver steps, rather than being driven by gravity
// and accumulated forces between ticks.
func (w *PhysicsWorld) MoveTo(handle BodyHandle, position mgl32.Vec3) {
	b, ok := w.bodies[handle]
	if !ok {
		return
	}
	b.position = position
	b.velocity = zeroVec
	b.angularVelocity = zeroVec
	b.sleeping = false
	b.idleTime = 0
}

// Get returns the current state of a registered body, or nil if handle is
// unknown.
func (w *PhysicsWorld) Get(handle BodyHandle) *InteractorBody {
	b, ok := w.bodies[handle]
	if !ok {
		return nil
	}
	return &InteractorBody{
		Position:        b.position,
		Rotation:        b.rotation,
		Velocity:        b.velocity,
		AngularVelocity: b.angularVelocity,
		Sleeping:        b.sleeping,
	}
}

// Step advances every registered body by dt and returns the Started and
// Stopped contact transitions between interactors since the previous Step
// (see diffContactEvents).
func (w *PhysicsWorld) Step(dt float32) []CollisionEvent {
	if dt <= 0 {
		return nil
	}

	handles := make([]BodyHandle, 0, len(w.bodies))
	for h := range w.bodies {
		handles = append(handles, h)
	}

	const subSteps = 4
	dtSub := dt / float32(subSteps)
	damp := float32(math.Pow(0.98, float64(1.0)/float64(subSteps)))

	var lastContacts []interactorContact
	for s := 0; s < subSteps; s++ {
		for _, h := range handles {
			b := w.bodies[h]
			if b.isStatic || b.sleeping {
				continue
			}
			b.velocity = b.velocity.Mul(damp)
			b.angularVelocity = b.angularVelocity.Mul(damp)
			b.velocity = b.velocity.Add(w.Gravity.Mul(dtSub))
		}

		contacts := w.findContacts(handles)
		for iter := 0; iter < 4; iter++ {
			for _, c := range contacts {
				w.resolveContact(c, dtSub)
			}
		}

		for _, h := range handles {
			b := w.bodies[h]
			if b.isStatic || b.sleeping {
				continue
			}
			b.position = b.position.Add(b.velocity.Mul(dtSub))
			omega := b.angularVelocity
			if omega.Len() > 0.001 {
				angle := omega.Len() * dtSub
				axis := omega.Normalize()
				b.rotation = mgl32.QuatRotate(angle, axis).Mul(b.rotation).Normalize()
			}
		}
		lastContacts = contacts
	}

	for _, h := range handles {
		b := w.bodies[h]
		if b.isStatic {
			continue
		}
		if b.velocity.Len() < w.SleepThreshold && b.angularVelocity.Len() < w.SleepThreshold {
			b.idleTime += dt
			if b.idleTime > w.SleepTime {
				b.sleeping = true
				b.velocity = zeroVec
				b.angularVelocity = zeroVec
			}
		} else {
			b.idleTime = 0
			b.sleeping = false
		}
	}

	return w.diffContactEvents(lastContacts)
}

// diffContactEvents compares this step's contact pairs against the set
// active after the previous Step call and emits Started for newly-touching
// pairs and Stopped for pairs that separated, matching the external
// engine's collision-event lifecycle rather than reporting raw per-step
// overlaps.
func (w *PhysicsWorld) diffContactEvents(contacts []interactorContact) []CollisionEvent {
	nowActive := make(map[[2]BodyHandle]interactorContact, len(contacts))
	for _, c := range contacts {
		nowActive[pairKey(c.a, c.b)] = c
	}

	var events []CollisionEvent
	for key, c := range nowActive {
		if _, wasActive := w.activePairs[key]; !wasActive {
			events = append(events, CollisionEvent{
				Kind:   CollisionStarted,
				A:      ColliderHandle(c.a),
				B:      ColliderHandle(c.b),
				Point:  c.point,
				Normal: c.normal,
				Depth:  c.depth,
			})
		}
	}
	for key := range w.activePairs {
		if _, stillActive := nowActive[key]; !stillActive {
			events = append(events, CollisionEvent{
				Kind: CollisionStopped,
				A:    ColliderHandle(key[0]),
				B:    ColliderHandle(key[1]),
			})
		}
	}

	w.activePairs = make(map[[2]BodyHandle]struct{}, len(nowActive))
	for key := range nowActive {
		w.activePairs[key] = struct{}{}
	}
	return events
}

func pairKey(a, b BodyHandle) [2]BodyHandle {
	if a < b {
		return [2]BodyHandle{a, b}
	}
	return [2]BodyHandle{b, a}
}

type interactorContact struct {
	a, b   BodyHandle
	point  mgl32.Vec3
	normal mgl32.Vec3
	depth  float32
}

func (w *PhysicsWorld) findContacts(handles []BodyHandle) []interactorContact {
	var contacts []interactorContact
	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			ha, hb := handles[i], handles[j]
			a, b := w.bodies[ha], w.bodies[hb]
			if a.isStatic && b.isStatic {
				continue
			}
			if a.sleeping && b.sleeping {
				continue
			}

			diff := a.position.Sub(b.position)
			overlapX := a.halfExtents.X() + b.halfExtents.X() - abs32(diff.X())
			overlapY := a.halfExtents.Y() + b.halfExtents.Y() - abs32(diff.Y())
			overlapZ := a.halfExtents.Z() + b.halfExtents.Z() - abs32(diff.Z())
			if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
				continue
			}

			normal := mgl32.Vec3{0, 1, 0}
			depth := overlapY
			switch {
			case overlapX < overlapY && overlapX < overlapZ:
				depth = overlapX
				if diff.X() > 0 {
					normal = mgl32.Vec3{1, 0, 0}
				} else {
					normal = mgl32.Vec3{-1, 0, 0}
				}
			case overlapZ < overlapX && overlapZ < overlapY:
				depth = overlapZ
				if diff.Z() > 0 {
					normal = mgl32.Vec3{0, 0, 1}
				} else {
					normal = mgl32.Vec3{0, 0, -1}
				}
			default:
				if diff.Y() <= 0 {
					normal = mgl32.Vec3{0, -1, 0}
				}
			}

			point := a.position.Add(b.position).Mul(0.5).Add(normal.Mul(depth * 0.5))
			contacts = append(contacts, interactorContact{a: ha, b: hb, point: point, normal: normal, depth: depth})
		}
	}
	return contacts
}

// resolveContact applies one Baumgarte-stabilized impulse iteration for a
// contact between two interactors, including Coulomb-limited friction.
func (w *PhysicsWorld) resolveContact(c interactorContact, dt float32) {
	a, b := w.bodies[c.a], w.bodies[c.b]
	friction := 0.5 * (a.friction + b.friction)
	restitution := maxf(a.restitution, b.restitution)
	n := c.normal

	rA := c.point.Sub(a.position)
	rB := c.point.Sub(b.position)

	vA := a.velocity.Add(a.angularVelocity.Cross(rA))
	vB := b.velocity.Add(b.angularVelocity.Cross(rB))
	vRel := vA.Sub(vB)

	velAlongNormal := vRel.Dot(n)
	if velAlongNormal > 0 {
		return
	}

	invMassA, invMassB := invMass(a), invMass(b)

	angA := angularTerm(a, rA, n)
	angB := angularTerm(b, rB, n)

	denom := invMassA + invMassB + angA + angB
	if denom == 0 {
		return
	}

	j := -(1 + restitution) * velAlongNormal / denom

	const beta = 0.02
	const slop = 0.01
	bias := (beta / dt) * maxf(0, c.depth-slop)
	j += bias / denom

	impulse := n.Mul(j)
	applyContactImpulse(a, rA, impulse, invMassA)
	applyContactImpulse(b, rB, impulse.Mul(-1), invMassB)

	tangent := vRel.Sub(n.Mul(velAlongNormal))
	if tangent.Len() <= 0.001 {
		return
	}
	tangent = tangent.Normalize()

	angAT := angularTerm(a, rA, tangent)
	angBT := angularTerm(b, rB, tangent)
	denomT := invMassA + invMassB + angAT + angBT
	if denomT <= 0 {
		return
	}

	jt := -vRel.Dot(tangent) / denomT
	maxFriction := j * friction
	if jt > maxFriction {
		jt = maxFriction
	} else if jt < -maxFriction {
		jt = -maxFriction
	}

	impulseT := tangent.Mul(jt)
	applyContactImpulse(a, rA, impulseT, invMassA)
	applyContactImpulse(b, rB, impulseT.Mul(-1), invMassB)
}

func invMass(b *interactorState) float32 {
	if b.isStatic {
		return 0
	}
	return 1 / b.mass
}

func angularTerm(b *interactorState, r, n mgl32.Vec3) float32 {
	if b.isStatic {
		return 0
	}
	raxn := r.Cross(n)
	iRaxn := b.invInertia.Mul3x1(raxn)
	return iRaxn.Cross(r).Dot(n)
}

func applyContactImpulse(b *interactorState, r, impulse mgl32.Vec3, invM float32) {
	if b.isStatic {
		return
	}
	b.velocity = b.velocity.Add(impulse.Mul(invM))
	rxp := r.Cross(impulse)
	b.angularVelocity = b.angularVelocity.Add(b.invInertia.Mul3x1(rxp))
	b.sleeping = false
	b.idleTime = 0
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
