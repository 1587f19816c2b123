package voxelize

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	sweepMaxIters  = 10
	autostepCutoff = 4.0
)

var zeroVec = mgl32.Vec3{0, 0, 0}

// IterateBody advances a single body by one tick against the given voxel
// access and registry. This is the semi-implicit Euler integrator: gravity,
// fluid buoyancy, per-axis friction, drag, swept-AABB collision resolution
// with autostepping, contact-impulse bounce, and sleep bookkeeping.
func IterateBody(body *RigidBody, dt float32, access VoxelAccess, registry *Registry, config *WorldConfig) {
	if dt == 0 {
		return
	}

	body.Collision = nil
	body.Stepped = false

	if body.isStatic() {
		body.Velocity = zeroVec
		body.Forces = zeroVec
		body.Impulses = zeroVec
		return
	}

	noGravity := config.Gravity.Len() == 0 || approxZero(body.GravityMultiplier)
	if isBodyAsleep(body, dt, access, registry, config, noGravity) {
		return
	}
	body.SleepFrameCount--

	oldResting := body.Resting

	applyFluidForces(body, access, registry, config)

	// a = F/m + gravity * gravityMultiplier
	a := body.Forces.Mul(1 / body.Mass).Add(config.Gravity.Mul(body.GravityMultiplier))

	// dv = impulses/m + a*dt
	dv := body.Impulses.Mul(1 / body.Mass).Add(a.Mul(dt))
	body.Velocity = body.Velocity.Add(dv)

	if !approxZero(body.Friction) {
		for axis := 0; axis < 3; axis++ {
			applyFrictionByAxis(axis, body, oldResting, dv)
		}
	}

	drag := body.airDrag(config)
	if body.InFluid {
		drag = body.fluidDrag(config)
		drag *= 1 - sq(1-body.RatioInFluid)
	}
	mult := maxf(0, 1-(drag*dt)/body.Mass)
	body.Velocity = body.Velocity.Mul(mult)

	dx := body.Velocity.Mul(dt)

	body.Forces = zeroVec
	body.Impulses = zeroVec

	var preStepAABB AABB
	if body.AutoStep {
		preStepAABB = body.AABB
	}

	resolveCollisions(body, access, registry, dx)

	if body.AutoStep {
		tryAutoStep(body, access, registry, preStepAABB, dx)
	}

	var impact mgl32.Vec3
	for i := 0; i < 3; i++ {
		if body.Resting[i] != 0 {
			if oldResting[i] == 0 {
				impact[i] = -body.Velocity[i]
			}
			body.Velocity[i] = 0
		}
	}

	mag := impact.Len()
	if mag > 0.001 {
		j := impact.Mul(body.Mass)
		body.Collision = &j
		if body.Restitution > 0 && mag > config.MinBounceImpulse {
			body.Impulses = body.Impulses.Add(j.Mul(body.Restitution))
		}
	}

	if body.Velocity.Len()*body.Velocity.Len() > 1e-5 {
		body.SleepFrameCount = reactivateSleepFrames
	}
}

func isBodyAsleep(body *RigidBody, dt float32, access VoxelAccess, registry *Registry, config *WorldConfig, noGravity bool) bool {
	if body.SleepFrameCount > 0 {
		return false
	}
	if noGravity {
		return true
	}

	gMult := 0.5 * dt * dt * body.GravityMultiplier
	sleepVec := config.Gravity.Mul(gMult)

	resting := false
	Sweep(access, registry, body.AABB, sleepVec.X(), sleepVec.Y(), sleepVec.Z(),
		func(t float32, axis int, dir int, remaining *[3]float32) bool {
			resting = true
			return true
		}, false, sweepMaxIters)

	return resting
}

func applyFluidForces(body *RigidBody, access VoxelAccess, registry *Registry, config *WorldConfig) {
	aabb := body.AABB
	cx := int32(math32.Floor(aabb.MinX))
	cz := int32(math32.Floor(aabb.MinZ))
	y0 := int32(math32.Floor(aabb.MinY))
	y1 := int32(math32.Floor(aabb.MaxY))

	testFluid := func(vx, vy, vz int32) bool {
		return registry.IsFluid(access.GetVoxel(vx, vy, vz))
	}

	if !testFluid(cx, y0, cz) {
		body.InFluid = false
		body.RatioInFluid = 0
		return
	}

	submerged := int32(1)
	cy := y0 + 1
	for cy <= y1 && testFluid(cx, cy, cz) {
		submerged++
		cy++
	}

	fluidLevel := y0 + submerged
	heightInFluid := float32(fluidLevel) - aabb.MinY
	ratio := heightInFluid / (aabb.MaxY - aabb.MinY)
	if ratio > 1 {
		ratio = 1
	}
	body.InFluid = true
	body.RatioInFluid = ratio

	vol := aabb.Width() * aabb.Height() * aabb.Depth()
	displaced := vol * ratio
	scalar := config.FluidDensity * displaced
	body.Forces = body.Forces.Add(config.Gravity.Mul(scalar))
}

// applyFrictionByAxis applies friction only on an axis where the body is
// resting against a surface (per the pre-integration resting state) and
// this tick's velocity change presses further into it.
func applyFrictionByAxis(axis int, body *RigidBody, oldResting [3]int32, dv mgl32.Vec3) {
	restDir := oldResting[axis]
	vNormal := dv[axis]
	if restDir == 0 || float32(restDir)*vNormal <= 0 {
		return
	}

	lateral := body.Velocity
	lateral[axis] = 0
	vCurr := lateral.Len()
	if approxZero(vCurr) {
		return
	}

	dvMax := math32.Abs(body.Friction * vNormal)
	scalar := float32(0)
	if vCurr > dvMax {
		scalar = (vCurr - dvMax) / vCurr
	}

	a1, a2 := (axis+1)%3, (axis+2)%3
	body.Velocity[a1] *= scalar
	body.Velocity[a2] *= scalar
}

func resolveCollisions(body *RigidBody, access VoxelAccess, registry *Registry, dx mgl32.Vec3) {
	body.Resting = [3]int32{0, 0, 0}
	box := Sweep(access, registry, body.AABB, dx.X(), dx.Y(), dx.Z(),
		func(t float32, axis int, dir int, remaining *[3]float32) bool {
			body.Resting[axis] = int32(dir)
			remaining[axis] = 0
			return false
		}, true, sweepMaxIters)
	body.AABB = box
}

// tryAutoStep re-attempts a blocked horizontal displacement after raising
// the body by the height of one voxel step, committing the result only if
// it is unobstructed and actually makes progress on the blocked axis.
func tryAutoStep(body *RigidBody, access VoxelAccess, registry *Registry, oldAABB AABB, dx mgl32.Vec3) {
	if body.Resting[1] >= 0 && !body.InFluid {
		return
	}

	xBlocked := body.Resting[0] != 0
	zBlocked := body.Resting[2] != 0
	if !xBlocked && !zBlocked {
		return
	}

	if dx.Z() != 0 {
		ratio := math32.Abs(dx.X() / dx.Z())
		if (!xBlocked && ratio > autostepCutoff) || (!zBlocked && ratio < 1.0/autostepCutoff) {
			return
		}
	}

	targetX := oldAABB.MinX + dx.X()
	targetZ := oldAABB.MinZ + dx.Z()

	// Move towards target horizontally (y locked) until the first x/z hit,
	// from the body's current (already primary-resolved) position.
	stepBox := body.AABB
	stepBox = Sweep(access, registry, stepBox, dx.X(), 0, dx.Z(),
		func(t float32, axis int, dir int, remaining *[3]float32) bool {
			if axis == 1 {
				remaining[1] = 0
				return false
			}
			return true
		}, true, sweepMaxIters)
	usedX := stepBox.MinX - body.AABB.MinX
	usedZ := stepBox.MinZ - body.AABB.MinZ

	y := stepBox.MinY
	yDist := math32.Floor(y+1.001) - y
	collided := false
	stepBox = Sweep(access, registry, stepBox, 0, yDist, 0,
		func(t float32, axis int, dir int, remaining *[3]float32) bool {
			collided = true
			return true
		}, true, sweepMaxIters)
	if collided {
		return
	}

	leftoverX := dx.X() - usedX
	leftoverZ := dx.Z() - usedZ
	var tmpResting [3]int32
	stepBox = Sweep(access, registry, stepBox, leftoverX, 0, leftoverZ,
		func(t float32, axis int, dir int, remaining *[3]float32) bool {
			tmpResting[axis] = int32(dir)
			remaining[axis] = 0
			return false
		}, true, sweepMaxIters)

	if xBlocked && approxEqual(stepBox.MinX, oldAABB.MinX) && !approxEqual(targetX, oldAABB.MinX) {
		return
	}
	if zBlocked && approxEqual(stepBox.MinZ, oldAABB.MinZ) && !approxEqual(targetZ, oldAABB.MinZ) {
		return
	}

	body.AABB = stepBox
	body.Resting[0] = tmpResting[0]
	body.Resting[2] = tmpResting[2]
	body.Stepped = true
}

func approxZero(v float32) bool {
	return math32.Abs(v) < 1e-8
}

func approxEqual(a, b float32) bool {
	return math32.Abs(a-b) < 1e-5
}

func sq(v float32) float32 { return v * v }
