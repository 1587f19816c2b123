package voxelize

import "github.com/chewxy/math32"

// SweepCallback is invoked on each axis-aligned impact during a sweep.
// axis is 0=x, 1=y, 2=z; dir is -1 or +1, the side of the box that hit.
// remaining is the displacement not yet consumed on that axis; the
// callback may mutate it (e.g. zero it) to influence later axes. Return
// true to stop the sweep early, false to keep grazing through remaining
// impacts.
type SweepCallback func(cumulativeT float32, axis int, dir int, remaining *[3]float32) bool

// axis ordering used to break simultaneous-crossing ties: x, then z, then y.
var sweepAxisOrder = [3]int{0, 2, 1}

// Sweep advances aabb by displacement dx, dy, dz through voxel terrain,
// invoking onHit at every voxel-face crossing. When translate is true the
// caller's callback is expected to zero out the blocked axis in remaining
// so the sweep continues resolving the other axes (collision-response
// mode); when false the sweep is read-only (used by the sleep probe) and
// the box position it reports is discarded by the caller.
//
// Sweep is bounded by maxIters impacts to guarantee termination on
// pathological/degenerate geometry.
func Sweep(access VoxelAccess, registry *Registry, aabb AABB, dx, dy, dz float32, onHit SweepCallback, translate bool, maxIters int) AABB {
	remaining := [3]float32{dx, dy, dz}
	cumulativeT := float32(0)
	box := aabb

	for iter := 0; iter < maxIters; iter++ {
		if remaining[0] == 0 && remaining[1] == 0 && remaining[2] == 0 {
			break
		}

		hitAxis := -1
		hitDir := 0
		hitT := float32(1e30)

		for _, axis := range sweepAxisOrder {
			d := remaining[axis]
			if d == 0 {
				continue
			}
			t, dir, ok := firstImpactOnAxis(access, registry, box, axis, d)
			if !ok {
				continue
			}
			if t < hitT {
				hitT = t
				hitAxis = axis
				hitDir = dir
			}
		}

		if hitAxis == -1 {
			// No further obstruction on any axis: consume all remaining
			// displacement in one go.
			box = box.Translate(remaining[0], remaining[1], remaining[2])
			remaining = [3]float32{0, 0, 0}
			break
		}

		// Advance the box up to the impact point on every axis still moving.
		step := [3]float32{0, 0, 0}
		for _, axis := range sweepAxisOrder {
			if remaining[axis] == 0 {
				continue
			}
			step[axis] = remaining[axis] * hitT
		}
		box = box.Translate(step[0], step[1], step[2])
		for a := 0; a < 3; a++ {
			remaining[a] -= step[a]
		}
		cumulativeT += hitT

		stop := onHit(cumulativeT, hitAxis, hitDir, &remaining)
		if !translate {
			// Read-only probe: any impact at all means resting, caller
			// inspects the return and discards position/remaining.
			return box
		}
		if stop {
			break
		}
	}

	return box
}

// firstImpactOnAxis finds the smallest fraction t in [0,1] such
// that translating box by d*t along axis causes a solid-voxel face
// crossing, scanning the swept volume on the other two axes at the box's
// current extents.
func firstImpactOnAxis(access VoxelAccess, registry *Registry, box AABB, axis int, d float32) (t float32, dir int, ok bool) {
	if d == 0 {
		return 0, 0, false
	}
	dirf := 1
	if d < 0 {
		dirf = -1
	}

	// Leading face of the box on this axis, and the first voxel boundary
	// it would cross moving in direction dirf.
	var lead float32
	switch axis {
	case 0:
		if dirf > 0 {
			lead = box.MaxX
		} else {
			lead = box.MinX
		}
	case 1:
		if dirf > 0 {
			lead = box.MaxY
		} else {
			lead = box.MinY
		}
	case 2:
		if dirf > 0 {
			lead = box.MaxZ
		} else {
			lead = box.MinZ
		}
	}

	// A leading face that already lies on a voxel boundary tests the voxel
	// it touches at t=0.
	var boundary float32
	if dirf > 0 {
		boundary = math32.Ceil(lead)
	} else {
		boundary = math32.Floor(lead)
	}

	distToBoundary := boundary - lead
	candidate := distToBoundary / d
	if candidate < 0 || candidate > 1 {
		// No voxel boundary crossed within this displacement.
		return 0, 0, false
	}

	// March voxel boundaries until we find one with a solid block spanning
	// the other two axes over the box's current (perpendicular) extent, or
	// we exceed the displacement.
	for candidate >= 0 && candidate <= 1 {
		testBox := box.Translate(
			pickAxis(axis, 0, d*candidate),
			pickAxis(axis, 1, d*candidate),
			pickAxis(axis, 2, d*candidate),
		)
		if solidAtLeadingFace(access, registry, testBox, axis, dirf) {
			return candidate, dirf, true
		}
		boundary += float32(dirf)
		candidate = (boundary - lead) / d
	}
	return 0, 0, false
}

func pickAxis(axis, want int, v float32) float32 {
	if axis == want {
		return v
	}
	return 0
}

// solidAtLeadingFace checks whether any solid voxel spans the box's
// leading face on axis, at its current perpendicular extent.
func solidAtLeadingFace(access VoxelAccess, registry *Registry, box AABB, axis int, dir int) bool {
	var x0, x1, y0, y1, z0, z1 int32

	switch axis {
	case 0:
		vx := box.MaxX
		if dir < 0 {
			vx = box.MinX
		}
		x0 = floorToVoxel(vx, dir)
		x1 = x0
		y0, y1 = voxelRange(box.MinY, box.MaxY)
		z0, z1 = voxelRange(box.MinZ, box.MaxZ)
	case 1:
		vy := box.MaxY
		if dir < 0 {
			vy = box.MinY
		}
		y0 = floorToVoxel(vy, dir)
		y1 = y0
		x0, x1 = voxelRange(box.MinX, box.MaxX)
		z0, z1 = voxelRange(box.MinZ, box.MaxZ)
	case 2:
		vz := box.MaxZ
		if dir < 0 {
			vz = box.MinZ
		}
		z0 = floorToVoxel(vz, dir)
		z1 = z0
		x0, x1 = voxelRange(box.MinX, box.MaxX)
		y0, y1 = voxelRange(box.MinY, box.MaxY)
	}

	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				id := access.GetVoxel(x, y, z)
				if registry.IsSolid(id) {
					return true
				}
			}
		}
	}
	return false
}

func floorToVoxel(v float32, dir int) int32 {
	if dir > 0 {
		return int32(math32.Floor(v))
	}
	return int32(math32.Floor(v - 1))
}

func voxelRange(lo, hi float32) (int32, int32) {
	a := int32(math32.Floor(lo))
	b := int32(math32.Ceil(hi)) - 1
	if b < a {
		b = a
	}
	return a, b
}
