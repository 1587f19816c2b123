package voxelize

import "testing"

func newSweepTestMap(t *testing.T) (*ChunkMap, *Registry, uint32) {
	t.Helper()
	registry := NewRegistry()
	registry.Register(NewBlock("Stone").ID(1).Faces("all").Build())
	chunks := NewChunkMap(16, 8, [2]int32{-10, -10}, [2]int32{10, 10})
	return chunks, registry, 1
}

func TestSweep_NoObstruction_ConsumesFullDisplacement(t *testing.T) {
	chunks, registry, _ := newSweepTestMap(t) // all air, no solid voxel placed
	aabb := NewAABB(0, 0, 0, 1, 1, 1)

	hits := 0
	result := Sweep(chunks, registry, aabb, 2, 3, -1,
		func(cumulativeT float32, axis int, dir int, remaining *[3]float32) bool {
			hits++
			return false
		}, true, 10)

	if hits != 0 {
		t.Errorf("expected no impacts through open air, got %d", hits)
	}
	want := aabb.Translate(2, 3, -1)
	if result != want {
		t.Errorf("expected full displacement %+v, got %+v", want, result)
	}
}

func TestSweep_TieBreakOrder_XBeforeZ(t *testing.T) {
	chunks, registry, stone := newSweepTestMap(t)
	// Box occupies x:[0,1) z:[0,1); moving +x and +z by 2 each crosses the
	// x=2 and z=2 voxel boundaries at the same fraction (t=0.5). Solid
	// voxels are placed just past each boundary so both axes are
	// simultaneously blocked.
	chunks.SetVoxel(2, 0, 0, stone)
	chunks.SetVoxel(0, 0, 2, stone)

	aabb := NewAABB(0, 0, 0, 1, 1, 1)
	var firstAxis = -1
	var firstT float32 = -1

	Sweep(chunks, registry, aabb, 2, 0, 2,
		func(cumulativeT float32, axis int, dir int, remaining *[3]float32) bool {
			if firstAxis == -1 {
				firstAxis = axis
				firstT = cumulativeT
			}
			remaining[axis] = 0
			return false
		}, true, 10)

	if firstAxis != 0 {
		t.Errorf("expected tie-break to resolve to axis 0 (x) first, got axis %d", firstAxis)
	}
	if firstT != 0.5 {
		t.Errorf("expected first impact at t=0.5, got %v", firstT)
	}
}

func TestSweep_BoundedByMaxIters(t *testing.T) {
	chunks, registry, stone := newSweepTestMap(t)
	// A solid voxel at every x column from 2 upward means the box keeps
	// re-colliding every iteration if the caller never zeroes remaining:
	// this exercises the maxIters cap rather than natural convergence.
	for vx := int32(2); vx <= 9; vx++ {
		chunks.SetVoxel(vx, 0, 0, stone)
	}

	aabb := NewAABB(0, 0, 0, 1, 1, 1)
	hits := 0
	const maxIters = 2
	Sweep(chunks, registry, aabb, 5, 0, 0,
		func(cumulativeT float32, axis int, dir int, remaining *[3]float32) bool {
			hits++
			return false // keep going; do not zero remaining, forcing re-collision
		}, true, maxIters)

	if hits != maxIters {
		t.Errorf("expected exactly %d impacts (bounded by maxIters), got %d", maxIters, hits)
	}
}

func TestSweep_StopsAtObstruction(t *testing.T) {
	chunks, registry, stone := newSweepTestMap(t)
	chunks.SetVoxel(2, 0, 0, stone)

	aabb := NewAABB(0, 0, 0, 1, 1, 1)
	var gotAxis, gotDir int
	result := Sweep(chunks, registry, aabb, 5, 0, 0,
		func(cumulativeT float32, axis int, dir int, remaining *[3]float32) bool {
			gotAxis = axis
			gotDir = dir
			remaining[axis] = 0
			return false
		}, true, 10)

	if gotAxis != 0 || gotDir != 1 {
		t.Errorf("expected impact on axis 0 dir +1, got axis %d dir %d", gotAxis, gotDir)
	}
	if result.MaxX > 2.0001 {
		t.Errorf("expected box to stop at or before x=2, got MaxX=%v", result.MaxX)
	}
}
