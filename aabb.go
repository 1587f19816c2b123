package voxelize

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

// NewAABB builds a box from a min corner and per-axis widths.
func NewAABB(minX, minY, minZ, width, height, depth float32) AABB {
	return AABB{
		MinX: minX, MinY: minY, MinZ: minZ,
		MaxX: minX + width, MaxY: minY + height, MaxZ: minZ + depth,
	}
}

func (b AABB) Width() float32  { return b.MaxX - b.MinX }
func (b AABB) Height() float32 { return b.MaxY - b.MinY }
func (b AABB) Depth() float32  { return b.MaxZ - b.MinZ }

func (b AABB) Min() mgl32.Vec3 { return mgl32.Vec3{b.MinX, b.MinY, b.MinZ} }
func (b AABB) Max() mgl32.Vec3 { return mgl32.Vec3{b.MaxX, b.MaxY, b.MaxZ} }

// Translate returns a copy shifted by dx, dy, dz.
func (b AABB) Translate(dx, dy, dz float32) AABB {
	return AABB{
		MinX: b.MinX + dx, MinY: b.MinY + dy, MinZ: b.MinZ + dz,
		MaxX: b.MaxX + dx, MaxY: b.MaxY + dy, MaxZ: b.MaxZ + dz,
	}
}

// Intersects reports whether two boxes overlap on every axis.
func (b AABB) Intersects(o AABB) bool {
	return b.MinX < o.MaxX && b.MaxX > o.MinX &&
		b.MinY < o.MaxY && b.MaxY > o.MinY &&
		b.MinZ < o.MaxZ && b.MaxZ > o.MinZ
}

// Union expands this box to also contain o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		MinX: minf(b.MinX, o.MinX), MinY: minf(b.MinY, o.MinY), MinZ: minf(b.MinZ, o.MinZ),
		MaxX: maxf(b.MaxX, o.MaxX), MaxY: maxf(b.MaxY, o.MaxY), MaxZ: maxf(b.MaxZ, o.MaxZ),
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
