// Package aabox implements axis-aligned bounding boxes.
package aabox

import (
	"math"

	"stlshade/affinetransform"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// Empty returns the box containing nothing.  It is the identity for Merge.
func Empty() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

// Everything returns the box containing all of space.
func Everything() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
		Y: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
		Z: ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)},
	}
}

func FromPoints(min, max vec3.T) AABox {
	return AABox{
		X: ray.Span{Lo: min[0], Hi: max[0]},
		Y: ray.Span{Lo: min[1], Hi: max[1]},
		Z: ray.Span{Lo: min[2], Hi: max[2]},
	}
}

func (a AABox) Min() vec3.T {
	return vec3.T{a.X.Lo, a.Y.Lo, a.Z.Lo}
}

func (a AABox) Max() vec3.T {
	return vec3.T{a.X.Hi, a.Y.Hi, a.Z.Hi}
}

// Merge returns the smallest box containing both a and b.
func Merge(a, b AABox) AABox {
	return AABox{
		X: ray.MinContainingSpan(a.X, b.X),
		Y: ray.MinContainingSpan(a.Y, b.Y),
		Z: ray.MinContainingSpan(a.Z, b.Z),
	}
}

// GrowToPoint returns the smallest box containing a and p.
func GrowToPoint(a AABox, p vec3.T) AABox {
	return Merge(a, FromPoints(p, p))
}

func (a AABox) IsEmpty() bool {
	return a.X.IsEmpty() || a.Y.IsEmpty() || a.Z.IsEmpty()
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

// Transform returns a box containing the image of a under t.  Unbounded boxes
// become Everything, since their corners cannot be mapped.
func (a AABox) Transform(t affinetransform.AffineTransform) AABox {
	if a.IsEmpty() {
		return Empty()
	}
	if !a.IsFinite() {
		return Everything()
	}

	result := Empty()
	for _, x := range []float64{a.X.Lo, a.X.Hi} {
		for _, y := range []float64{a.Y.Lo, a.Y.Hi} {
			for _, z := range []float64{a.Z.Lo, a.Z.Hi} {
				result = GrowToPoint(result, affinetransform.TransformPoint(t, vec3.T{x, y, z}))
			}
		}
	}
	return result
}

// RayTest clips r against b with the slab method, returning the span of ray
// parameters inside the box, or a NaN span if the ray misses.  Axes on which
// the ray is parallel to and exactly on a slab face don't constrain the
// result.
func RayTest(r ray.Ray, b AABox) ray.Span {
	if b.IsEmpty() {
		return ray.NaNSpan()
	}

	cover := ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)}
	slabs := [3]ray.Span{b.X, b.Y, b.Z}
	for axis, slab := range slabs {
		c := ray.Span{
			Lo: (slab.Lo - r.Origin[axis]) / r.Direction[axis],
			Hi: (slab.Hi - r.Origin[axis]) / r.Direction[axis],
		}
		if c.Hi < c.Lo {
			c.Lo, c.Hi = c.Hi, c.Lo
		}
		if math.IsInf(c.Lo, 0) && c.Lo == c.Hi {
			// Parallel to the slab and outside it.
			return ray.NaNSpan()
		}
		if !ray.SpanOverlaps(cover, c) {
			return ray.NaNSpan()
		}
		if c.Lo > cover.Lo {
			cover.Lo = c.Lo
		}
		if c.Hi < cover.Hi {
			cover.Hi = c.Hi
		}
	}

	return cover
}

// Hits reports whether r passes through b.
func (a AABox) Hits(r ray.Ray) bool {
	return !RayTest(r, a).IsNaN()
}

// SurfaceArea returns the area of the box's faces.  Empty boxes have zero area.
func (a AABox) SurfaceArea() float64 {
	if a.IsEmpty() {
		return 0
	}
	dx := a.X.Hi - a.X.Lo
	dy := a.Y.Hi - a.Y.Lo
	dz := a.Z.Hi - a.Z.Lo
	return 2 * (dx*dy + dy*dz + dz*dx)
}
