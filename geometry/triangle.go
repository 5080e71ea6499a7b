package geometry

import (
	"math"

	"stlshade/aabox"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Triangle is a flat triangle with vertices P1, P2, P3.  Its edges and normal
// are computed once at construction.
type Triangle struct {
	frame

	P1, P2, P3 vec3.T
	e1, e2     vec3.T
	normal     vec3.T
}

func NewTriangle(p1, p2, p3 vec3.T, opts ...Option) *Triangle {
	e1 := vec3.SubVV(p2, p1)
	e2 := vec3.SubVV(p3, p1)
	return &Triangle{
		frame:  newFrame(opts),
		P1:     p1,
		P2:     p2,
		P3:     p3,
		e1:     e1,
		e2:     e2,
		normal: vec3.Normalize(vec3.CProd(e2, e1)),
	}
}

// LocalIntersect uses the Moller-Trumbore test.
func (tri *Triangle) LocalIntersect(r ray.Ray) []Intersection {
	dirCrossE2 := vec3.CProd(r.Direction, tri.e2)
	det := vec3.IProd(tri.e1, dirCrossE2)
	if math.Abs(det) < Epsilon {
		return nil
	}

	f := 1 / det
	p1ToOrigin := vec3.SubVV(r.Origin, tri.P1)
	u := f * vec3.IProd(p1ToOrigin, dirCrossE2)
	if u < 0 || u > 1 {
		return nil
	}

	originCrossE1 := vec3.CProd(p1ToOrigin, tri.e1)
	v := f * vec3.IProd(r.Direction, originCrossE1)
	if v < 0 || u+v > 1 {
		return nil
	}

	return []Intersection{
		{T: f * vec3.IProd(tri.e2, originCrossE1), Object: tri},
	}
}

func (tri *Triangle) LocalNormalAt(vec3.T) vec3.T {
	return tri.normal
}

func (tri *Triangle) Bounds() aabox.AABox {
	return aabox.FromPoints(
		vec3.ElementwiseMin(tri.P1, vec3.ElementwiseMin(tri.P2, tri.P3)),
		vec3.ElementwiseMax(tri.P1, vec3.ElementwiseMax(tri.P2, tri.P3)),
	)
}
