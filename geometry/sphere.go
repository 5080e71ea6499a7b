package geometry

import (
	"math"

	"stlshade/aabox"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Sphere is the unit sphere centered on the origin.
type Sphere struct {
	frame
}

func NewSphere(opts ...Option) *Sphere {
	return &Sphere{frame: newFrame(opts)}
}

func (s *Sphere) LocalIntersect(r ray.Ray) []Intersection {
	a := vec3.IProd(r.Direction, r.Direction)
	b := 2 * vec3.IProd(r.Direction, r.Origin)
	c := vec3.IProd(r.Origin, r.Origin) - 1

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return nil
	}

	root := math.Sqrt(discriminant)
	return []Intersection{
		{T: (-b - root) / (2 * a), Object: s},
		{T: (-b + root) / (2 * a), Object: s},
	}
}

func (s *Sphere) LocalNormalAt(p vec3.T) vec3.T {
	return p
}

func (s *Sphere) Bounds() aabox.AABox {
	return aabox.FromPoints(vec3.T{-1, -1, -1}, vec3.T{1, 1, 1})
}
