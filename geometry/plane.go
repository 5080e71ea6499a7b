package geometry

import (
	"math"

	"stlshade/aabox"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Plane is the infinite XZ plane.
type Plane struct {
	frame
}

func NewPlane(opts ...Option) *Plane {
	return &Plane{frame: newFrame(opts)}
}

func (p *Plane) LocalIntersect(r ray.Ray) []Intersection {
	if math.Abs(r.Direction[1]) < Epsilon {
		return nil
	}
	return []Intersection{
		{T: -r.Origin[1] / r.Direction[1], Object: p},
	}
}

func (p *Plane) LocalNormalAt(vec3.T) vec3.T {
	return vec3.T{0, 1, 0}
}

func (p *Plane) Bounds() aabox.AABox {
	return aabox.Everything()
}
