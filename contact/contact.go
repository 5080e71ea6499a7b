// Package contact selects the visible intersection along a ray and derives the
// quantities needed to shade it.
package contact

import (
	"math"
	"sort"

	"stlshade/geometry"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Computations describes a ray's contact with a surface.
type Computations struct {
	T      float64
	Object geometry.Shape

	Point   vec3.T
	EyeV    vec3.T
	NormalV vec3.T

	// Inside is set when the ray started inside the object.  NormalV has
	// already been flipped to face the eye.
	Inside bool

	// OverPoint is Point nudged off the surface along NormalV, for shadow
	// rays that must not hit the surface they start on.
	OverPoint vec3.T
}

// Sort orders xs by ascending T.  NaN values sort last.
func Sort(xs []geometry.Intersection) {
	sort.SliceStable(xs, func(i, j int) bool {
		a, b := xs[i].T, xs[j].T
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a < b
	})
}

// Hit returns the intersection with the smallest non-negative T.  xs need not
// be sorted; among equal T the first is returned.
func Hit(xs []geometry.Intersection) (geometry.Intersection, bool) {
	best := -1
	for i, x := range xs {
		if !(x.T >= 0) {
			continue
		}
		if best == -1 || x.T < xs[best].T {
			best = i
		}
	}
	if best == -1 {
		return geometry.Intersection{}, false
	}
	return xs[best], true
}

// Prepare computes the shading inputs for the intersection i of r.
func Prepare(i geometry.Intersection, r ray.Ray) Computations {
	point := r.Position(i.T)
	c := Computations{
		T:       i.T,
		Object:  i.Object,
		Point:   point,
		EyeV:    vec3.Negate(r.Direction),
		NormalV: i.NormalAt(point),
	}

	if vec3.IProd(c.NormalV, c.EyeV) < 0 {
		c.Inside = true
		c.NormalV = vec3.Negate(c.NormalV)
	}
	c.OverPoint = vec3.AddVV(c.Point, vec3.MulVS(c.NormalV, geometry.Epsilon))
	return c
}
