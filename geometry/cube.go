package geometry

import (
	"math"

	"stlshade/aabox"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Cube is the axis-aligned cube spanning [-1, 1] on every axis.
type Cube struct {
	frame
}

func NewCube(opts ...Option) *Cube {
	return &Cube{frame: newFrame(opts)}
}

// checkAxis returns the parameters at which a ray crosses the two faces of the
// cube normal to one axis, smallest first.
func checkAxis(origin, direction float64) (float64, float64) {
	tminNumerator := -1 - origin
	tmaxNumerator := 1 - origin

	var tmin, tmax float64
	if math.Abs(direction) >= Epsilon {
		tmin = tminNumerator / direction
		tmax = tmaxNumerator / direction
	} else {
		tmin = tminNumerator * math.Inf(1)
		tmax = tmaxNumerator * math.Inf(1)
	}

	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	return tmin, tmax
}

func (c *Cube) LocalIntersect(r ray.Ray) []Intersection {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		lo, hi := checkAxis(r.Origin[axis], r.Direction[axis])
		// NaN bounds come from a parallel ray lying exactly on a face; they
		// leave the running interval untouched.
		if lo > tmin {
			tmin = lo
		}
		if hi < tmax {
			tmax = hi
		}
	}

	if tmin > tmax {
		return nil
	}
	return []Intersection{
		{T: tmin, Object: c},
		{T: tmax, Object: c},
	}
}

// LocalNormalAt picks the face whose axis has the largest magnitude
// coordinate, preferring X, then Y, then Z on ties.
func (c *Cube) LocalNormalAt(p vec3.T) vec3.T {
	ax, ay, az := math.Abs(p[0]), math.Abs(p[1]), math.Abs(p[2])
	maxc := math.Max(ax, math.Max(ay, az))

	switch maxc {
	case ax:
		return vec3.T{math.Copysign(1, p[0]), 0, 0}
	case ay:
		return vec3.T{0, math.Copysign(1, p[1]), 0}
	}
	return vec3.T{0, 0, math.Copysign(1, p[2])}
}

func (c *Cube) Bounds() aabox.AABox {
	return aabox.FromPoints(vec3.T{-1, -1, -1}, vec3.T{1, 1, 1})
}
