package ray

import (
	"math"

	"stlshade/affinetransform"
	"stlshade/vmath/vec3"
)

// Span is a closed interval of ray parameters.
type Span struct {
	Lo, Hi float64
}

func NaNSpan() Span {
	return Span{math.NaN(), math.NaN()}
}

func SpanOverlaps(a, b Span) bool {
	return !(a.Lo > b.Hi || a.Hi < b.Lo)
}

func MinContainingSpan(a, b Span) Span {
	min := a.Lo
	if b.Lo < a.Lo {
		min = b.Lo
	}

	max := a.Hi
	if b.Hi > a.Hi {
		max = b.Hi
	}

	return Span{min, max}
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

// IsEmpty reports whether s contains no parameters at all.
func (s Span) IsEmpty() bool {
	return s.Lo > s.Hi
}

// Ray is the half-line Origin + t*Direction.  Direction is not required to be
// unit length.
type Ray struct {
	Origin    vec3.T
	Direction vec3.T
}

func (r Ray) Position(t float64) vec3.T {
	return vec3.T{
		r.Origin[0] + t*r.Direction[0],
		r.Origin[1] + t*r.Direction[1],
		r.Origin[2] + t*r.Direction[2],
	}
}

// Transform maps r through a.  The direction is not renormalized, so a
// parameter t names the same point before and after the transform.
func (r Ray) Transform(a affinetransform.AffineTransform) Ray {
	return Ray{
		Origin:    affinetransform.TransformPoint(a, r.Origin),
		Direction: affinetransform.TransformVector(a, r.Direction),
	}
}
