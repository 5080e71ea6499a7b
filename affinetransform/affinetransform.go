// Package affinetransform represents affine maps as a linear part followed by
// a translation.
package affinetransform

import (
	"math"

	"stlshade/vmath/mat33"
	"stlshade/vmath/mat44"
	"stlshade/vmath/vec3"
)

type AffineTransform struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() AffineTransform {
	return AffineTransform{
		Linear: mat33.Identity(),
	}
}

func Scale(s float64) AffineTransform {
	return ScaleXYZ(vec3.T{s, s, s})
}

func ScaleXYZ(s vec3.T) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{s[0], 0, 0, 0, s[1], 0, 0, 0, s[2]},
	}
}

func Translate(x vec3.T) AffineTransform {
	result := Identity()
	result.Offset = x
	return result
}

func RotateX(radians float64) AffineTransform {
	s, c := math.Sincos(radians)
	return AffineTransform{
		Linear: mat33.T{
			1, 0, 0,
			0, c, -s,
			0, s, c,
		},
	}
}

func RotateY(radians float64) AffineTransform {
	s, c := math.Sincos(radians)
	return AffineTransform{
		Linear: mat33.T{
			c, 0, s,
			0, 1, 0,
			-s, 0, c,
		},
	}
}

func RotateZ(radians float64) AffineTransform {
	s, c := math.Sincos(radians)
	return AffineTransform{
		Linear: mat33.T{
			c, -s, 0,
			s, c, 0,
			0, 0, 1,
		},
	}
}

// Compose returns the transform that applies b, then a.
func Compose(a, b AffineTransform) AffineTransform {
	return AffineTransform{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

// Chain composes ts so that ts[0] is applied first.
func Chain(ts ...AffineTransform) AffineTransform {
	result := Identity()
	for _, t := range ts {
		result = Compose(t, result)
	}
	return result
}

func (t AffineTransform) Invert() AffineTransform {
	mat := mat44.T{
		t.Linear[0], t.Linear[1], t.Linear[2], t.Offset[0],
		t.Linear[3], t.Linear[4], t.Linear[5], t.Offset[1],
		t.Linear[6], t.Linear[7], t.Linear[8], t.Offset[2],
		0, 0, 0, 1,
	}

	inv := mat44.Inverse(mat)

	return AffineTransform{
		Linear: mat33.T{
			inv[0], inv[1], inv[2],
			inv[4], inv[5], inv[6],
			inv[8], inv[9], inv[10],
		},
		Offset: vec3.T{inv[3], inv[7], inv[11]},
	}
}

// NormalTransformMat maps model-space normals to world space.  Normals must be
// renormalized after the multiply.
func (t AffineTransform) NormalTransformMat() mat33.T {
	return mat33.Transpose(mat33.Inverse(t.Linear))
}

func (t AffineTransform) IsIdentity() bool {
	return t == Identity()
}

func TransformPoint(a AffineTransform, b vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(a.Linear, b), a.Offset)
}

// TransformVector applies only the linear part of a.
func TransformVector(a AffineTransform, b vec3.T) vec3.T {
	return mat33.MulMV(a.Linear, b)
}

// ViewTransform returns the world-to-eye transform for an eye at from looking
// toward to.  The eye looks down its own -Z axis with up roughly +Y.
func ViewTransform(from, to, up vec3.T) AffineTransform {
	forward := vec3.Normalize(vec3.SubVV(to, from))
	left := vec3.CProd(forward, vec3.Normalize(up))
	trueUp := vec3.CProd(left, forward)

	orientation := AffineTransform{
		Linear: mat33.FromRows(left, trueUp, vec3.Negate(forward)),
	}
	return Compose(orientation, Translate(vec3.Negate(from)))
}
