// Package geometry implements the primitive shapes and groups that make up a
// scene.
//
// Every shape is defined in its own object space and carries an
// object-to-world transform.  Intersect and NormalAt translate between world
// and object space; the per-shape LocalIntersect and LocalNormalAt methods
// never see world coordinates.
package geometry

import (
	"stlshade/aabox"
	"stlshade/affinetransform"
	"stlshade/material"
	"stlshade/ray"
	"stlshade/vmath/mat33"
	"stlshade/vmath/vec3"
)

// Epsilon is the tolerance for parallel-ray rejection and surface offsets.
const Epsilon = 1e-5

// Shape is implemented by Sphere, Plane, Cube, Triangle, and Group.
type Shape interface {
	Material() material.Material
	Transform() affinetransform.AffineTransform

	// LocalIntersect returns every intersection of the object-space ray r
	// with the shape, in no particular order.
	LocalIntersect(r ray.Ray) []Intersection

	// LocalNormalAt returns the object-space surface normal at p, which is
	// assumed to lie on the surface.
	LocalNormalAt(p vec3.T) vec3.T

	// Bounds returns an object-space box containing the shape.
	Bounds() aabox.AABox

	base() *frame
}

// frame holds the state common to every shape.  The inverse and normal
// matrices are derived once, when the shape is built.
type frame struct {
	mtl                 material.Material
	modelToWorld        affinetransform.AffineTransform
	worldToModel        affinetransform.AffineTransform
	modelToWorldNormals mat33.T
}

// Option configures a shape at construction.
type Option func(*frame)

func WithTransform(t affinetransform.AffineTransform) Option {
	return func(f *frame) {
		f.modelToWorld = t
	}
}

func WithMaterial(m material.Material) Option {
	return func(f *frame) {
		f.mtl = m
	}
}

func newFrame(opts []Option) frame {
	f := frame{
		mtl:          material.Default(),
		modelToWorld: affinetransform.Identity(),
	}
	for _, opt := range opts {
		opt(&f)
	}
	f.worldToModel = f.modelToWorld.Invert()
	f.modelToWorldNormals = f.modelToWorld.NormalTransformMat()
	return f
}

func (f *frame) Material() material.Material {
	return f.mtl
}

func (f *frame) Transform() affinetransform.AffineTransform {
	return f.modelToWorld
}

func (f *frame) base() *frame {
	return f
}

// Intersect returns the intersections of the world-space ray r with s.  The
// ray is mapped into object space without renormalization, so the returned t
// values are valid on r.
func Intersect(s Shape, r ray.Ray) []Intersection {
	return s.LocalIntersect(r.Transform(s.base().worldToModel))
}

// NormalAt returns the unit world-space normal of s at the world-space point
// p.
func NormalAt(s Shape, p vec3.T) vec3.T {
	f := s.base()
	local := s.LocalNormalAt(affinetransform.TransformPoint(f.worldToModel, p))
	return vec3.Normalize(mat33.MulMV(f.modelToWorldNormals, local))
}

// WorldBounds returns a box containing s in the space of its parent.
func WorldBounds(s Shape) aabox.AABox {
	return s.Bounds().Transform(s.Transform())
}
