package geometry

import (
	"stlshade/affinetransform"
	"stlshade/vmath/mat33"
	"stlshade/vmath/vec3"
)

// Intersection records that a ray met Object at parameter T.
type Intersection struct {
	T      float64
	Object Shape

	// Transformed groups enclosing Object, innermost first.
	groups []*Group
}

// NormalAt returns the unit world-space normal at p, which must be the point
// of this intersection.  Unlike the package-level NormalAt, it accounts for
// the transforms of any groups enclosing the object.
func (i Intersection) NormalAt(p vec3.T) vec3.T {
	for j := len(i.groups) - 1; j >= 0; j-- {
		p = affinetransform.TransformPoint(i.groups[j].worldToModel, p)
	}
	n := NormalAt(i.Object, p)
	for _, g := range i.groups {
		n = vec3.Normalize(mat33.MulMV(g.modelToWorldNormals, n))
	}
	return n
}
