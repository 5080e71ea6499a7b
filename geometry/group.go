package geometry

import (
	"stlshade/aabox"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// Group is a transformed collection of shapes.  The bounds of its children are
// merged once at construction; rays that miss them skip the children
// entirely.
type Group struct {
	frame

	children    []Shape
	bounds      aabox.AABox
	transformed bool
}

func NewGroup(children []Shape, opts ...Option) *Group {
	bounds := aabox.Empty()
	for _, c := range children {
		bounds = aabox.Merge(bounds, WorldBounds(c))
	}

	g := &Group{
		frame:    newFrame(opts),
		children: children,
		bounds:   bounds,
	}
	g.transformed = !g.modelToWorld.IsIdentity()
	return g
}

func (g *Group) Children() []Shape {
	return g.children
}

func (g *Group) LocalIntersect(r ray.Ray) []Intersection {
	if len(g.children) == 0 || !g.bounds.Hits(r) {
		return nil
	}

	var xs []Intersection
	for _, c := range g.children {
		xs = append(xs, Intersect(c, r)...)
	}

	if g.transformed {
		for i := range xs {
			xs[i].groups = append(xs[i].groups, g)
		}
	}
	return xs
}

// LocalNormalAt is never meaningful for a group: intersections always name
// the leaf shape that was hit.
func (g *Group) LocalNormalAt(vec3.T) vec3.T {
	return vec3.T{}
}

func (g *Group) Bounds() aabox.AABox {
	return g.bounds
}
