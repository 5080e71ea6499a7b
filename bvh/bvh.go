// Package bvh arranges shapes into a tree of nested groups, so that each
// group's bounding box culls rays for its whole subtree.
package bvh

import (
	"math"
	"sort"

	"stlshade/aabox"
	"stlshade/geometry"
)

type element struct {
	shape    geometry.Shape
	bounds   aabox.AABox
	centroid [3]float64
}

type node struct {
	bounds   aabox.AABox
	elements []element

	lo *node
	hi *node
}

type options struct {
	leafSize   int
	splitCount int
	splitCost  float64
}

// Option adjusts how Build partitions shapes.
type Option func(*options)

// WithLeafSize stops splitting nodes holding n or fewer shapes.
func WithLeafSize(n int) Option {
	return func(o *options) {
		o.leafSize = n
	}
}

// WithSplitCount sets how many candidate cuts are tried on each axis.
func WithSplitCount(n int) Option {
	return func(o *options) {
		o.splitCount = n
	}
}

// WithSplitCost sets the surface-area cost charged for every split.  Larger
// values produce shallower trees.
func WithSplitCost(c float64) Option {
	return func(o *options) {
		o.splitCost = c
	}
}

// Build returns a group holding shapes.  Shapes with finite bounds are
// partitioned by the surface area heuristic into nested untransformed groups;
// unbounded shapes such as planes stay at the top level.
//
// The result intersects exactly the same shapes as geometry.NewGroup(shapes).
func Build(shapes []geometry.Shape, opts ...Option) *geometry.Group {
	o := options{
		leafSize:   4,
		splitCount: 8,
		splitCost:  1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.leafSize < 1 {
		o.leafSize = 1
	}
	if o.splitCount < 1 {
		o.splitCount = 1
	}

	var top []geometry.Shape
	var elements []element
	rootBox := aabox.Empty()
	for _, s := range shapes {
		b := geometry.WorldBounds(s)
		if !b.IsFinite() || b.IsEmpty() {
			top = append(top, s)
			continue
		}
		min, max := b.Min(), b.Max()
		elements = append(elements, element{
			shape:    s,
			bounds:   b,
			centroid: [3]float64{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2},
		})
		rootBox = aabox.Merge(rootBox, b)
	}

	if len(elements) == 0 {
		return geometry.NewGroup(top)
	}

	root := &node{bounds: rootBox, elements: elements}
	refine(root, o)

	return geometry.NewGroup(append(top, flatten(root)...))
}

// refine splits nodes until no split pays for itself.
func refine(root *node, o options) {
	workStack := []*node{root}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if len(cur.elements) <= o.leafSize {
			continue
		}

		cur.split(o)

		if cur.lo != nil {
			workStack = append(workStack, cur.lo)
		}
		if cur.hi != nil {
			workStack = append(workStack, cur.hi)
		}
	}
}

func (cur *node) split(o options) {
	n := len(cur.elements)

	bestObjective := math.Inf(1)
	bestAxis := -1
	bestCut := 0

	for axis := 0; axis < 3; axis++ {
		sortAlong(cur.elements, axis)

		// prefix[i] bounds elements[:i]; suffix[i] bounds elements[i:].
		prefix := make([]aabox.AABox, n+1)
		prefix[0] = aabox.Empty()
		for i, e := range cur.elements {
			prefix[i+1] = aabox.Merge(prefix[i], e.bounds)
		}
		suffix := make([]aabox.AABox, n+1)
		suffix[n] = aabox.Empty()
		for i := n - 1; i >= 0; i-- {
			suffix[i] = aabox.Merge(suffix[i+1], cur.elements[i].bounds)
		}

		for k := 1; k <= o.splitCount; k++ {
			cut := k * n / (o.splitCount + 1)
			if cut == 0 || cut == n {
				continue
			}
			objective := float64(cut)*prefix[cut].SurfaceArea() + float64(n-cut)*suffix[cut].SurfaceArea()
			if objective < bestObjective {
				bestObjective = objective
				bestAxis = axis
				bestCut = cut
			}
		}
	}

	if bestAxis == -1 {
		return
	}

	// Keep the node whole unless splitting beats testing every element.
	parentObjective := float64(n) * cur.bounds.SurfaceArea()
	if bestObjective+o.splitCost*cur.bounds.SurfaceArea() >= parentObjective {
		return
	}

	sortAlong(cur.elements, bestAxis)
	lo := append([]element(nil), cur.elements[:bestCut]...)
	hi := append([]element(nil), cur.elements[bestCut:]...)

	cur.lo = &node{bounds: boundsOf(lo), elements: lo}
	cur.hi = &node{bounds: boundsOf(hi), elements: hi}

	// All of cur's elements have been divided among its children.
	cur.elements = nil
}

func sortAlong(elements []element, axis int) {
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].centroid[axis] < elements[j].centroid[axis]
	})
}

func boundsOf(elements []element) aabox.AABox {
	b := aabox.Empty()
	for _, e := range elements {
		b = aabox.Merge(b, e.bounds)
	}
	return b
}

// flatten returns the shapes that stand for n inside its parent group.
func flatten(n *node) []geometry.Shape {
	if n.lo == nil && n.hi == nil {
		shapes := make([]geometry.Shape, 0, len(n.elements))
		for _, e := range n.elements {
			shapes = append(shapes, e.shape)
		}
		return shapes
	}

	var children []geometry.Shape
	for _, c := range []*node{n.lo, n.hi} {
		if c == nil {
			continue
		}
		sub := flatten(c)
		if len(sub) == 1 {
			children = append(children, sub...)
			continue
		}
		children = append(children, geometry.NewGroup(sub))
	}
	return children
}
