package geometry

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"stlshade/affinetransform"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

func ts(xs []Intersection) []float64 {
	var out []float64
	for _, x := range xs {
		out = append(out, x.T)
	}
	return out
}

func TestSphereLocalIntersect(t *testing.T) {
	testCases := []struct {
		r    ray.Ray
		want []float64
	}{
		{ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 1}}, []float64{4, 6}},
		{ray.Ray{Origin: vec3.T{0, 1, -5}, Direction: vec3.T{0, 0, 1}}, []float64{5, 5}},
		{ray.Ray{Origin: vec3.T{0, 2, -5}, Direction: vec3.T{0, 0, 1}}, nil},
		{ray.Ray{Origin: vec3.T{0, 0, 0}, Direction: vec3.T{0, 0, 1}}, []float64{-1, 1}},
		{ray.Ray{Origin: vec3.T{0, 0, 5}, Direction: vec3.T{0, 0, 1}}, []float64{-6, -4}},
		{ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 2}}, []float64{2, 3}},
	}

	s := NewSphere()
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			xs := s.LocalIntersect(tc.r)
			if diff := cmp.Diff(ts(xs), tc.want); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
			for _, x := range xs {
				if x.Object != Shape(s) {
					t.Errorf("Intersection object = %v, want the sphere", x.Object)
				}
			}
		})
	}
}

func TestSphereRootsOrderedAndOnSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	s := NewSphere()

	hits := 0
	for i := 0; i < 1000; i++ {
		r := ray.Ray{
			Origin:    vec3.T{rng.Float64()*8 - 4, rng.Float64()*8 - 4, rng.Float64()*8 - 4},
			Direction: vec3.T{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1},
		}
		xs := s.LocalIntersect(r)
		if len(xs) == 0 {
			continue
		}
		hits++
		if len(xs) != 2 {
			t.Fatalf("Got %d intersections, want 2", len(xs))
		}
		if xs[0].T > xs[1].T {
			t.Errorf("Roots out of order: %v > %v", xs[0].T, xs[1].T)
		}
		for _, x := range xs {
			if d := r.Position(x.T).Norm(); math.Abs(d-1) > 1e-6 {
				t.Errorf("Intersection at distance %v from center, want 1", d)
			}
		}
	}
	if hits == 0 {
		t.Errorf("No random ray hit the sphere")
	}
}

func TestSphereTransformedIntersect(t *testing.T) {
	r := ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 1}}

	scaled := NewSphere(WithTransform(affinetransform.Scale(2)))
	if diff := cmp.Diff(ts(Intersect(scaled, r)), []float64{3, 7}, approx); diff != "" {
		t.Errorf("Bad scaled sphere intersections; diff (-got +want)\n%s", diff)
	}

	moved := NewSphere(WithTransform(affinetransform.Translate(vec3.T{5, 0, 0})))
	if xs := Intersect(moved, r); len(xs) != 0 {
		t.Errorf("Translated sphere intersections = %v, want none", ts(xs))
	}
}

func TestSphereNormal(t *testing.T) {
	k := math.Sqrt(3) / 3
	s := NewSphere()
	for _, p := range []vec3.T{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {k, k, k}} {
		if diff := cmp.Diff(NormalAt(s, p), p, approx); diff != "" {
			t.Errorf("Bad normal at %v; diff (-got +want)\n%s", p, diff)
		}
	}
}

func TestPlane(t *testing.T) {
	p := NewPlane()

	testCases := []struct {
		r    ray.Ray
		want []float64
	}{
		{ray.Ray{Origin: vec3.T{0, 10, 0}, Direction: vec3.T{0, 0, 1}}, nil},
		{ray.Ray{Origin: vec3.T{0, 0, 0}, Direction: vec3.T{0, 0, 1}}, nil},
		{ray.Ray{Origin: vec3.T{0, 1, 0}, Direction: vec3.T{0, -1, 0}}, []float64{1}},
		{ray.Ray{Origin: vec3.T{0, -1, 0}, Direction: vec3.T{0, 1, 0}}, []float64{1}},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			if diff := cmp.Diff(ts(p.LocalIntersect(tc.r)), tc.want); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}

	for _, pt := range []vec3.T{{0, 0, 0}, {10, 0, -10}, {-5, 0, 150}} {
		if diff := cmp.Diff(p.LocalNormalAt(pt), vec3.T{0, 1, 0}); diff != "" {
			t.Errorf("Bad plane normal at %v; diff (-got +want)\n%s", pt, diff)
		}
	}
}

func TestCubeIntersect(t *testing.T) {
	testCases := []struct {
		desc              string
		origin, direction vec3.T
		wantT1, wantT2    float64
	}{
		{"+x", vec3.T{5, 0.5, 0}, vec3.T{-1, 0, 0}, 4, 6},
		{"-x", vec3.T{-5, 0.5, 0}, vec3.T{1, 0, 0}, 4, 6},
		{"+y", vec3.T{0.5, 5, 0}, vec3.T{0, -1, 0}, 4, 6},
		{"-y", vec3.T{0.5, -5, 0}, vec3.T{0, 1, 0}, 4, 6},
		{"+z", vec3.T{0.5, 0, 5}, vec3.T{0, 0, -1}, 4, 6},
		{"-z", vec3.T{0.5, 0, -5}, vec3.T{0, 0, 1}, 4, 6},
		{"inside", vec3.T{0, 0.5, 0}, vec3.T{0, 0, 1}, -1, 1},
	}

	c := NewCube()
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := ts(c.LocalIntersect(ray.Ray{Origin: tc.origin, Direction: tc.direction}))
			if diff := cmp.Diff(got, []float64{tc.wantT1, tc.wantT2}); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestCubeMisses(t *testing.T) {
	testCases := []ray.Ray{
		{Origin: vec3.T{-2, 0, 0}, Direction: vec3.T{0.2673, 0.5345, 0.8018}},
		{Origin: vec3.T{0, -2, 0}, Direction: vec3.T{0.8018, 0.2673, 0.5345}},
		{Origin: vec3.T{0, 0, -2}, Direction: vec3.T{0.5345, 0.8018, 0.2673}},
		{Origin: vec3.T{2, 0, 2}, Direction: vec3.T{0, 0, -1}},
		{Origin: vec3.T{0, 2, 2}, Direction: vec3.T{0, -1, 0}},
		{Origin: vec3.T{2, 2, 0}, Direction: vec3.T{-1, 0, 0}},
	}

	c := NewCube()
	for i, r := range testCases {
		if xs := c.LocalIntersect(r); len(xs) != 0 {
			t.Errorf("Case %d: got intersections %v, want none", i, ts(xs))
		}
	}
}

func TestCubeNormal(t *testing.T) {
	testCases := []struct {
		p, want vec3.T
	}{
		{vec3.T{1, 0.5, -0.8}, vec3.T{1, 0, 0}},
		{vec3.T{-1, -0.2, 0.9}, vec3.T{-1, 0, 0}},
		{vec3.T{-0.4, 1, -0.1}, vec3.T{0, 1, 0}},
		{vec3.T{0.3, -1, -0.7}, vec3.T{0, -1, 0}},
		{vec3.T{-0.6, 0.3, 1}, vec3.T{0, 0, 1}},
		{vec3.T{0.4, 0.4, -1}, vec3.T{0, 0, -1}},
		{vec3.T{1, 1, 1}, vec3.T{1, 0, 0}},
		{vec3.T{-1, -1, -1}, vec3.T{-1, 0, 0}},
		{vec3.T{0.5, -1, 1}, vec3.T{0, -1, 0}},
	}

	c := NewCube()
	for _, tc := range testCases {
		if diff := cmp.Diff(c.LocalNormalAt(tc.p), tc.want); diff != "" {
			t.Errorf("Bad normal at %v; diff (-got +want)\n%s", tc.p, diff)
		}
	}
}

func TestTriangle(t *testing.T) {
	tri := NewTriangle(vec3.T{0, 1, 0}, vec3.T{-1, 0, 0}, vec3.T{1, 0, 0})

	if diff := cmp.Diff(tri.e1, vec3.T{-1, -1, 0}); diff != "" {
		t.Errorf("Bad e1; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(tri.e2, vec3.T{1, -1, 0}); diff != "" {
		t.Errorf("Bad e2; diff (-got +want)\n%s", diff)
	}
	for _, p := range []vec3.T{{0, 0.5, 0}, {-0.5, 0.75, 0}, {0.5, 0.25, 0}} {
		if diff := cmp.Diff(tri.LocalNormalAt(p), vec3.T{0, 0, -1}); diff != "" {
			t.Errorf("Bad normal at %v; diff (-got +want)\n%s", p, diff)
		}
	}

	testCases := []struct {
		desc string
		r    ray.Ray
		want []float64
	}{
		{"parallel", ray.Ray{Origin: vec3.T{0, -1, -2}, Direction: vec3.T{0, 1, 0}}, nil},
		{"beyond p1-p3 edge", ray.Ray{Origin: vec3.T{1, 1, -2}, Direction: vec3.T{0, 0, 1}}, nil},
		{"beyond p1-p2 edge", ray.Ray{Origin: vec3.T{-1, 1, -2}, Direction: vec3.T{0, 0, 1}}, nil},
		{"beyond p2-p3 edge", ray.Ray{Origin: vec3.T{0, -1, -2}, Direction: vec3.T{0, 0, 1}}, nil},
		{"strikes", ray.Ray{Origin: vec3.T{0, 0.5, -2}, Direction: vec3.T{0, 0, 1}}, []float64{2}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(ts(tri.LocalIntersect(tc.r)), tc.want); diff != "" {
				t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
			}
		})
	}

	want := [2]vec3.T{{-1, 0, 0}, {1, 1, 0}}
	b := tri.Bounds()
	if diff := cmp.Diff([2]vec3.T{b.Min(), b.Max()}, want); diff != "" {
		t.Errorf("Bad triangle bounds; diff (-got +want)\n%s", diff)
	}
}
