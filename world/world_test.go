package world

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"stlshade/affinetransform"
	"stlshade/contact"
	"stlshade/geometry"
	"stlshade/material"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

// testWorld is two concentric spheres lit from above and to the left.
func testWorld() (*World, *geometry.Sphere, *geometry.Sphere) {
	m := material.Default()
	m.Color = vec3.T{0.8, 1.0, 0.6}
	m.Diffuse = 0.7
	m.Specular = 0.2
	outer := geometry.NewSphere(geometry.WithMaterial(m))
	inner := geometry.NewSphere(geometry.WithTransform(affinetransform.Scale(0.5)))

	light := material.PointLight{Position: vec3.T{-10, 10, -10}, Intensity: vec3.T{1, 1, 1}}
	return New(light, outer, inner), outer, inner
}

func TestIntersectSorted(t *testing.T) {
	w, _, _ := testWorld()
	xs := w.Intersect(ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 1}})

	var got []float64
	for _, x := range xs {
		got = append(got, x.T)
	}
	if diff := cmp.Diff(got, []float64{4, 4.5, 5.5, 6}, approx); diff != "" {
		t.Errorf("Bad intersections; diff (-got +want)\n%s", diff)
	}
}

func TestShadeHit(t *testing.T) {
	w, outer, _ := testWorld()
	r := ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 1}}
	c := contact.Prepare(geometry.Intersection{T: 4, Object: outer}, r)
	if diff := cmp.Diff(w.ShadeHit(c), vec3.T{0.38066, 0.47583, 0.2855}, approx); diff != "" {
		t.Errorf("Bad shade; diff (-got +want)\n%s", diff)
	}
}

func TestShadeHitInShadow(t *testing.T) {
	s1 := geometry.NewSphere()
	s2 := geometry.NewSphere(geometry.WithTransform(affinetransform.Translate(vec3.T{0, 0, 10})))
	w := New(material.PointLight{Position: vec3.T{0, 0, -10}, Intensity: vec3.T{1, 1, 1}}, s1, s2)

	r := ray.Ray{Origin: vec3.T{0, 0, 5}, Direction: vec3.T{0, 0, 1}}
	c := contact.Prepare(geometry.Intersection{T: 4, Object: s2}, r)
	if diff := cmp.Diff(w.ShadeHit(c), vec3.T{0.1, 0.1, 0.1}, approx); diff != "" {
		t.Errorf("Bad shade; diff (-got +want)\n%s", diff)
	}
}

func TestIsShadowed(t *testing.T) {
	w, _, _ := testWorld()
	testCases := []struct {
		p    vec3.T
		want bool
	}{
		{vec3.T{0, 10, 0}, false},
		{vec3.T{10, -10, 10}, true},
		{vec3.T{-20, 20, -20}, false},
		{vec3.T{-2, 2, -2}, false},
	}
	for _, tc := range testCases {
		if got := w.IsShadowed(tc.p); got != tc.want {
			t.Errorf("IsShadowed(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestColorAt(t *testing.T) {
	w, _, _ := testWorld()

	miss := w.ColorAt(ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 1, 0}})
	if diff := cmp.Diff(miss, vec3.T{0, 0, 0}); diff != "" {
		t.Errorf("Bad color on miss; diff (-got +want)\n%s", diff)
	}

	hit := w.ColorAt(ray.Ray{Origin: vec3.T{0, 0, -5}, Direction: vec3.T{0, 0, 1}})
	if diff := cmp.Diff(hit, vec3.T{0.38066, 0.47583, 0.2855}, approx); diff != "" {
		t.Errorf("Bad color on hit; diff (-got +want)\n%s", diff)
	}
}

func TestPlaneWorld(t *testing.T) {
	w := New(
		material.PointLight{Position: vec3.T{-10, 10, -10}, Intensity: vec3.T{1, 1, 1}},
		geometry.NewPlane(),
	)

	down := ray.Ray{Origin: vec3.T{0, 1, -5}, Direction: vec3.Normalize(vec3.T{0, -1, 1})}
	if c := w.ColorAt(down); c == (vec3.T{}) {
		t.Errorf("Ray onto lit plane came back black")
	}

	parallel := ray.Ray{Origin: vec3.T{0, 1, -5}, Direction: vec3.T{0, 0, 1}}
	if c := w.ColorAt(parallel); c != (vec3.T{}) {
		t.Errorf("Ray parallel to plane = %v, want black", c)
	}
}

func TestShadowedTopOfSphereIsLit(t *testing.T) {
	s := geometry.NewSphere()
	w := New(material.PointLight{Position: vec3.T{0, 10, 0}, Intensity: vec3.T{1, 1, 1}}, s)

	r := ray.Ray{Origin: vec3.T{0, 5, 0}, Direction: vec3.T{0, -1, 0}}
	got := w.ColorAt(r)
	for i := range got {
		if !(got[i] > 0.1) || math.IsNaN(got[i]) {
			t.Fatalf("Top of sphere shaded %v, want brighter than ambient", got)
		}
	}
}
