// Package world holds a renderable scene: shapes lit by a single point light.
package world

import (
	"stlshade/contact"
	"stlshade/geometry"
	"stlshade/material"
	"stlshade/ray"
	"stlshade/vmath/vec3"
)

// World is immutable once built and safe for concurrent use.
type World struct {
	Objects []geometry.Shape
	Light   material.PointLight
}

// DefaultLight is a white light above and behind the default camera.
func DefaultLight() material.PointLight {
	return material.PointLight{
		Position:  vec3.T{-10, -10, -5},
		Intensity: vec3.T{1, 1, 1},
	}
}

func New(light material.PointLight, objects ...geometry.Shape) *World {
	return &World{
		Objects: objects,
		Light:   light,
	}
}

// Intersect returns every intersection of r with the world, sorted by T.
func (w *World) Intersect(r ray.Ray) []geometry.Intersection {
	var xs []geometry.Intersection
	for _, o := range w.Objects {
		xs = append(xs, geometry.Intersect(o, r)...)
	}
	contact.Sort(xs)
	return xs
}

// IsShadowed reports whether anything lies between p and the light.
func (w *World) IsShadowed(p vec3.T) bool {
	v := vec3.SubVV(w.Light.Position, p)
	distance := v.Norm()
	r := ray.Ray{Origin: p, Direction: vec3.Normalize(v)}

	for _, o := range w.Objects {
		for _, x := range geometry.Intersect(o, r) {
			if x.T >= 0 && x.T < distance {
				return true
			}
		}
	}
	return false
}

func (w *World) ShadeHit(c contact.Computations) vec3.T {
	return material.Lighting(
		c.Object.Material(),
		w.Light,
		c.OverPoint,
		c.EyeV,
		c.NormalV,
		w.IsShadowed(c.OverPoint),
	)
}

// ColorAt returns the color seen along r.  Rays that hit nothing see black.
func (w *World) ColorAt(r ray.Ray) vec3.T {
	x, ok := contact.Hit(w.Intersect(r))
	if !ok {
		return vec3.T{}
	}
	return w.ShadeHit(contact.Prepare(x, r))
}
