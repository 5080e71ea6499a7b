// Package material holds Phong surface parameters and point lights.
package material

import (
	"math"

	"stlshade/vmath/vec3"
)

type Material struct {
	Color     vec3.T  `json:"color"`
	Ambient   float64 `json:"ambient"`
	Diffuse   float64 `json:"diffuse"`
	Specular  float64 `json:"specular"`
	Shininess float64 `json:"shininess"`
}

func Default() Material {
	return Material{
		Color:     vec3.T{1, 1, 1},
		Ambient:   0.1,
		Diffuse:   0.9,
		Specular:  0.9,
		Shininess: 200,
	}
}

// WithColor returns m with its surface color replaced.
func (m Material) WithColor(c vec3.T) Material {
	m.Color = c
	return m
}

type PointLight struct {
	Position  vec3.T `json:"position"`
	Intensity vec3.T `json:"intensity"`
}

// Lighting evaluates the Phong model at point.  eyev and normalv must be unit
// vectors pointing away from the surface.  A shadowed point receives only the
// ambient term.
func Lighting(m Material, light PointLight, point, eyev, normalv vec3.T, inShadow bool) vec3.T {
	effectiveColor := vec3.MulVV(m.Color, light.Intensity)
	ambient := vec3.MulVS(effectiveColor, m.Ambient)
	if inShadow {
		return ambient
	}

	lightv := vec3.Normalize(vec3.SubVV(light.Position, point))
	lightDotNormal := vec3.IProd(lightv, normalv)
	if lightDotNormal < 0 {
		// Light is behind the surface.
		return ambient
	}

	diffuse := vec3.MulVS(effectiveColor, m.Diffuse*lightDotNormal)

	specular := vec3.T{}
	reflectv := vec3.Reflect(vec3.Negate(lightv), normalv)
	reflectDotEye := vec3.IProd(reflectv, eyev)
	if reflectDotEye > 0 {
		factor := math.Pow(reflectDotEye, m.Shininess)
		specular = vec3.MulVS(light.Intensity, m.Specular*factor)
	}

	return vec3.AddVV(vec3.AddVV(ambient, diffuse), specular)
}
