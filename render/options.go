package render

import (
	"fmt"
	"math"
	"os"

	"sigs.k8s.io/yaml"

	"stlshade/canvas"
	"stlshade/vmath/vec3"
)

// Options describes how to photograph a mesh.  It is read from YAML or JSON.
type Options struct {
	WidthPixels  int     `json:"widthPixels"`
	HeightPixels int     `json:"heightPixels"`
	From         vec3.T  `json:"from"`
	To           vec3.T  `json:"to"`
	Up           vec3.T  `json:"up"`
	FOVRadians   float64 `json:"fovRadians"`

	MaterialColor vec3.T `json:"materialColor"`

	// ImageFormat is one of png, jpeg, ppm, or raster.
	ImageFormat string `json:"imageFormat"`

	LightPosition  vec3.T `json:"lightPosition"`
	LightIntensity vec3.T `json:"lightIntensity"`

	// Workers is the number of render goroutines.  Zero means one per CPU.
	Workers int `json:"workers,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		WidthPixels:    400,
		HeightPixels:   400,
		From:           vec3.T{0, -2.5, -10},
		To:             vec3.T{0, -5, 0},
		Up:             vec3.T{0, 1, 0},
		FOVRadians:     math.Pi / 2,
		MaterialColor:  vec3.T{0.0196, 0.65, 0.874},
		ImageFormat:    string(canvas.FormatJPEG),
		LightPosition:  vec3.T{-10, -10, -5},
		LightIntensity: vec3.T{1, 1, 1},
	}
}

// LoadOptions parses YAML or JSON on top of DefaultOptions.  Unknown keys are
// an error.
func LoadOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return Options{}, fmt.Errorf("while parsing options: %w", err)
	}
	return opts, nil
}

func LoadOptionsFile(name string) (Options, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return Options{}, fmt.Errorf("while reading options file: %w", err)
	}
	return LoadOptions(data)
}

// Marshal returns the canonical YAML form of o.
func (o Options) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("while marshaling options: %w", err)
	}
	return data, nil
}

// Validate rejects options that cannot produce an image.
func (o Options) Validate() error {
	if o.WidthPixels <= 0 || o.HeightPixels <= 0 {
		return fmt.Errorf("image size %dx%d must be positive", o.WidthPixels, o.HeightPixels)
	}
	if !(o.FOVRadians > 0 && o.FOVRadians < math.Pi) {
		return fmt.Errorf("field of view %v must be in (0, pi)", o.FOVRadians)
	}
	forward := vec3.SubVV(o.To, o.From)
	if forward.Norm() == 0 {
		return fmt.Errorf("camera position %v equals its target", o.From)
	}
	if vec3.CProd(forward, o.Up).Norm() == 0 {
		return fmt.Errorf("up vector %v is parallel to the view direction", o.Up)
	}
	if o.Workers < 0 {
		return fmt.Errorf("worker count %d is negative", o.Workers)
	}
	if _, err := canvas.ParseFormat(o.ImageFormat); err != nil {
		return err
	}
	return nil
}
