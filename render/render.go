// Package render turns a triangle mesh into an encoded image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stlshade/affinetransform"
	"stlshade/bvh"
	"stlshade/camera"
	"stlshade/canvas"
	"stlshade/geometry"
	"stlshade/material"
	"stlshade/vmath/vec3"
	"stlshade/world"
)

var tracer = otel.Tracer("stlshade/render")

// Mesh is an indexed triangle mesh.
type Mesh interface {
	Vertices() []vec3.T
	Triangles() [][3]int
}

// BuildWorld places the triangles of mesh in a bounding volume hierarchy of
// groups, lit by the light described in opts.
func BuildWorld(mesh Mesh, opts Options) (*world.World, error) {
	verts := mesh.Vertices()
	mtl := material.Default().WithColor(opts.MaterialColor)

	tris := make([]geometry.Shape, 0, len(mesh.Triangles()))
	for i, t := range mesh.Triangles() {
		for _, v := range t {
			if v < 0 || v >= len(verts) {
				return nil, fmt.Errorf("triangle %d references vertex %d of %d", i, v, len(verts))
			}
		}
		tris = append(tris, geometry.NewTriangle(verts[t[0]], verts[t[1]], verts[t[2]], geometry.WithMaterial(mtl)))
	}

	light := material.PointLight{
		Position:  opts.LightPosition,
		Intensity: opts.LightIntensity,
	}
	return world.New(light, bvh.Build(tris)), nil
}

// BuildCamera returns the camera described by opts.
func BuildCamera(opts Options) *camera.Camera {
	return camera.New(
		opts.WidthPixels,
		opts.HeightPixels,
		opts.FOVRadians,
		camera.WithTransform(affinetransform.ViewTransform(opts.From, opts.To, opts.Up)),
	)
}

// Render photographs mesh and encodes the result as opts.ImageFormat.  Options
// are validated before any tracing, so a bad format costs nothing.
func Render(ctx context.Context, mesh Mesh, opts Options, renderOpts ...camera.RenderOption) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Render")
	defer span.End()
	span.SetAttributes(
		attribute.Int("width", opts.WidthPixels),
		attribute.Int("height", opts.HeightPixels),
		attribute.Int("triangles", len(mesh.Triangles())),
		attribute.String("format", opts.ImageFormat),
	)

	result, err := doRender(ctx, mesh, opts, renderOpts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func doRender(ctx context.Context, mesh Mesh, opts Options, renderOpts []camera.RenderOption) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("while validating options: %w", err)
	}
	format, err := canvas.ParseFormat(opts.ImageFormat)
	if err != nil {
		return nil, err
	}

	w, err := BuildWorld(mesh, opts)
	if err != nil {
		return nil, fmt.Errorf("while building world: %w", err)
	}

	if opts.Workers > 0 {
		renderOpts = append([]camera.RenderOption{camera.WithWorkers(opts.Workers)}, renderOpts...)
	}

	start := time.Now()
	img := BuildCamera(opts).Render(ctx, w, renderOpts...)
	glog.V(1).Infof("Traced %dx%d image of %d triangles in %v", opts.WidthPixels, opts.HeightPixels, len(mesh.Triangles()), time.Since(start))

	buf := &bytes.Buffer{}
	if err := img.Encode(buf, format); err != nil {
		return nil, fmt.Errorf("while encoding image: %w", err)
	}
	glog.V(2).Infof("Encoded %d bytes of %s", buf.Len(), format)

	return buf.Bytes(), nil
}
