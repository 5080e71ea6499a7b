// Package camera maps image pixels to world-space rays and renders worlds.
package camera

import (
	"context"
	"math"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stlshade/affinetransform"
	"stlshade/canvas"
	"stlshade/ray"
	"stlshade/vmath/vec3"
	"stlshade/world"
)

var tracer = otel.Tracer("stlshade/camera")

// Camera is a pinhole camera looking down its own -Z axis, one unit from its
// canvas.  Transform maps world space to camera space.
type Camera struct {
	HSize, VSize int
	FieldOfView  float64
	Transform    affinetransform.AffineTransform

	inverse                          affinetransform.AffineTransform
	halfWidth, halfHeight, pixelSize float64
}

type Option func(*Camera)

// WithTransform sets the world-to-camera transform, usually built by
// affinetransform.ViewTransform.
func WithTransform(t affinetransform.AffineTransform) Option {
	return func(c *Camera) {
		c.Transform = t
	}
}

// New returns a camera producing hsize x vsize images with the given
// horizontal or vertical field of view, whichever spans the longer side.
func New(hsize, vsize int, fieldOfView float64, opts ...Option) *Camera {
	c := &Camera{
		HSize:       hsize,
		VSize:       vsize,
		FieldOfView: fieldOfView,
		Transform:   affinetransform.Identity(),
	}
	for _, opt := range opts {
		opt(c)
	}

	halfView := math.Tan(fieldOfView / 2)
	aspect := float64(hsize) / float64(vsize)
	if aspect >= 1 {
		c.halfWidth = halfView
		c.halfHeight = halfView / aspect
	} else {
		c.halfWidth = halfView * aspect
		c.halfHeight = halfView
	}
	c.pixelSize = c.halfWidth * 2 / float64(hsize)
	c.inverse = c.Transform.Invert()
	return c
}

func (c *Camera) PixelSize() float64 {
	return c.pixelSize
}

// RayForPixel returns the ray from the camera through the center of pixel
// (px, py).
func (c *Camera) RayForPixel(px, py int) ray.Ray {
	xOffset := (float64(px) + 0.5) * c.pixelSize
	yOffset := (float64(py) + 0.5) * c.pixelSize

	worldX := c.halfWidth - xOffset
	worldY := c.halfHeight - yOffset

	pixel := affinetransform.TransformPoint(c.inverse, vec3.T{worldX, worldY, -1})
	origin := affinetransform.TransformPoint(c.inverse, vec3.T{0, 0, 0})
	return ray.Ray{
		Origin:    origin,
		Direction: vec3.Normalize(vec3.SubVV(pixel, origin)),
	}
}

// ProgressFunction receives the number of rows finished so far.  Calls are
// serialized.
type ProgressFunction func(rowsDone, rowsTotal int)

type renderOptions struct {
	workers  int
	progress ProgressFunction
}

type RenderOption func(*renderOptions)

// WithWorkers sets the number of goroutines sharing the image.  One worker
// renders sequentially on the calling goroutine.
func WithWorkers(n int) RenderOption {
	return func(o *renderOptions) {
		o.workers = n
	}
}

func WithProgress(f ProgressFunction) RenderOption {
	return func(o *renderOptions) {
		o.progress = f
	}
}

// Render traces one ray per pixel through w.  The result does not depend on
// the number of workers.
func (c *Camera) Render(ctx context.Context, w *world.World, opts ...RenderOption) *canvas.Canvas {
	o := renderOptions{
		workers:  runtime.NumCPU(),
		progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers > c.VSize {
		o.workers = c.VSize
	}
	if o.workers < 1 {
		o.workers = 1
	}

	_, span := tracer.Start(ctx, "Camera.Render")
	defer span.End()
	span.SetAttributes(
		attribute.Int("hsize", c.HSize),
		attribute.Int("vsize", c.VSize),
		attribute.Int("workers", o.workers),
	)

	img := canvas.New(c.HSize, c.VSize)
	rowsDone := 0

	// mu guards rowsDone, progress, and img.
	mu := sync.Mutex{}
	rowProgress := func() {
		mu.Lock()
		defer mu.Unlock()
		rowsDone++
		o.progress(rowsDone, c.VSize)
	}

	if o.workers == 1 {
		c.renderRows(w, img, 0, rowProgress)
		return img
	}

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		// Spread the remainder over the first workers.
		rowSrc := i * c.VSize / o.workers
		rowLim := (i + 1) * c.VSize / o.workers

		mu.Lock()
		chunk := img.Cut(rowSrc, rowLim)
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()

			c.renderRows(w, chunk, rowSrc, rowProgress)

			mu.Lock()
			defer mu.Unlock()
			img.Paste(chunk, rowSrc)
		}()
	}
	wg.Wait()

	return img
}

// renderRows fills dst, whose first row is image row rowSrc.
func (c *Camera) renderRows(w *world.World, dst *canvas.Canvas, rowSrc int, rowDone func()) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			dst.WritePixel(x, y, w.ColorAt(c.RayForPixel(x, rowSrc+y)))
		}
		rowDone()
	}
}
