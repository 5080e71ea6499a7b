package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"stlshade/blobstore"
	"stlshade/camera"
	"stlshade/canvas"
	"stlshade/render"
	"stlshade/rendercache"
	"stlshade/rendermetrics"
	"stlshade/stl"
)

// batch renders a set of meshes with shared options.
type batch struct {
	store   *blobstore.Store
	cache   *rendercache.Cache // nil disables caching
	metrics *rendermetrics.Recorder
	meter   *progressMeter // nil disables progress output

	opts        render.Options
	outputDir   string
	concurrency int64
}

// outputFor names the image rendered from input.
func (b *batch) outputFor(input string, format canvas.Format) string {
	base := blobstore.Base(input)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return blobstore.Join(b.outputDir, base+"."+format.Extension())
}

func (b *batch) run(ctx context.Context, inputs []string) error {
	if b.meter != nil {
		b.meter.addTotal(len(inputs) * b.opts.HeightPixels)
		defer b.meter.finish()
	}

	// Use errgroup and semaphore to limit concurrency.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(b.concurrency)

	for _, input := range inputs {
		input := input

		// Acquire only fails once egCtx is done, either because an earlier
		// render failed or the caller gave up.  eg.Wait reports the cause.
		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}

		eg.Go(func() error {
			defer sem.Release(1)
			if err := b.renderOne(egCtx, input); err != nil {
				return fmt.Errorf("while rendering %s: %w", input, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	// The caller may have cancelled with every started render succeeding.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
	}

	return nil
}

func (b *batch) renderOne(ctx context.Context, input string) error {
	tracer := otel.Tracer("stlshade/cmd/renderer")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "batch.renderOne")
	defer span.End()
	span.SetAttributes(attribute.String("input", input))

	format, err := canvas.ParseFormat(b.opts.ImageFormat)
	if err != nil {
		return err
	}
	output := b.outputFor(input, format)

	meshBytes, err := b.store.Read(ctx, input)
	if err != nil {
		return fmt.Errorf("while reading mesh: %w", err)
	}

	var key []byte
	if b.cache != nil {
		key, err = b.cacheKey(meshBytes)
		if err != nil {
			return err
		}
		data, ok, err := b.cache.Get(key)
		if err != nil {
			return fmt.Errorf("while checking render cache: %w", err)
		}
		if ok {
			glog.V(1).Infof("Cache hit for %s", input)
			b.metrics.RecordCacheHit(ctx, string(format))
			if b.meter != nil {
				b.meter.advance(b.opts.HeightPixels)
			}
			return b.write(ctx, output, data, format)
		}
	}

	mesh, err := stl.Decode(meshBytes)
	if err != nil {
		return fmt.Errorf("while decoding mesh: %w", err)
	}
	glog.Infof("Rendering %s (%d triangles) to %s", input, len(mesh.Triangles()), output)

	var renderOpts []camera.RenderOption
	if b.meter != nil {
		renderOpts = append(renderOpts, camera.WithProgress(func(int, int) {
			b.meter.advance(1)
		}))
	}

	start := time.Now()
	data, err := render.Render(ctx, mesh, b.opts, renderOpts...)
	if err != nil {
		return err
	}
	b.metrics.RecordRender(ctx, string(format), b.opts.WidthPixels*b.opts.HeightPixels, time.Since(start))

	if b.cache != nil {
		if err := b.cache.Put(key, data); err != nil {
			return fmt.Errorf("while filling render cache: %w", err)
		}
	}

	return b.write(ctx, output, data, format)
}

// cacheKey digests the mesh and every option that affects the image.
func (b *batch) cacheKey(meshBytes []byte) ([]byte, error) {
	opts := b.opts
	opts.Workers = 0
	optBytes, err := opts.Marshal()
	if err != nil {
		return nil, err
	}
	return rendercache.Key(meshBytes, optBytes), nil
}

func (b *batch) write(ctx context.Context, output string, data []byte, format canvas.Format) error {
	if err := b.store.Write(ctx, output, data, format.ContentType()); err != nil {
		return fmt.Errorf("while writing image: %w", err)
	}
	return nil
}

// progressMeter prints a single overwriting progress line to stderr.
type progressMeter struct {
	mu         sync.Mutex
	cur, total int
}

func (p *progressMeter) addTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total += n
}

func (p *progressMeter) advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cur += n
	if p.total > 0 {
		fmt.Fprintf(os.Stderr, "\r%d/%d %d%%", p.cur, p.total, 100*p.cur/p.total)
	}
}

func (p *progressMeter) finish() {
	fmt.Fprintf(os.Stderr, "\n")
}
