// Package rendermetrics records OpenCensus metrics about finished renders.
package rendermetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	formatKey = tag.MustNewKey("format")
	sourceKey = tag.MustNewKey("source")
)

// Sources of a finished render.
const (
	SourceRendered = "rendered"
	SourceCache    = "cache"
)

type Recorder struct {
	renderCount       *stats.Int64Measure
	renderCountView   *view.View
	pixelCount        *stats.Int64Measure
	pixelCountView    *view.View
	renderLatency     *stats.Float64Measure
	renderLatencyView *view.View
}

func New() *Recorder {
	r := &Recorder{}

	r.renderCount = stats.Int64("stlshade/renders", "", stats.UnitDimensionless)
	r.renderCountView = &view.View{
		Name:        "stlshade/renders",
		Description: "Counter of images produced",

		TagKeys: []tag.Key{formatKey, sourceKey},

		Measure:     r.renderCount,
		Aggregation: view.Count(),
	}

	r.pixelCount = stats.Int64("stlshade/pixels", "", stats.UnitDimensionless)
	r.pixelCountView = &view.View{
		Name:        "stlshade/pixels",
		Description: "Total pixels traced",

		Measure:     r.pixelCount,
		Aggregation: view.Sum(),
	}

	r.renderLatency = stats.Float64("stlshade/render_latency", "", stats.UnitMilliseconds)
	r.renderLatencyView = &view.View{
		Name:        "stlshade/render_latency",
		Description: "Time spent tracing and encoding one image",

		TagKeys: []tag.Key{formatKey},

		Measure:     r.renderLatency,
		Aggregation: view.Distribution(10, 50, 100, 500, 1000, 5000, 10000, 60000, 300000),
	}

	return r
}

func (r *Recorder) RegisterMetrics() error {
	if err := view.Register(r.renderCountView, r.pixelCountView, r.renderLatencyView); err != nil {
		return fmt.Errorf("while registering views: %w", err)
	}
	return nil
}

// RecordRender records a freshly traced image.
func (r *Recorder) RecordRender(ctx context.Context, format string, pixels int, elapsed time.Duration) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(
			tag.Insert(formatKey, format),
			tag.Insert(sourceKey, SourceRendered),
		),
		stats.WithMeasurements(
			r.renderCount.M(1),
			r.pixelCount.M(int64(pixels)),
			r.renderLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
}

// RecordCacheHit records an image served from the render cache.
func (r *Recorder) RecordCacheHit(ctx context.Context, format string) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(
			tag.Insert(formatKey, format),
			tag.Insert(sourceKey, SourceCache),
		),
		stats.WithMeasurements(r.renderCount.M(1)))
}
