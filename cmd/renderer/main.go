// renderer photographs STL meshes from local disk or GCS and writes the
// images back to a local directory or GCS prefix.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"cloud.google.com/go/profiler"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"
	googleopt "google.golang.org/api/option"

	"stlshade/blobstore"
	"stlshade/render"
	"stlshade/rendercache"
	"stlshade/rendermetrics"
)

var (
	defaults = render.DefaultOptions()

	optionsFile = flag.String("options-file", "", "YAML or JSON render options `file`.  Flags set on the command line override it.")

	width       = flag.Int("width", defaults.WidthPixels, "Image width in pixels.")
	height      = flag.Int("height", defaults.HeightPixels, "Image height in pixels.")
	fov         = flag.Float64("fov", defaults.FOVRadians, "Field of view across the longer image side, in radians.")
	imageFormat = flag.String("format", defaults.ImageFormat, "Output format: png, jpeg, ppm, or raster.")
	workers     = flag.Int("workers", 0, "Render goroutines per image.  Zero means one per CPU.")

	from  = defaults.From
	to    = defaults.To
	up    = defaults.Up
	color = defaults.MaterialColor

	outputDir   = flag.String("output-dir", ".", "Local directory or gs://bucket/prefix for rendered images.")
	concurrency = flag.Int64("concurrency", 1, "How many meshes to render at once.")
	cacheDir    = flag.String("cache-dir", "", "Directory for the render cache.  Empty disables caching.")
	clearCache  = flag.Bool("clear-cache", false, "Drop all cached renders on startup.")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.0001, "What ratio of traces should be exported?")
	enableProfiling      = flag.Bool("enable-profiling", false, "Enable Cloud Profiler?")
)

func init() {
	flag.Var(vec3Value{&from}, "from", "Camera position as `x,y,z`.")
	flag.Var(vec3Value{&to}, "to", "Point the camera looks at, as `x,y,z`.")
	flag.Var(vec3Value{&up}, "up", "Camera up direction as `x,y,z`.")
	flag.Var(vec3Value{&color}, "color", "Mesh surface color as `r,g,b` in [0, 1].")
}

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	flag.VisitAll(func(f *flag.Flag) {
		glog.Infof("%s: %q", f.Name, f.Value.String())
	})

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatalf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatalf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(context.Background()); err != nil {
		pprof.StopCPUProfile()
		glog.Fatalf("Error: %v", err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Fatalf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Fatalf("Could not write memory profile: %v", err)
		}
	}

	glog.Flush()
}

func do(ctx context.Context) error {
	inputs := flag.Args()
	if len(inputs) == 0 {
		return fmt.Errorf("no mesh files given")
	}
	if *concurrency < 1 {
		return fmt.Errorf("-concurrency must be at least 1, got %d", *concurrency)
	}

	opts, err := loadOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "stlshade-renderer",
			ServiceVersion: "0.0.1",
		}); err != nil {
			return fmt.Errorf("while initializing profiler: %w", err)
		}
	}

	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			return fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		defer traceShutdown()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "stlshade",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while initializing Stackdriver metrics exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	metrics := rendermetrics.New()
	if err := metrics.RegisterMetrics(); err != nil {
		return err
	}

	var gcs *storage.Client
	if needsGCS(inputs, *outputDir) {
		gcs, err = storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return fmt.Errorf("while creating GCS client: %w", err)
		}
		defer gcs.Close()
	}

	b := &batch{
		store:       blobstore.New(gcs),
		metrics:     metrics,
		opts:        opts,
		outputDir:   *outputDir,
		concurrency: *concurrency,
	}

	if *cacheDir != "" {
		cache, err := rendercache.Open(*cacheDir, *clearCache)
		if err != nil {
			return err
		}
		defer cache.Close()
		b.cache = cache
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		b.meter = &progressMeter{}
	}

	return b.run(ctx, inputs)
}

// loadOptions starts from the options file, or the defaults, and applies every
// render flag given explicitly on the command line.
func loadOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	if *optionsFile != "" {
		var err error
		opts, err = render.LoadOptionsFile(*optionsFile)
		if err != nil {
			return render.Options{}, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			opts.WidthPixels = *width
		case "height":
			opts.HeightPixels = *height
		case "fov":
			opts.FOVRadians = *fov
		case "format":
			opts.ImageFormat = *imageFormat
		case "workers":
			opts.Workers = *workers
		case "from":
			opts.From = from
		case "to":
			opts.To = to
		case "up":
			opts.Up = up
		case "color":
			opts.MaterialColor = color
		}
	})

	return opts, nil
}

func needsGCS(inputs []string, outputDir string) bool {
	if blobstore.IsGCS(outputDir) {
		return true
	}
	for _, in := range inputs {
		if blobstore.IsGCS(in) {
			return true
		}
	}
	return false
}
