// Command pointreduce generates (or reads) a 2D point cloud, collapses it
// into threshold-sized groups and writes the centroids to any of the
// configured sinks: CSV, PNG, HTML, the run store, or a live HTTP view
// that also serves the stored runs as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/pointreduce/internal/api"
	"github.com/banshee-data/pointreduce/internal/config"
	"github.com/banshee-data/pointreduce/internal/generate"
	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/banshee-data/pointreduce/internal/monitoring"
	"github.com/banshee-data/pointreduce/internal/pointio"
	"github.com/banshee-data/pointreduce/internal/reduce"
	"github.com/banshee-data/pointreduce/internal/render"
	"github.com/banshee-data/pointreduce/internal/store"
	"github.com/banshee-data/pointreduce/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to a JSON config file (defaults are used for missing fields)")
	pointCount  = flag.Int("n", config.DefaultPointCount, "Number of points to generate")
	threshold   = flag.Float64("t", config.DefaultThreshold, "Grouping distance")
	diskRadius  = flag.Float64("radius", config.DefaultDiskRadius, "Radius of the generated disk")
	seed        = flag.Uint64("seed", config.DefaultSeed, "Generator and random-anchor seed")
	anchor      = flag.String("anchor", config.DefaultAnchorPolicy, "Anchor policy: first, last, random or farthest")
	inFile      = flag.String("in", "", "Read points from this CSV instead of generating them")
	outFile     = flag.String("out", "", "Write centroids to this CSV file")
	pngFile     = flag.String("png", "", "Write a before/after scatter PNG")
	plotFile    = flag.String("plot", "", "Write a centroid-only scatter; format follows the extension (.png, .svg, .pdf)")
	pixelsFile  = flag.String("pixels", "", "Write centroids as integer pixel coordinates of the input's bounding image")
	htmlFile    = flag.String("html", "", "Write a before/after echarts HTML page")
	dbFile      = flag.String("db", "", "Record the run in this SQLite database")
	listen      = flag.String("listen", "", "Serve the before/after view on this address, e.g. :8080")
	verbose     = flag.Bool("verbose", false, "Log every reduction round")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// sinks names the optional outputs of a run. Empty fields are skipped.
type sinks struct {
	In     string
	Out    string
	PNG    string
	Plot   string
	Pixels string
	HTML   string
	DB     string
	Listen string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := sinks{
		In:     *inFile,
		Out:    *outFile,
		PNG:    *pngFile,
		Plot:   *plotFile,
		Pixels: *pixelsFile,
		HTML:   *htmlFile,
		DB:     *dbFile,
		Listen: *listen,
	}
	if err := run(ctx, cfg, s); err != nil {
		log.Fatalf("pointreduce: %v", err)
	}
}

// loadConfig layers defaults, the optional -config file and any flags the
// user set explicitly, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configFile != "" {
		fileCfg, err := config.LoadConfig(*configFile)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	overrides := config.EmptyConfig()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			overrides.PointCount = pointCount
		case "t":
			overrides.Threshold = threshold
		case "radius":
			overrides.DiskRadius = diskRadius
		case "seed":
			overrides.Seed = seed
		case "anchor":
			overrides.AnchorPolicy = anchor
		case "verbose":
			overrides.Verbose = verbose
		}
	})
	cfg.Merge(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, s sinks) error {
	monitoring.SetVerbose(cfg.GetVerbose())

	points, source, err := loadPoints(cfg, s.In)
	if err != nil {
		return err
	}

	reducer, err := cfg.Reducer()
	if err != nil {
		return err
	}
	res, err := reducer.Reduce(points)
	if err != nil {
		return fmt.Errorf("reduce: %w", err)
	}

	title := fmt.Sprintf("t=%g, anchor=%s", res.Threshold, res.Policy)

	if s.Out != "" {
		if err := pointio.WriteFile(s.Out, res.Centroids); err != nil {
			return err
		}
		monitoring.Logf("wrote %d centroids to %s", len(res.Centroids), s.Out)
	}

	if s.PNG != "" {
		if err := render.SavePNG(s.PNG, points, res.Centroids, render.PlotOptions{Title: title}); err != nil {
			return err
		}
		monitoring.Logf("wrote plot to %s", s.PNG)
	}

	if s.Plot != "" {
		if err := render.SavePlot(s.Plot, "centroids ("+title+")", res.Centroids, render.PlotOptions{}); err != nil {
			return err
		}
		monitoring.Logf("wrote centroid plot to %s", s.Plot)
	}

	if s.Pixels != "" {
		if err := pointio.WritePixelsFile(s.Pixels, res.Centroids, pixelOffset(points)); err != nil {
			return err
		}
		monitoring.Logf("wrote %d pixel coordinates to %s", len(res.Centroids), s.Pixels)
	}

	chartOpts := render.ChartOptions{Title: "Point cloud reduction (" + title + ")"}
	if s.HTML != "" {
		if err := writeHTML(s.HTML, points, res.Centroids, chartOpts); err != nil {
			return err
		}
		monitoring.Logf("wrote chart to %s", s.HTML)
	}

	var runs *store.RunStore
	if s.DB != "" {
		db, err := store.Open(s.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		runs = store.NewRunStore(db.DB)
		if err := saveRun(ctx, runs, cfg, res, source); err != nil {
			return err
		}
	}

	if s.Listen != "" {
		srv := api.NewServer(render.NewView(points, res.Centroids, chartOpts), runs, cfg)
		return serve(ctx, s.Listen, api.LoggingMiddleware(srv.ServeMux()))
	}
	return nil
}

// loadPoints reads the CSV at path or, when path is empty, generates the
// configured disk. The returned source string is recorded with the run.
func loadPoints(cfg *config.Config, path string) ([]geom.Point, string, error) {
	if path != "" {
		points, err := pointio.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		monitoring.Logf("read %d points from %s", len(points), path)
		return points, "csv:" + path, nil
	}

	radius := cfg.GetDiskRadius()
	points, err := generate.Disk(cfg.GetPointCount(), radius, cfg.GetSeed())
	if err != nil {
		return nil, "", err
	}
	minRho, maxRho := generate.RadiusStats(points, radius)
	monitoring.Logf("generated %d points, rho in [%.6f, %.6f]", len(points), minRho, maxRho)
	return points, "disk", nil
}

// pixelOffset is a whole-number shift that puts the input's lower-left
// corner in [1, 2) on both axes. The spare pixel keeps centroids whose
// mean rounds just below the minimum on the image.
func pixelOffset(points []geom.Point) geom.Point {
	lo, _ := geom.Bounds(points)
	return geom.Point{X: math.Ceil(-lo.X) + 1, Y: math.Ceil(-lo.Y) + 1}
}

func writeHTML(path string, before, after []geom.Point, o render.ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.WriteHTML(f, before, after, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveRun(ctx context.Context, runs *store.RunStore, cfg *config.Config, res *reduce.Result, source string) error {
	run := store.NewRunFromResult(res, source)
	if !strings.HasPrefix(source, "csv:") {
		radius := cfg.GetDiskRadius()
		seed := cfg.GetSeed()
		run.DiskRadius = &radius
		run.Seed = &seed
	}
	return runs.Insert(ctx, run)
}

// serve blocks until ctx is cancelled, then shuts the server down.
func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("serving view on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
