package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pointreduce/internal/geom"
)

// DefaultMaxPoints caps how many input points are sent to the browser.
const DefaultMaxPoints = 20000

// ChartOptions controls the HTML output.
type ChartOptions struct {
	Title      string
	Subtitle   string
	MaxPoints  int    // Stride-downsample the before series beyond this; zero means DefaultMaxPoints
	AssetsHost string // Override the echarts JS host; empty keeps the library default
}

// WriteHTML renders a square scatter page with the input cloud and the
// centroids as two series on shared axes.
func WriteHTML(w io.Writer, before, after []geom.Point, o ChartOptions) error {
	maxPoints := o.MaxPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	// Downsample by stride to stay within maxPoints
	stride := 1
	if len(before) > maxPoints {
		stride = int(math.Ceil(float64(len(before)) / float64(maxPoints)))
	}

	lo, hi := commonBounds(before, after)
	title := o.Title
	if title == "" {
		title = "Point cloud reduction"
	}
	subtitle := o.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d points, %d centroids, stride %d", len(before), len(after), stride)
	}

	initOpts := opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}
	if o.AssetsHost != "" {
		initOpts.AssetsHost = o.AssetsHost
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: lo.X, Max: hi.X, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: lo.Y, Max: hi.Y, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("before", scatterData(before, stride), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scatter.AddSeries("after", scatterData(after, 1), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 7}))

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(scatter)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func scatterData(points []geom.Point, stride int) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		p := points[i]
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}
	return data
}
