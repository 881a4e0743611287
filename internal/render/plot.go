// Package render draws the before/after views of a reduction.
//
// Two sinks are provided: static images through gonum/plot and an
// interactive HTML page through go-echarts. Neither one feeds anything
// back into the reducer.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/pointreduce/internal/geom"
)

// PlotOptions controls image output.
type PlotOptions struct {
	Title  string
	Width  vg.Length // Total width; zero means 14in
	Height vg.Length // Total height; zero means 7in
}

var (
	beforeColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	afterColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func (o PlotOptions) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = 14 * vg.Inch
	}
	if h == 0 {
		h = 7 * vg.Inch
	}
	return w, h
}

func (o PlotOptions) panelTitle(s string) string {
	if o.Title == "" {
		return s
	}
	return o.Title + ": " + s
}

// SavePNG writes a two-panel PNG: the input cloud on the left and the
// centroids on the right, on identical axes so densities compare.
func SavePNG(path string, before, after []geom.Point, o PlotOptions) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return fmt.Errorf("side-by-side output must be .png, got %q", ext)
	}

	lo, hi := commonBounds(before, after)
	pBefore, err := scatterPlot(o.panelTitle(fmt.Sprintf("before (%d points)", len(before))), before, beforeColor, 1.5, lo, hi)
	if err != nil {
		return err
	}
	pAfter, err := scatterPlot(o.panelTitle(fmt.Sprintf("after (%d centroids)", len(after))), after, afterColor, 2.5, lo, hi)
	if err != nil {
		return err
	}

	w, h := o.size()
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{{pBefore, pAfter}}, tiles, dc)
	pBefore.Draw(canvases[0][0])
	pAfter.Draw(canvases[0][1])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write png: %w", err)
	}
	return f.Close()
}

// SavePlot writes a single scatter panel of points. The format follows
// the file extension (png, svg, pdf, ...).
func SavePlot(path, title string, points []geom.Point, o PlotOptions) error {
	lo, hi := commonBounds(points, nil)
	p, err := scatterPlot(title, points, beforeColor, 1.5, lo, hi)
	if err != nil {
		return err
	}
	w, h := o.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func scatterPlot(title string, points []geom.Point, c color.Color, radius float64, lo, hi geom.Point) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.X.Min, p.X.Max = lo.X, hi.X
	p.Y.Min, p.Y.Max = lo.Y, hi.Y
	p.Add(plotter.NewGrid())

	if len(points) == 0 {
		return p, nil
	}

	s, err := plotter.NewScatter(toXYs(points))
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(radius)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	return p, nil
}

func toXYs(points []geom.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// commonBounds returns a square window around both point sets, padded by
// 5% so edge points stay visible.
func commonBounds(a, b []geom.Point) (lo, hi geom.Point) {
	all := make([]geom.Point, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	if len(all) == 0 {
		return geom.Point{X: -1, Y: -1}, geom.Point{X: 1, Y: 1}
	}

	lo, hi = geom.Bounds(all)
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	half := max(hi.X-lo.X, hi.Y-lo.Y) / 2 * 1.05
	if half == 0 {
		half = 1
	}
	return geom.Point{X: cx - half, Y: cy - half}, geom.Point{X: cx + half, Y: cy + half}
}
