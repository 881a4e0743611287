// Package pointio reads and writes point sequences as CSV.
//
// The format is a header row "x,y" followed by one point per row. Order
// is significant and preserved in both directions.
package pointio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/pointreduce/internal/geom"
)

var header = []string{"x", "y"}

// ReadCSV parses points from r. A header row is optional; when present it
// must be exactly "x,y" (case-insensitive). Non-finite coordinates are
// rejected.
func ReadCSV(r io.Reader) ([]geom.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []geom.Point
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first && isHeader(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid x %q: %w", line, rec[0], err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid y %q: %w", line, rec[1], err)
		}
		p := geom.Point{X: x, Y: y}
		if !p.IsFinite() {
			return nil, fmt.Errorf("line %d: point %v is not finite", line, p)
		}
		points = append(points, p)
	}
	return points, nil
}

// WriteCSV writes points to w with an "x,y" header.
func WriteCSV(w io.Writer, points []geom.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range points {
		rec := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile reads points from a CSV file.
func ReadFile(path string) ([]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open points file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteFile writes points to a CSV file, replacing any existing file.
func WriteFile(path string, points []geom.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create points file: %w", err)
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePixelsCSV writes integer pixel coordinates to w with an "x,y"
// header, one row per point.
func WritePixelsCSV(w io.Writer, pixels []image.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range pixels {
		if err := cw.Write([]string{strconv.Itoa(p.X), strconv.Itoa(p.Y)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePixelsFile converts points to pixel coordinates with
// geom.ToPixels and writes them to a CSV file.
func WritePixelsFile(path string, points []geom.Point, offset geom.Point) error {
	pixels, err := geom.ToPixels(points, offset)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pixels file: %w", err)
	}
	if err := WritePixelsCSV(f, pixels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isHeader(rec []string) bool {
	return strings.EqualFold(strings.TrimSpace(rec[0]), header[0]) &&
		strings.EqualFold(strings.TrimSpace(rec[1]), header[1])
}
