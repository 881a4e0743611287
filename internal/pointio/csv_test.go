package pointio

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "x,y\n0,0\n1.5, -2\n# comment\n1e3,4\n"

	points, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []geom.Point{{0, 0}, {1.5, -2}, {1000, 4}}, points)
}

func TestReadCSV_NoHeader(t *testing.T) {
	points, err := ReadCSV(strings.NewReader("3,4\n5,6\n"))
	require.NoError(t, err)
	assert.Equal(t, []geom.Point{{3, 4}, {5, 6}}, points)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bad x", in: "x,y\nfoo,1\n", want: "line 2: invalid x"},
		{name: "bad y", in: "1,bar\n", want: "line 1: invalid y"},
		{name: "wrong field count", in: "1,2,3\n", want: "read csv"},
		{name: "NaN", in: "x,y\nNaN,1\n", want: "not finite"},
		{name: "Inf", in: "1,+Inf\n", want: "not finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []geom.Point{{0.25, -1}, {10, 10}}))
	assert.Equal(t, "x,y\n0.25,-1\n10,10\n", buf.String())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroids.csv")
	want := []geom.Point{{1.0 / 3, 1.0 / 3}, {10, 10}}

	require.NoError(t, WriteFile(path, want))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestWritePixelsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePixelsCSV(&buf, []image.Point{{0, 0}, {544, 12}}))
	assert.Equal(t, "x,y\n0,0\n544,12\n", buf.String())
}

func TestWritePixelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixels.csv")
	require.NoError(t, WritePixelsFile(path, []geom.Point{{-5.5, -5.5}, {4.9, 1.2}}, geom.Point{X: 550, Y: 550}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,y\n544,544\n554,551\n", string(data))

	err = WritePixelsFile(filepath.Join(t.TempDir(), "bad.csv"), []geom.Point{{-10, 0}}, geom.Point{X: 5, Y: 5})
	assert.Error(t, err)
}
