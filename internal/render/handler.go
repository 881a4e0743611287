package render

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/banshee-data/pointreduce/internal/pointio"
)

// View serves one reduction over HTTP:
//
//	GET /            HTML scatter (go-echarts)
//	GET /before.csv  input points
//	GET /after.csv   centroids
type View struct {
	before, after []geom.Point
	opts          ChartOptions
	mux           *http.ServeMux
}

// NewView builds a handler over copies of the two point sequences.
func NewView(before, after []geom.Point, o ChartOptions) *View {
	v := &View{
		before: append([]geom.Point(nil), before...),
		after:  append([]geom.Point(nil), after...),
		opts:   o,
		mux:    http.NewServeMux(),
	}
	v.mux.HandleFunc("/", v.handleChart)
	v.mux.HandleFunc("/before.csv", v.csvHandler(v.before))
	v.mux.HandleFunc("/after.csv", v.csvHandler(v.after))
	return v
}

func (v *View) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.mux.ServeHTTP(w, r)
}

func (v *View) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, v.before, v.after, v.opts); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (v *View) csvHandler(points []geom.Point) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var buf bytes.Buffer
		if err := pointio.WriteCSV(&buf, points); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
