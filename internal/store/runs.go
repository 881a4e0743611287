package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/pointreduce/internal/geom"
	"github.com/banshee-data/pointreduce/internal/monitoring"
	"github.com/banshee-data/pointreduce/internal/reduce"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Centroid is one stored output point with the size of its source group.
type Centroid struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	MemberCount int     `json:"member_count"`
}

// Run is a persisted reduction.
type Run struct {
	RunID        string     `json:"run_id"`
	Source       string     `json:"source"` // e.g. "disk" or "csv:points.csv"
	InputCount   int        `json:"input_count"`
	Threshold    float64    `json:"threshold"`
	AnchorPolicy string     `json:"anchor_policy"`
	DiskRadius   *float64   `json:"disk_radius,omitempty"`
	Seed         *uint64    `json:"seed,omitempty"`
	ElapsedNanos int64      `json:"elapsed_ns"`
	CreatedAt    int64      `json:"created_at"` // unix ns
	Centroids    []Centroid `json:"centroids,omitempty"`
}

// runJSON has Run's fields without its methods.
type runJSON Run

// MarshalJSON writes the threshold through reduce.JSONThreshold so runs
// reduced with an infinite threshold can still be listed.
func (r Run) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		runJSON
		Threshold reduce.JSONThreshold `json:"threshold"`
	}{runJSON: runJSON(r), Threshold: reduce.JSONThreshold(r.Threshold)})
}

func (r *Run) UnmarshalJSON(data []byte) error {
	aux := struct {
		runJSON
		Threshold reduce.JSONThreshold `json:"threshold"`
	}{runJSON: runJSON(*r), Threshold: reduce.JSONThreshold(r.Threshold)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Run(aux.runJSON)
	r.Threshold = float64(aux.Threshold)
	return nil
}

// Points returns the stored centroids as points, in production order.
func (r *Run) Points() []geom.Point {
	out := make([]geom.Point, len(r.Centroids))
	for i, c := range r.Centroids {
		out[i] = geom.Point{X: c.X, Y: c.Y}
	}
	return out
}

// NewRunFromResult builds a Run from a reducer result. Generator fields
// are left nil; set them when the input came from the disk generator.
func NewRunFromResult(res *reduce.Result, source string) *Run {
	run := &Run{
		Source:       source,
		InputCount:   res.InputCount,
		Threshold:    res.Threshold,
		AnchorPolicy: res.Policy,
		ElapsedNanos: res.Elapsed.Nanoseconds(),
		Centroids:    make([]Centroid, len(res.Rounds)),
	}
	for i, rd := range res.Rounds {
		run.Centroids[i] = Centroid{X: rd.Centroid.X, Y: rd.Centroid.Y, MemberCount: len(rd.Members)}
	}
	return run
}

// RunStore provides persistence for reduction runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a run and its centroids in one transaction. If RunID is
// empty a UUID is generated; if CreatedAt is zero it is set to now.
func (s *RunStore) Insert(ctx context.Context, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var seed interface{}
	if run.Seed != nil {
		seed = int64(*run.Seed)
	}
	var radius interface{}
	if run.DiskRadius != nil {
		radius = *run.DiskRadius
	}

	err := retryOnBusy(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reduction_runs (
				run_id, source, input_count, output_count, threshold,
				anchor_policy, disk_radius, seed, elapsed_ns, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Source, run.InputCount, len(run.Centroids), run.Threshold,
			run.AnchorPolicy, radius, seed, run.ElapsedNanos, run.CreatedAt,
		)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_centroids (run_id, seq, x, y, member_count)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, c := range run.Centroids {
			if _, err := stmt.ExecContext(ctx, run.RunID, i, c.X, c.Y, c.MemberCount); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	monitoring.Logf("[store] saved run %s (%d -> %d points)", run.RunID, run.InputCount, len(run.Centroids))
	return nil
}

// Get returns the run with the given ID, including its centroids.
func (s *RunStore) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, input_count, threshold, anchor_policy,
		       disk_radius, seed, elapsed_ns, created_at
		FROM reduction_runs
		WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT x, y, member_count
		FROM run_centroids
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query centroids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Centroid
		if err := rows.Scan(&c.X, &c.Y, &c.MemberCount); err != nil {
			return nil, fmt.Errorf("scan centroid: %w", err)
		}
		run.Centroids = append(run.Centroids, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate centroids: %w", err)
	}
	return run, nil
}

// List returns up to limit runs without their centroids, newest first.
// A non-positive limit returns every run.
func (s *RunStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, input_count, threshold, anchor_policy,
		       disk_radius, seed, elapsed_ns, created_at
		FROM reduction_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run and its centroids.
func (s *RunStore) Delete(ctx context.Context, runID string) error {
	var affected int64
	err := retryOnBusy(func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM reduction_runs WHERE run_id = ?`, runID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run    Run
		radius sql.NullFloat64
		seed   sql.NullInt64
	)
	err := row.Scan(
		&run.RunID, &run.Source, &run.InputCount, &run.Threshold, &run.AnchorPolicy,
		&radius, &seed, &run.ElapsedNanos, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if radius.Valid {
		r := radius.Float64
		run.DiskRadius = &r
	}
	if seed.Valid {
		s := uint64(seed.Int64)
		run.Seed = &s
	}
	return &run, nil
}
