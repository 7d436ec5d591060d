// Package cluster pools feature rows from all drivers on a track, balances
// and standardizes them, and discovers driving-pattern regimes with DBSCAN.
package cluster

import (
	"log"

	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// LabeledRow is a feature row with its discovered cluster label. Label is
// Noise for points belonging to no pattern.
type LabeledRow struct {
	telemetry.FeatureRow
	Label int
}

// Table is the balanced, cluster-labeled feature table for one track.
type Table struct {
	Track string
	Rows  []LabeledRow

	// Clusters is the number of discovered patterns, excluding noise.
	Clusters int
	// NoisePoints is the number of rows labeled Noise.
	NoisePoints int
}

// NoiseFraction returns the share of rows labeled Noise.
func (t *Table) NoiseFraction() float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return float64(t.NoisePoints) / float64(len(t.Rows))
}

// DriverRows returns the table's rows for one driver, in table order.
func (t *Table) DriverRows(driver string) []LabeledRow {
	var out []LabeledRow
	for _, r := range t.Rows {
		if r.Driver == driver {
			out = append(out, r)
		}
	}
	return out
}

// Drivers returns the distinct drivers in the table, in first-seen order.
func (t *Table) Drivers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Driver] {
			seen[r.Driver] = true
			out = append(out, r.Driver)
		}
	}
	return out
}

// Engine balances, standardizes and clusters pooled feature rows.
type Engine struct {
	params           Params
	samplesPerDriver int
	seed             int64
}

// NewEngine creates a cluster engine with the given DBSCAN tuning,
// per-driver row cap and subsample seed.
func NewEngine(params Params, samplesPerDriver int, seed int64) *Engine {
	return &Engine{
		params:           params,
		samplesPerDriver: samplesPerDriver,
		seed:             seed,
	}
}

// Params returns the engine's DBSCAN tuning.
func (e *Engine) Params() Params {
	return e.params
}

// Cluster produces the labeled track feature table. Balancing caps each
// driver at the configured row count with a deterministic subsample, so
// long sessions cannot skew the cluster geometry. Non-finite feature
// values are clamped, every column z-scored over the pooled table, and
// DBSCAN run with the engine's tuning. The standardized values feed only
// the clustering; the table keeps the original feature rows.
func (e *Engine) Cluster(track string, rows []telemetry.FeatureRow) *Table {
	balanced := balance(rows, e.samplesPerDriver, e.seed)
	if len(balanced) == 0 {
		return &Table{Track: track}
	}

	matrix := make([][]float64, len(balanced))
	for i, r := range balanced {
		matrix[i] = r.Vector()
	}
	clampNonFinite(matrix)
	scaled := standardize(matrix)

	labels, clusters := DBSCAN(scaled, e.params.Eps, e.params.MinSamples)

	table := &Table{
		Track:    track,
		Rows:     make([]LabeledRow, len(balanced)),
		Clusters: clusters,
	}
	for i, r := range balanced {
		table.Rows[i] = LabeledRow{FeatureRow: r, Label: labels[i]}
		if labels[i] == Noise {
			table.NoisePoints++
		}
	}

	log.Printf("%s clustering: %d patterns, %d noise points (%.1f%%)",
		track, table.Clusters, table.NoisePoints, table.NoiseFraction()*100)

	return table
}
