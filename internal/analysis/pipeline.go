// Package analysis sequences the per-track pipeline: feature engineering
// per driver, pooled clustering, profile aggregation, and profile
// comparison, plus extraction of headline insights.
package analysis

import (
	"errors"
	"fmt"
	"log"

	"github.com/paddock-data/drivestyle/internal/cluster"
	"github.com/paddock-data/drivestyle/internal/config"
	"github.com/paddock-data/drivestyle/internal/features"
	"github.com/paddock-data/drivestyle/internal/profile"
	"github.com/paddock-data/drivestyle/internal/similarity"
	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// minTrackSamples is the minimum pooled feature-row count for a track to be
// worth clustering.
const minTrackSamples = 100

// DriverSession is one driver's ordered raw telemetry for a track. The
// slice order passed to AnalyzeTrack fixes the iteration order of every
// downstream artifact, keeping results reproducible.
type DriverSession struct {
	Driver  string
	Samples []telemetry.Sample
}

// TrackResult is the complete analysis output for one track. Each field is
// produced by one stage and never mutated afterwards; the renderer and the
// results store consume it read-only.
type TrackResult struct {
	Track string

	// Drivers lists the profiled drivers in first-seen order. Matrices in
	// Similarity index this list.
	Drivers []string

	Table      *cluster.Table
	Profiles   map[string]profile.Profile
	Similarity similarity.Result
	Insights   Insights

	// InsufficientDrivers is set when fewer than two drivers survived to
	// the comparison stage; Similarity then carries empty matrices.
	InsufficientDrivers bool
}

// AnalyzeTrack runs the full pipeline for one track. Per-driver failures
// (no usable rows) are logged and skipped; the run continues with the
// remaining drivers. Returns telemetry.ErrInsufficientData when the track
// pools too few samples to analyze at all.
func AnalyzeTrack(cfg *config.Config, track string, sessions []DriverSession) (*TrackResult, error) {
	var pooled []telemetry.FeatureRow
	for _, s := range sessions {
		team := cfg.TeamFor(s.Driver)
		rows := features.BuildRows(s.Samples, s.Driver, team)
		if len(rows) == 0 {
			log.Printf("%s: no usable samples for %s, skipping driver", track, s.Driver)
			continue
		}
		pooled = append(pooled, rows...)
	}

	if len(pooled) < minTrackSamples {
		return nil, fmt.Errorf("%s: %d pooled samples (need %d): %w",
			track, len(pooled), minTrackSamples, telemetry.ErrInsufficientData)
	}

	engine := cluster.NewEngine(cfg.ClusterParamsFor(track), cfg.GetSamplesPerDriver(), cfg.GetSampleSeed())
	table := engine.Cluster(track, pooled)

	res := &TrackResult{
		Track:    track,
		Table:    table,
		Profiles: make(map[string]profile.Profile),
	}
	for _, driver := range table.Drivers() {
		p, ok := profile.Aggregate(table.DriverRows(driver))
		if !ok {
			continue
		}
		res.Drivers = append(res.Drivers, driver)
		res.Profiles[driver] = p
	}

	sim, err := similarity.Compare(res.Drivers, res.Profiles)
	if err != nil {
		if !errors.Is(err, telemetry.ErrInsufficientData) {
			return nil, err
		}
		log.Printf("%s: %v", track, err)
		res.InsufficientDrivers = true
	}
	res.Similarity = sim
	res.Insights = ExtractInsights(res)

	return res, nil
}

// AnalyzeTracks runs AnalyzeTrack for each track independently. A track
// that cannot be processed is logged and excluded; the remaining tracks are
// still analyzed.
func AnalyzeTracks(cfg *config.Config, sessionsByTrack map[string][]DriverSession, trackOrder []string) map[string]*TrackResult {
	results := make(map[string]*TrackResult)
	for _, track := range trackOrder {
		res, err := AnalyzeTrack(cfg, track, sessionsByTrack[track])
		if err != nil {
			log.Printf("skipping %s: %v", track, err)
			continue
		}
		results[track] = res
	}
	return results
}
