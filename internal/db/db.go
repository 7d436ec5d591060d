// Package db persists analysis results to sqlite: one row per track run,
// plus the per-driver profiles and pairwise similarities the run produced.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/profile"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the results database at path. The base
// schema is created directly; MigrateUp applies any later schema changes.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id            TEXT PRIMARY KEY,
			track             TEXT NOT NULL,
			driver_count      BIGINT NOT NULL,
			sample_count      BIGINT NOT NULL,
			cluster_count     BIGINT NOT NULL,
			noise_points      BIGINT NOT NULL,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS driver_profiles (
			run_id                    TEXT NOT NULL,
			driver                    TEXT NOT NULL,
			team                      TEXT,
			avg_speed                 DOUBLE,
			speed_variability         DOUBLE,
			max_speed                 DOUBLE,
			throttle_aggression       DOUBLE,
			throttle_smoothness       DOUBLE,
			brake_frequency           DOUBLE,
			brake_intensity           DOUBLE,
			gear_efficiency           DOUBLE,
			acceleration_pattern      DOUBLE,
			acceleration_variability  DOUBLE,
			cornering_style           DOUBLE,
			straight_line_style       DOUBLE,
			PRIMARY KEY (run_id, driver),
			FOREIGN KEY(run_id) REFERENCES analysis_runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS driver_similarities (
			run_id              TEXT NOT NULL,
			driver_a            TEXT NOT NULL,
			driver_b            TEXT NOT NULL,
			cosine_similarity   DOUBLE,
			euclidean_distance  DOUBLE,
			PRIMARY KEY (run_id, driver_a, driver_b),
			FOREIGN KEY(run_id) REFERENCES analysis_runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// SaveTrackRun records one track's analysis in a single transaction and
// returns the new run ID.
func (db *DB) SaveTrackRun(res *analysis.TrackResult) (string, error) {
	runID := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO analysis_runs (run_id, track, driver_count, sample_count, cluster_count, noise_points)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, res.Track, len(res.Drivers), len(res.Table.Rows), res.Table.Clusters, res.Table.NoisePoints,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	teams := make(map[string]string)
	for _, r := range res.Table.Rows {
		if _, ok := teams[r.Driver]; !ok {
			teams[r.Driver] = r.Team
		}
	}

	for _, driver := range res.Drivers {
		p := res.Profiles[driver]
		_, err = tx.Exec(
			`INSERT INTO driver_profiles (
				run_id, driver, team,
				avg_speed, speed_variability, max_speed,
				throttle_aggression, throttle_smoothness,
				brake_frequency, brake_intensity, gear_efficiency,
				acceleration_pattern, acceleration_variability,
				cornering_style, straight_line_style
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, driver, teams[driver],
			p.AvgSpeed, p.SpeedVariability, p.MaxSpeed,
			p.ThrottleAggression, p.ThrottleSmoothness,
			p.BrakeFrequency, p.BrakeIntensity, p.GearEfficiency,
			p.AccelerationPattern, p.AccelerationVariability,
			p.CorneringStyle, p.StraightLineStyle,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert profile for %s: %w", driver, err)
		}
	}

	if !res.InsufficientDrivers {
		for i := 0; i < len(res.Drivers); i++ {
			for j := i + 1; j < len(res.Drivers); j++ {
				_, err = tx.Exec(
					`INSERT INTO driver_similarities (run_id, driver_a, driver_b, cosine_similarity, euclidean_distance)
					 VALUES (?, ?, ?, ?, ?)`,
					runID, res.Drivers[i], res.Drivers[j],
					res.Similarity.Similarity[i][j], res.Similarity.Distance[i][j],
				)
				if err != nil {
					return "", fmt.Errorf("failed to insert similarity %s/%s: %w",
						res.Drivers[i], res.Drivers[j], err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// Run summarizes one stored analysis run.
type Run struct {
	RunID        string    `json:"run_id"`
	Track        string    `json:"track"`
	DriverCount  int       `json:"driver_count"`
	SampleCount  int       `json:"sample_count"`
	ClusterCount int       `json:"cluster_count"`
	NoisePoints  int       `json:"noise_points"`
	Timestamp    time.Time `json:"timestamp"`
}

// ListRuns returns stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(
		`SELECT run_id, track, driver_count, sample_count, cluster_count, noise_points, timestamp
		 FROM analysis_runs ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Track, &r.DriverCount, &r.SampleCount,
			&r.ClusterCount, &r.NoisePoints, &r.Timestamp); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StoredProfile is one persisted driver profile.
type StoredProfile struct {
	Driver  string          `json:"driver"`
	Team    string          `json:"team"`
	Profile profile.Profile `json:"profile"`
}

// ProfilesForRun returns the driver profiles stored for a run.
func (db *DB) ProfilesForRun(runID string) ([]StoredProfile, error) {
	rows, err := db.Query(
		`SELECT driver, team,
			avg_speed, speed_variability, max_speed,
			throttle_aggression, throttle_smoothness,
			brake_frequency, brake_intensity, gear_efficiency,
			acceleration_pattern, acceleration_variability,
			cornering_style, straight_line_style
		 FROM driver_profiles WHERE run_id = ? ORDER BY driver`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredProfile
	for rows.Next() {
		var sp StoredProfile
		p := &sp.Profile
		if err := rows.Scan(&sp.Driver, &sp.Team,
			&p.AvgSpeed, &p.SpeedVariability, &p.MaxSpeed,
			&p.ThrottleAggression, &p.ThrottleSmoothness,
			&p.BrakeFrequency, &p.BrakeIntensity, &p.GearEfficiency,
			&p.AccelerationPattern, &p.AccelerationVariability,
			&p.CorneringStyle, &p.StraightLineStyle); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// StoredSimilarity is one persisted driver pair comparison.
type StoredSimilarity struct {
	DriverA           string  `json:"driver_a"`
	DriverB           string  `json:"driver_b"`
	CosineSimilarity  float64 `json:"cosine_similarity"`
	EuclideanDistance float64 `json:"euclidean_distance"`
}

// SimilaritiesForRun returns the pairwise comparisons stored for a run.
func (db *DB) SimilaritiesForRun(runID string) ([]StoredSimilarity, error) {
	rows, err := db.Query(
		`SELECT driver_a, driver_b, cosine_similarity, euclidean_distance
		 FROM driver_similarities WHERE run_id = ? ORDER BY driver_a, driver_b`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredSimilarity
	for rows.Next() {
		var s StoredSimilarity
		if err := rows.Scan(&s.DriverA, &s.DriverB, &s.CosineSimilarity, &s.EuclideanDistance); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
