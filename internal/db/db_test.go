package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddock-data/drivestyle/internal/analysis"
	"github.com/paddock-data/drivestyle/internal/cluster"
	"github.com/paddock-data/drivestyle/internal/profile"
	"github.com/paddock-data/drivestyle/internal/similarity"
	"github.com/paddock-data/drivestyle/internal/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult() *analysis.TrackResult {
	table := &cluster.Table{
		Track: "Bahrain",
		Rows: []cluster.LabeledRow{
			{FeatureRow: telemetry.FeatureRow{Driver: "VER", Team: "RedBull"}, Label: 1},
			{FeatureRow: telemetry.FeatureRow{Driver: "HAM", Team: "Ferrari"}, Label: cluster.Noise},
		},
		Clusters:    1,
		NoisePoints: 1,
	}
	return &analysis.TrackResult{
		Track:   "Bahrain",
		Drivers: []string{"VER", "HAM"},
		Table:   table,
		Profiles: map[string]profile.Profile{
			"VER": {AvgSpeed: 220, MaxSpeed: 330, ThrottleAggression: 70, ThrottleSmoothness: 0.1},
			"HAM": {AvgSpeed: 180, MaxSpeed: 300, ThrottleAggression: 40, ThrottleSmoothness: 0.5},
		},
		Similarity: similarity.Result{
			Drivers:    []string{"VER", "HAM"},
			Similarity: [][]float64{{1, -0.4}, {-0.4, 1}},
			Distance:   [][]float64{{0, 3.2}, {3.2, 0}},
		},
	}
}

func TestSaveTrackRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.SaveTrackRun(testResult())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "Bahrain", runs[0].Track)
	assert.Equal(t, 2, runs[0].DriverCount)
	assert.Equal(t, 2, runs[0].SampleCount)
	assert.Equal(t, 1, runs[0].ClusterCount)
	assert.Equal(t, 1, runs[0].NoisePoints)

	profiles, err := db.ProfilesForRun(runID)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	// ORDER BY driver: HAM before VER.
	assert.Equal(t, "HAM", profiles[0].Driver)
	assert.Equal(t, "Ferrari", profiles[0].Team)
	assert.Equal(t, 180.0, profiles[0].Profile.AvgSpeed)
	assert.Equal(t, "VER", profiles[1].Driver)
	assert.Equal(t, "RedBull", profiles[1].Team)
	assert.Equal(t, 70.0, profiles[1].Profile.ThrottleAggression)

	sims, err := db.SimilaritiesForRun(runID)
	require.NoError(t, err)
	require.Len(t, sims, 1)
	assert.Equal(t, "VER", sims[0].DriverA)
	assert.Equal(t, "HAM", sims[0].DriverB)
	assert.Equal(t, -0.4, sims[0].CosineSimilarity)
	assert.Equal(t, 3.2, sims[0].EuclideanDistance)
}

func TestSaveTrackRun_InsufficientDrivers(t *testing.T) {
	db := openTestDB(t)

	res := testResult()
	res.Drivers = res.Drivers[:1]
	res.InsufficientDrivers = true
	res.Similarity = similarity.Result{Drivers: res.Drivers}

	runID, err := db.SaveTrackRun(res)
	require.NoError(t, err)

	profiles, err := db.ProfilesForRun(runID)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	sims, err := db.SimilaritiesForRun(runID)
	require.NoError(t, err)
	assert.Empty(t, sims)
}

func TestSaveTrackRun_MultipleRuns(t *testing.T) {
	db := openTestDB(t)

	id1, err := db.SaveTrackRun(testResult())
	require.NoError(t, err)
	id2, err := db.SaveTrackRun(testResult())
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Each run's child rows stay scoped to its ID.
	profiles, err := db.ProfilesForRun(id1)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestProfilesForRun_UnknownID(t *testing.T) {
	db := openTestDB(t)
	profiles, err := db.ProfilesForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
