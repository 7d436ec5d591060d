package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddock-data/drivestyle/internal/telemetry"
)

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestParseDriverCSV_BooleanBrake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "VER.csv")
	writeCSV(t, path, `Date,RPM,Speed,nGear,Throttle,Brake
2025-03-16,11000,280.5,7,98.2,False
2025-03-16,9500,140.0,3,10.0,True
`)

	samples, err := ParseDriverCSV(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, telemetry.Sample{RPM: 11000, Speed: 280.5, Gear: 7, Throttle: 98.2, Brake: false}, samples[0])
	assert.Equal(t, telemetry.Sample{RPM: 9500, Speed: 140.0, Gear: 3, Throttle: 10.0, Brake: true}, samples[1])
}

func TestParseDriverCSV_NumericBrake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NOR.csv")
	writeCSV(t, path, `RPM,Speed,nGear,Throttle,nBrake
11000,280,7,98,0
9500,140,3,10,1
`)

	samples, err := ParseDriverCSV(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.False(t, samples[0].Brake)
	assert.True(t, samples[1].Brake)
}

func TestParseDriverCSV_NoBrakeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HAM.csv")
	writeCSV(t, path, `RPM,Speed,nGear,Throttle
11000,280,7,98
`)

	samples, err := ParseDriverCSV(path)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.False(t, samples[0].Brake)
}

func TestParseDriverCSV_MissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LEC.csv")
	writeCSV(t, path, `RPM,Speed,Throttle
11000,280,98
`)

	_, err := ParseDriverCSV(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, telemetry.ErrMissingColumns), "want ErrMissingColumns, got %v", err)
	assert.ErrorContains(t, err, "nGear")
}

func TestParseDriverCSV_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PIA.csv")
	writeCSV(t, path, `RPM,Speed,nGear,Throttle
11000,280,7,98
not-a-number,280,7,98
10500,,6,90
10000,250,6,85
`)

	samples, err := ParseDriverCSV(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 11000.0, samples[0].RPM)
	assert.Equal(t, 10000.0, samples[1].RPM)
}

func TestDriverCode(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"VER.csv", "VER"},
		{"Australia-quali-VER.csv", "VER"},
		{"quali-ALB-2025.csv", "ALB"},
		{"data/Qualifying/Japan/TSU.csv", "TSU"},
		{"telemetry.csv", "telemetry"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DriverCode(c.path), "path %s", c.path)
	}
}

func TestLoadTrack(t *testing.T) {
	root := t.TempDir()
	trackDir := filepath.Join(root, "Qualifying", "Bahrain")
	body := `RPM,Speed,nGear,Throttle
11000,280,7,98
10000,250,6,85
`
	writeCSV(t, filepath.Join(trackDir, "VER.csv"), body)
	// One level of nesting is supported.
	writeCSV(t, filepath.Join(trackDir, "extra", "HAM.csv"), body)
	// A file missing required columns is skipped, not fatal.
	writeCSV(t, filepath.Join(trackDir, "BAD.csv"), "Speed\n100\n")

	sessions, err := LoadTrack(root, "Bahrain")
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Sorted path order: lowercase "extra/" sorts after the top-level files.
	assert.Equal(t, "VER", sessions[0].Driver)
	assert.Equal(t, "HAM", sessions[1].Driver)
	assert.Len(t, sessions[0].Samples, 2)
}

func TestLoadTrack_NoFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Qualifying", "Japan"), 0o755))
	_, err := LoadTrack(root, "Japan")
	assert.ErrorContains(t, err, "no CSV files")
}

func TestLoadTrack_MissingDirectory(t *testing.T) {
	_, err := LoadTrack(t.TempDir(), "Japan")
	assert.Error(t, err)
}
