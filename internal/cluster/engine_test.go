package cluster

import (
	"math"
	"reflect"
	"testing"

	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// syntheticRows builds count feature rows for a driver with deterministic,
// mildly varying values.
func syntheticRows(driver string, count int, base float64) []telemetry.FeatureRow {
	rows := make([]telemetry.FeatureRow, count)
	for i := range rows {
		f := float64(i)
		rows[i] = telemetry.FeatureRow{
			RPM:              base*100 + f,
			Speed:            base + math.Mod(f, 7),
			Gear:             4,
			Throttle:         base/4 + math.Mod(f, 5),
			Brake:            math.Mod(f, 2),
			ThrottleRate:     math.Mod(f, 3),
			BrakeIntensity:   math.Mod(f, 2) * base,
			GearEfficiency:   base * 20,
			SpeedVariability: math.Mod(f, 4),
			Acceleration:     math.Mod(f, 5) - 2,
			Driver:           driver,
			Team:             "TestTeam",
		}
	}
	return rows
}

func TestBalance_CapsEachDriver(t *testing.T) {
	rows := append(syntheticRows("AAA", 30, 100), syntheticRows("BBB", 5, 200)...)
	rows = append(rows, syntheticRows("CCC", 10, 300)...)

	balanced := balance(rows, 10, DefaultSampleSeed)

	counts := make(map[string]int)
	for _, r := range balanced {
		counts[r.Driver]++
	}
	// min(raw_row_count, cap) per driver
	if counts["AAA"] != 10 {
		t.Errorf("AAA contributed %d rows, want 10 (capped)", counts["AAA"])
	}
	if counts["BBB"] != 5 {
		t.Errorf("BBB contributed %d rows, want 5 (under cap)", counts["BBB"])
	}
	if counts["CCC"] != 10 {
		t.Errorf("CCC contributed %d rows, want 10 (at cap)", counts["CCC"])
	}
}

func TestBalance_DeterministicAndOrderPreserving(t *testing.T) {
	rows := syntheticRows("AAA", 50, 100)

	b1 := balance(rows, 20, DefaultSampleSeed)
	b2 := balance(rows, 20, DefaultSampleSeed)
	if !reflect.DeepEqual(b1, b2) {
		t.Fatal("repeated balancing with the same seed differs")
	}

	// Selected rows keep their temporal order (monotone RPM in the fixture).
	for i := 1; i < len(b1); i++ {
		if b1[i].RPM <= b1[i-1].RPM {
			t.Fatalf("subsample reordered rows at %d: %f after %f", i, b1[i].RPM, b1[i-1].RPM)
		}
	}
}

func TestBalance_FirstSeenDriverOrder(t *testing.T) {
	rows := append(syntheticRows("ZZZ", 3, 100), syntheticRows("AAA", 3, 200)...)
	balanced := balance(rows, 10, DefaultSampleSeed)

	if balanced[0].Driver != "ZZZ" || balanced[len(balanced)-1].Driver != "AAA" {
		t.Errorf("driver blocks reordered: first=%s last=%s", balanced[0].Driver, balanced[len(balanced)-1].Driver)
	}
}

func TestStandardize_ZeroMeanUnitVariance(t *testing.T) {
	rows := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 400},
	}
	scaled := standardize(rows)

	for col := 0; col < 2; col++ {
		var sum float64
		for _, r := range scaled {
			sum += r[col]
		}
		mean := sum / float64(len(scaled))
		if math.Abs(mean) > 1e-9 {
			t.Errorf("column %d mean = %g, want 0", col, mean)
		}
	}
	// Differently scaled columns standardize to the same values.
	for i := range scaled {
		if math.Abs(scaled[i][0]-scaled[i][1]) > 1e-9 {
			t.Errorf("row %d: columns differ after standardization: %v", i, scaled[i])
		}
	}
}

func TestStandardize_ConstantColumn(t *testing.T) {
	rows := [][]float64{{5, 1}, {5, 2}, {5, 3}}
	scaled := standardize(rows)
	for i, r := range scaled {
		if r[0] != 0 {
			t.Errorf("row %d: constant column scaled to %f, want 0", i, r[0])
		}
	}
}

func TestClampNonFinite(t *testing.T) {
	rows := [][]float64{{math.Inf(1), math.Inf(-1), math.NaN(), 1.5}}
	clampNonFinite(rows)
	want := []float64{nonFiniteClamp, -nonFiniteClamp, 0, 1.5}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("clamped row = %v, want %v", rows[0], want)
	}
}

func TestEngine_Cluster_Deterministic(t *testing.T) {
	rows := append(syntheticRows("AAA", 60, 100), syntheticRows("BBB", 60, 250)...)
	engine := NewEngine(Params{Eps: 0.8, MinSamples: 4}, 40, DefaultSampleSeed)

	t1 := engine.Cluster("TestTrack", rows)
	t2 := engine.Cluster("TestTrack", rows)

	if len(t1.Rows) != len(t2.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(t1.Rows), len(t2.Rows))
	}
	for i := range t1.Rows {
		if t1.Rows[i].Label != t2.Rows[i].Label {
			t.Fatalf("labels differ at row %d: %d vs %d", i, t1.Rows[i].Label, t2.Rows[i].Label)
		}
	}
	if t1.Clusters != t2.Clusters || t1.NoisePoints != t2.NoisePoints {
		t.Errorf("metrics differ: %d/%d vs %d/%d", t1.Clusters, t1.NoisePoints, t2.Clusters, t2.NoisePoints)
	}
}

func TestEngine_Cluster_SmallInputDoesNotCrash(t *testing.T) {
	rows := append(syntheticRows("AAA", 5, 100), syntheticRows("BBB", 5, 200)...)
	engine := NewEngine(Params{Eps: 0.4, MinSamples: 5}, DefaultSamplesPerDriver, DefaultSampleSeed)

	table := engine.Cluster("Tiny", rows)
	if len(table.Rows) != 10 {
		t.Errorf("expected all 10 rows in table, got %d", len(table.Rows))
	}
	if frac := table.NoiseFraction(); frac < 0 || frac > 1 {
		t.Errorf("noise fraction out of range: %f", frac)
	}
}

func TestEngine_Cluster_EmptyInput(t *testing.T) {
	engine := NewEngine(DefaultParams(), DefaultSamplesPerDriver, DefaultSampleSeed)
	table := engine.Cluster("Empty", nil)
	if len(table.Rows) != 0 || table.Clusters != 0 {
		t.Errorf("expected empty table, got %d rows / %d clusters", len(table.Rows), table.Clusters)
	}
}

func TestTable_DriversAndDriverRows(t *testing.T) {
	rows := append(syntheticRows("AAA", 3, 100), syntheticRows("BBB", 2, 200)...)
	engine := NewEngine(Params{Eps: 0.5, MinSamples: 2}, 10, DefaultSampleSeed)
	table := engine.Cluster("TestTrack", rows)

	drivers := table.Drivers()
	if !reflect.DeepEqual(drivers, []string{"AAA", "BBB"}) {
		t.Errorf("drivers = %v, want [AAA BBB]", drivers)
	}
	if got := len(table.DriverRows("AAA")); got != 3 {
		t.Errorf("AAA rows = %d, want 3", got)
	}
	if got := len(table.DriverRows("MIA")); got != 0 {
		t.Errorf("unknown driver rows = %d, want 0", got)
	}
}
