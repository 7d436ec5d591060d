// Package features converts one driver's raw telemetry samples into the
// engineered per-sample feature rows used for clustering and profiling.
package features

import (
	"math"

	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// speedWindow is the trailing window length for the rolling speed stddev.
// Partial windows at the start of a session are allowed.
const speedWindow = 10

// BuildRows derives feature rows from a driver's ordered raw samples.
// Derivatives (ThrottleRate, Acceleration) are zero for the first sample.
// Rows containing a non-finite value after derivation are dropped outright,
// never imputed. Returns nil when there are no samples.
func BuildRows(samples []telemetry.Sample, driver, team string) []telemetry.FeatureRow {
	if len(samples) == 0 {
		return nil
	}

	rows := make([]telemetry.FeatureRow, 0, len(samples))
	speeds := make([]float64, 0, len(samples))

	for i, s := range samples {
		speeds = append(speeds, s.Speed)

		brake := 0.0
		if s.Brake {
			brake = 1.0
		}

		row := telemetry.FeatureRow{
			RPM:      s.RPM,
			Speed:    s.Speed,
			Gear:     float64(s.Gear),
			Throttle: s.Throttle,
			Brake:    brake,
			Driver:   driver,
			Team:     team,
		}

		if i > 0 {
			row.ThrottleRate = math.Abs(s.Throttle - samples[i-1].Throttle)
			row.Acceleration = s.Speed - samples[i-1].Speed
		}
		row.BrakeIntensity = brake * s.Speed
		row.GearEfficiency = s.RPM / (float64(s.Gear) + 1)
		row.SpeedVariability = trailingStdDev(speeds, speedWindow)

		if !finiteRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

// trailingStdDev computes the sample standard deviation of the last
// `window` values (fewer when the series is shorter). A window of one
// sample has no defined spread and yields 0.
func trailingStdDev(values []float64, window int) float64 {
	start := len(values) - window
	if start < 0 {
		start = 0
	}
	w := values[start:]
	if len(w) < 2 {
		return 0
	}

	var sum float64
	for _, v := range w {
		sum += v
	}
	mean := sum / float64(len(w))

	var ss float64
	for _, v := range w {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(w)-1))
}

func finiteRow(r telemetry.FeatureRow) bool {
	for _, v := range r.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
