// Package telemetry defines the typed records exchanged between pipeline
// stages: raw per-timestamp samples, engineered feature rows, and the
// sentinel errors stages use to signal skip conditions.
package telemetry

import "errors"

// Sentinel errors shared across the pipeline. Stages return these wrapped
// with context; callers test with errors.Is and decide whether to skip the
// driver/track or continue.
var (
	// ErrMissingColumns indicates a driver's raw data lacks one or more
	// required channels (RPM, Speed, nGear, Throttle). The driver is
	// skipped; the run continues.
	ErrMissingColumns = errors.New("missing required telemetry columns")

	// ErrInsufficientData indicates too few drivers or samples for a stage
	// to produce a meaningful result. Callers receive empty results, not a
	// crash.
	ErrInsufficientData = errors.New("insufficient data")
)

// Sample is one timestamped telemetry reading for a driver. Samples arrive
// as an ordered sequence; order is temporal and significant because
// derivatives and rolling windows depend on it.
type Sample struct {
	RPM      float64
	Speed    float64
	Gear     int
	Throttle float64 // percent, 0-100 (some sources use 0-1; treated uniformly)
	Brake    bool
}

// FeatureRow is one engineered per-sample record. The first five fields
// mirror the raw channels (Brake widened to 0/1), the next five are derived
// in temporal order over the driver's session.
type FeatureRow struct {
	RPM      float64
	Speed    float64
	Gear     float64
	Throttle float64
	Brake    float64 // 0 or 1

	ThrottleRate     float64 // |Δthrottle| from previous sample, first sample 0
	BrakeIntensity   float64 // Brake * Speed
	GearEfficiency   float64 // RPM / (Gear + 1)
	SpeedVariability float64 // trailing 10-sample stddev of Speed
	Acceleration     float64 // Δspeed from previous sample, first sample 0

	Driver string
	Team   string
}

// FeatureCount is the number of engineered numeric features used for
// clustering.
const FeatureCount = 10

// FeatureNames lists the engineered numeric columns in the fixed order used
// by Vector. The order is part of the clustering contract and must not
// change between runs.
var FeatureNames = []string{
	"RPM", "Speed", "nGear", "Throttle", "nBrake",
	"ThrottleRate", "BrakeIntensity", "GearEfficiency",
	"SpeedVariability", "Acceleration",
}

// Vector returns the row's engineered numeric features in FeatureNames
// order.
func (r FeatureRow) Vector() []float64 {
	return []float64{
		r.RPM, r.Speed, r.Gear, r.Throttle, r.Brake,
		r.ThrottleRate, r.BrakeIntensity, r.GearEfficiency,
		r.SpeedVariability, r.Acceleration,
	}
}
