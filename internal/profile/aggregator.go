// Package profile reduces a driver's cluster-labeled samples into a single
// fixed-schema behavioral profile.
package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/paddock-data/drivestyle/internal/cluster"
)

// smoothnessEpsilon keeps throttle_smoothness finite for drivers with a
// near-zero mean throttle rate.
const smoothnessEpsilon = 0.001

// Quantile bounds for the speed-conditioned throttle means. Computed per
// driver, not track-wide: the split measures how a driver behaves in their
// own slow corners and fast straights, independent of absolute pace.
const (
	lowSpeedQuantile  = 0.3
	highSpeedQuantile = 0.7
)

// Profile is one driver's aggregated driving-style summary for a track.
// Built once from the driver's rows in the labeled track table and
// immutable thereafter. No field is ever NaN or infinite.
type Profile struct {
	AvgSpeed                float64 `json:"avg_speed"`
	SpeedVariability        float64 `json:"speed_variability"`
	MaxSpeed                float64 `json:"max_speed"`
	ThrottleAggression      float64 `json:"throttle_aggression"`
	ThrottleSmoothness      float64 `json:"throttle_smoothness"`
	BrakeFrequency          float64 `json:"brake_frequency"`
	BrakeIntensity          float64 `json:"brake_intensity"`
	GearEfficiency          float64 `json:"gear_efficiency"`
	AccelerationPattern     float64 `json:"acceleration_pattern"`
	AccelerationVariability float64 `json:"acceleration_variability"`
	CorneringStyle          float64 `json:"cornering_style"`
	StraightLineStyle       float64 `json:"straight_line_style"`
}

// FieldNames lists the profile fields in the fixed order used by Vector.
// Matrix rows and columns across the similarity engine all follow this
// order.
var FieldNames = []string{
	"avg_speed", "speed_variability", "max_speed",
	"throttle_aggression", "throttle_smoothness",
	"brake_frequency", "brake_intensity", "gear_efficiency",
	"acceleration_pattern", "acceleration_variability",
	"cornering_style", "straight_line_style",
}

// Vector returns the profile fields in FieldNames order.
func (p Profile) Vector() []float64 {
	return []float64{
		p.AvgSpeed, p.SpeedVariability, p.MaxSpeed,
		p.ThrottleAggression, p.ThrottleSmoothness,
		p.BrakeFrequency, p.BrakeIntensity, p.GearEfficiency,
		p.AccelerationPattern, p.AccelerationVariability,
		p.CorneringStyle, p.StraightLineStyle,
	}
}

// Aggregate builds one driver's profile from their rows in the labeled
// track table. Returns ok=false when the driver has no rows; that driver is
// simply excluded from the profile set, not an error. Undefined aggregates
// (e.g. the stddev of a single row) are coerced to 0.
func Aggregate(rows []cluster.LabeledRow) (Profile, bool) {
	if len(rows) == 0 {
		return Profile{}, false
	}

	speeds := make([]float64, len(rows))
	throttles := make([]float64, len(rows))
	throttleRates := make([]float64, len(rows))
	brakes := make([]float64, len(rows))
	brakeIntensities := make([]float64, len(rows))
	gearEffs := make([]float64, len(rows))
	accels := make([]float64, len(rows))
	for i, r := range rows {
		speeds[i] = r.Speed
		throttles[i] = r.Throttle
		throttleRates[i] = r.ThrottleRate
		brakes[i] = r.Brake
		brakeIntensities[i] = r.BrakeIntensity
		gearEffs[i] = r.GearEfficiency
		accels[i] = r.Acceleration
	}

	speedMean, speedStd := stat.MeanStdDev(speeds, nil)
	accelMean, accelStd := stat.MeanStdDev(accels, nil)

	p := Profile{
		AvgSpeed:                speedMean,
		SpeedVariability:        speedStd,
		MaxSpeed:                max64(speeds),
		ThrottleAggression:      stat.Mean(throttles, nil),
		ThrottleSmoothness:      1 / (stat.Mean(throttleRates, nil) + smoothnessEpsilon),
		BrakeFrequency:          stat.Mean(brakes, nil),
		BrakeIntensity:          stat.Mean(brakeIntensities, nil),
		GearEfficiency:          stat.Mean(gearEffs, nil),
		AccelerationPattern:     accelMean,
		AccelerationVariability: accelStd,
	}

	p.CorneringStyle = conditionalThrottleMean(speeds, throttles, lowSpeedQuantile, below)
	p.StraightLineStyle = conditionalThrottleMean(speeds, throttles, highSpeedQuantile, above)

	return p.sanitized(), true
}

type speedSide int

const (
	below speedSide = iota
	above
)

// conditionalThrottleMean returns the mean throttle over rows whose speed
// lies strictly on the given side of the driver's own speed quantile. When
// the restricted subset is empty (e.g. near-constant speed) it falls back
// to the overall mean throttle.
func conditionalThrottleMean(speeds, throttles []float64, q float64, side speedSide) float64 {
	sorted := append([]float64(nil), speeds...)
	sort.Float64s(sorted)
	threshold := stat.Quantile(q, stat.LinInterp, sorted, nil)

	var sum float64
	var n int
	for i, s := range speeds {
		if (side == below && s < threshold) || (side == above && s > threshold) {
			sum += throttles[i]
			n++
		}
	}
	if n == 0 {
		return stat.Mean(throttles, nil)
	}
	return sum / float64(n)
}

// sanitized coerces any undefined or infinite field to 0.
func (p Profile) sanitized() Profile {
	v := p.Vector()
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			v[i] = 0
		}
	}
	return Profile{
		AvgSpeed: v[0], SpeedVariability: v[1], MaxSpeed: v[2],
		ThrottleAggression: v[3], ThrottleSmoothness: v[4],
		BrakeFrequency: v[5], BrakeIntensity: v[6], GearEfficiency: v[7],
		AccelerationPattern: v[8], AccelerationVariability: v[9],
		CorneringStyle: v[10], StraightLineStyle: v[11],
	}
}

func max64(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
