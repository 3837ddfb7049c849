// Package risk implements the risk-scoring engine: a pure function set that
// turns a zone's boolean risk factors into a weighted 0-100 score and a
// three-tier level, and derives environmental factors from sensor readings.
// Nothing in this package performs I/O or mutates shared state.
package risk

import (
	"math"
	"time"

	"shorewatch/internal/types"
)

// Per-factor weights contributing to the total score. The sum over all
// factors exceeds 100 intentionally; the total is clamped.
const (
	weightSwimmers   = 30
	weightCrowd      = 20
	weightEmergency  = 25
	weightHighWaves  = 15
	weightStrongWind = 10
	weightExtremeTid = 10
	weightPoorVis    = 10
)

// Level thresholds: total <= levelLowMax is low, total <= levelElevatedMax is
// elevated, anything above is high.
const (
	levelLowMax      = 33
	levelElevatedMax = 66
	maxTotal         = 100
)

// Environmental thresholds for deriving boolean factors from sensor readings.
const (
	// WaveHeightThreshold is the wave height (meters) above which surf is
	// considered high.
	WaveHeightThreshold = 1.5
	// WindSpeedThreshold is the wind speed (m/s, ~25 knots) above which wind
	// is considered strong.
	WindSpeedThreshold = 12.86
	// MeanTideLevel approximates the mean water level (feet MLLW) for the
	// LA/OC coast.
	MeanTideLevel = 2.5
	// TideDeviationThreshold is the deviation (feet) from MeanTideLevel
	// beyond which the tide is considered extreme.
	TideDeviationThreshold = 1.5
)

// Compute produces a RiskScore from a factor set. It sums the fixed weights
// of every true factor, clamps to 100, and maps the total to a level.
// Deterministic: the same factors always yield the same total and level.
func Compute(factors types.RiskFactors, previousTotal int) types.RiskScore {
	total := 0
	if factors.SwimmersDetected {
		total += weightSwimmers
	}
	if factors.HighCrowdNearWaterline {
		total += weightCrowd
	}
	if factors.EmergencyVehiclesVisible {
		total += weightEmergency
	}
	if factors.HighWaveHeight {
		total += weightHighWaves
	}
	if factors.StrongWind {
		total += weightStrongWind
	}
	if factors.ExtremeTide {
		total += weightExtremeTid
	}
	if factors.PoorVisibility {
		total += weightPoorVis
	}
	if total > maxTotal {
		total = maxTotal
	}

	return types.RiskScore{
		Total:         total,
		Level:         levelFor(total),
		Factors:       factors,
		PreviousTotal: previousTotal,
		ComputedAt:    time.Now().UTC(),
	}
}

// levelFor maps a total score to its risk level tier.
func levelFor(total int) types.RiskLevel {
	switch {
	case total <= levelLowMax:
		return types.RiskLow
	case total <= levelElevatedMax:
		return types.RiskElevated
	default:
		return types.RiskHigh
	}
}

// DeriveEnvironmentalFactors thresholds sensor readings into partial risk
// factors. A factor is omitted (nil) when its underlying reading is
// unavailable, so merging never falsely clears a factor after a failed fetch.
//
// PoorVisibility is always set false: no current data source reports
// visibility. This is a known sensor gap, not derived from readings.
func DeriveEnvironmentalFactors(env types.EnvironmentalData) types.PartialFactors {
	var partial types.PartialFactors

	if env.Buoy != nil && env.Buoy.WaveHeight != nil {
		partial.HighWaveHeight = boolPtr(*env.Buoy.WaveHeight > WaveHeightThreshold)
	}
	if env.Buoy != nil && env.Buoy.WindSpeed != nil {
		partial.StrongWind = boolPtr(*env.Buoy.WindSpeed > WindSpeedThreshold)
	}
	if env.Tide != nil && env.Tide.CurrentLevel != nil {
		deviation := math.Abs(*env.Tide.CurrentLevel - MeanTideLevel)
		partial.ExtremeTide = boolPtr(deviation > TideDeviationThreshold)
	}
	partial.PoorVisibility = boolPtr(false)

	return partial
}

// UpdateAndCompute merges partial factors over the current set (partial wins
// per key) and recomputes the score. This is the only path by which multiple
// signal sources combine into one score; callers never merge manually.
func UpdateAndCompute(current types.RiskFactors, partial types.PartialFactors, previousTotal int) types.RiskScore {
	return Compute(Merge(current, partial), previousTotal)
}

// Merge applies non-nil partial factors over the current complete set,
// always producing a complete set.
func Merge(current types.RiskFactors, partial types.PartialFactors) types.RiskFactors {
	merged := current
	if partial.SwimmersDetected != nil {
		merged.SwimmersDetected = *partial.SwimmersDetected
	}
	if partial.HighCrowdNearWaterline != nil {
		merged.HighCrowdNearWaterline = *partial.HighCrowdNearWaterline
	}
	if partial.EmergencyVehiclesVisible != nil {
		merged.EmergencyVehiclesVisible = *partial.EmergencyVehiclesVisible
	}
	if partial.HighWaveHeight != nil {
		merged.HighWaveHeight = *partial.HighWaveHeight
	}
	if partial.StrongWind != nil {
		merged.StrongWind = *partial.StrongWind
	}
	if partial.ExtremeTide != nil {
		merged.ExtremeTide = *partial.ExtremeTide
	}
	if partial.PoorVisibility != nil {
		merged.PoorVisibility = *partial.PoorVisibility
	}
	return merged
}

// Summary returns human-readable descriptions of the active risk factors,
// ordered by severity for display in the alert feed and zone panels.
func Summary(factors types.RiskFactors) []string {
	var active []string
	if factors.EmergencyVehiclesVisible {
		active = append(active, "Emergency vehicles detected")
	}
	if factors.SwimmersDetected {
		active = append(active, "Swimmers in the water")
	}
	if factors.HighCrowdNearWaterline {
		active = append(active, "Crowded waterline")
	}
	if factors.HighWaveHeight {
		active = append(active, "High wave conditions")
	}
	if factors.StrongWind {
		active = append(active, "Strong winds")
	}
	if factors.ExtremeTide {
		active = append(active, "Extreme tide")
	}
	if factors.PoorVisibility {
		active = append(active, "Poor visibility")
	}
	return active
}

func boolPtr(b bool) *bool {
	return &b
}
