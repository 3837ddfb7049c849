package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorewatch/internal/types"
)

func TestComputeDeterministic(t *testing.T) {
	factors := types.RiskFactors{
		SwimmersDetected: true,
		StrongWind:       true,
	}

	first := Compute(factors, 0)
	second := Compute(factors, 0)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.Factors, second.Factors)
}

func TestComputeMonotonicAndClamped(t *testing.T) {
	// Adding a true factor never decreases the total.
	base := types.RiskFactors{SwimmersDetected: true}
	withCrowd := base
	withCrowd.HighCrowdNearWaterline = true

	assert.GreaterOrEqual(t, Compute(withCrowd, 0).Total, Compute(base, 0).Total)

	// All factors true sums past 100 and must clamp.
	all := types.RiskFactors{
		SwimmersDetected:         true,
		HighCrowdNearWaterline:   true,
		EmergencyVehiclesVisible: true,
		HighWaveHeight:           true,
		StrongWind:               true,
		ExtremeTide:              true,
		PoorVisibility:           true,
	}
	score := Compute(all, 0)
	assert.Equal(t, 100, score.Total)
	assert.Equal(t, types.RiskHigh, score.Level)

	assert.GreaterOrEqual(t, Compute(types.RiskFactors{}, 0).Total, 0)
}

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		total int
		level types.RiskLevel
	}{
		{0, types.RiskLow},
		{33, types.RiskLow},
		{34, types.RiskElevated},
		{66, types.RiskElevated},
		{67, types.RiskHigh},
		{100, types.RiskHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, levelFor(tc.total), "total=%d", tc.total)
	}
}

func TestComputeSwimmersAndWavesScenario(t *testing.T) {
	factors := types.RiskFactors{
		SwimmersDetected: true,
		HighWaveHeight:   true,
	}

	score := Compute(factors, 0)

	assert.Equal(t, 45, score.Total)
	assert.Equal(t, types.RiskElevated, score.Level)
}

func TestDeriveEnvironmentalFactorsOmitsMissingReadings(t *testing.T) {
	// No buoy and no tide: only the visibility gap default is set.
	partial := DeriveEnvironmentalFactors(types.EnvironmentalData{})

	assert.Nil(t, partial.HighWaveHeight)
	assert.Nil(t, partial.StrongWind)
	assert.Nil(t, partial.ExtremeTide)
	require.NotNil(t, partial.PoorVisibility)
	assert.False(t, *partial.PoorVisibility)

	// Buoy present but wave height missing: wave factor still omitted.
	wind := 15.0
	partial = DeriveEnvironmentalFactors(types.EnvironmentalData{
		Buoy: &types.BuoyReading{WindSpeed: &wind},
	})
	assert.Nil(t, partial.HighWaveHeight)
	require.NotNil(t, partial.StrongWind)
	assert.True(t, *partial.StrongWind)
}

func TestDeriveEnvironmentalFactorsThresholds(t *testing.T) {
	waveHigh := 2.0
	waveLow := 1.0
	level := 4.5 // |4.5 - 2.5| = 2.0 > 1.5

	partial := DeriveEnvironmentalFactors(types.EnvironmentalData{
		Buoy: &types.BuoyReading{WaveHeight: &waveHigh},
		Tide: &types.TideReading{CurrentLevel: &level},
	})
	require.NotNil(t, partial.HighWaveHeight)
	assert.True(t, *partial.HighWaveHeight)
	require.NotNil(t, partial.ExtremeTide)
	assert.True(t, *partial.ExtremeTide)

	partial = DeriveEnvironmentalFactors(types.EnvironmentalData{
		Buoy: &types.BuoyReading{WaveHeight: &waveLow},
	})
	require.NotNil(t, partial.HighWaveHeight)
	assert.False(t, *partial.HighWaveHeight)
}

func TestUpdateAndComputeEmptyPartialIsRecomputeOnly(t *testing.T) {
	current := types.RiskFactors{
		SwimmersDetected: true,
		HighWaveHeight:   true,
	}

	before := Compute(current, 0)
	after := UpdateAndCompute(current, types.PartialFactors{}, before.Total)

	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Level, after.Level)
	assert.Equal(t, current, after.Factors)
	assert.Equal(t, before.Total, after.PreviousTotal)
}

func TestMergePartialWinsPerKey(t *testing.T) {
	current := types.RiskFactors{SwimmersDetected: true, StrongWind: true}
	off := false
	on := true

	merged := Merge(current, types.PartialFactors{
		SwimmersDetected: &off,
		ExtremeTide:      &on,
	})

	assert.False(t, merged.SwimmersDetected)
	assert.True(t, merged.StrongWind) // untouched
	assert.True(t, merged.ExtremeTide)
}

func TestSummaryListsActiveFactors(t *testing.T) {
	summary := Summary(types.RiskFactors{
		SwimmersDetected: true,
		ExtremeTide:      true,
	})

	assert.Equal(t, []string{"Swimmers in the water", "Extreme tide"}, summary)
	assert.Empty(t, Summary(types.RiskFactors{}))
}
