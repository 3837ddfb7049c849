package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorewatch/internal/types"
)

func testConfigs() []types.ZoneConfig {
	return []types.ZoneConfig{
		{ID: "santa-monica", Name: "Santa Monica Beach", Enabled: true, StreamURL: "https://example.com/sm"},
		{ID: "venice", Name: "Venice Beach", Enabled: true, StreamURL: "https://example.com/venice"},
		{ID: "huntington", Name: "Huntington Beach", Enabled: false},
	}
}

func TestNewSeedsAllZones(t *testing.T) {
	s := New(testConfigs())

	all := s.AllZones()
	require.Len(t, all, 3)
	assert.Equal(t, "santa-monica", all[0].Config.ID)
	assert.Equal(t, "huntington", all[2].Config.ID)

	enabled := s.EnabledZones()
	require.Len(t, enabled, 2)

	assert.False(t, s.Initialized())
	assert.Equal(t, types.ModeConservative, s.Budget().Mode)
}

func TestMarkInitializedIdempotent(t *testing.T) {
	s := New(testConfigs())

	s.MarkInitialized()
	first := s.State().StartedAt
	require.False(t, first.IsZero())

	s.MarkInitialized()
	assert.Equal(t, first, s.State().StartedAt)
}

func TestUnknownZoneMutationsAreNoOps(t *testing.T) {
	s := New(testConfigs())

	assert.NotPanics(t, func() {
		s.UpdateZoneRisk("nowhere", types.RiskScore{Total: 50})
		s.SetRiskFactor("nowhere", types.FactorSwimmers, true)
		s.UpdateZoneEnvironmental("nowhere", types.EnvironmentalData{})
		s.AddAlert("nowhere", types.AlertEntry{ID: "a"})
		s.SetJobID("nowhere", types.JobLiveMonitor, "job-1")
		s.SetDigestNarrative("nowhere", "calm seas")
		s.SetStreamOnline("nowhere", true)
		s.SetLastCheck("nowhere")
	})

	_, ok := s.Zone("nowhere")
	assert.False(t, ok)
}

func TestAddAlertTrimsToCap(t *testing.T) {
	s := New(testConfigs())

	for i := 0; i < maxAlertsPerZone+10; i++ {
		s.AddAlert("venice", types.AlertEntry{ID: fmt.Sprintf("alert-%d", i)})
	}

	z, ok := s.Zone("venice")
	require.True(t, ok)
	require.Len(t, z.Alerts, maxAlertsPerZone)

	// Newest first: the last added alert is at the front, the earliest
	// surviving one at the back.
	assert.Equal(t, fmt.Sprintf("alert-%d", maxAlertsPerZone+9), z.Alerts[0].ID)
	assert.Equal(t, "alert-10", z.Alerts[maxAlertsPerZone-1].ID)
}

func TestAddErrorTrimsToCap(t *testing.T) {
	s := New(testConfigs())

	for i := 0; i < maxErrors+5; i++ {
		s.AddError(fmt.Sprintf("boom %d", i))
	}

	state := s.State()
	require.Len(t, state.Errors, maxErrors)
	assert.Contains(t, state.Errors[0], fmt.Sprintf("boom %d", maxErrors+4))
}

func TestSetRiskFactorByKey(t *testing.T) {
	s := New(testConfigs())

	s.SetRiskFactor("venice", types.FactorCrowd, true)
	s.SetRiskFactor("venice", types.FactorExtremeTid, true)

	z, ok := s.Zone("venice")
	require.True(t, ok)
	assert.True(t, z.Risk.Factors.HighCrowdNearWaterline)
	assert.True(t, z.Risk.Factors.ExtremeTide)
	assert.False(t, z.Risk.Factors.SwimmersDetected)
}

func TestFindZoneByJobID(t *testing.T) {
	s := New(testConfigs())

	s.SetJobID("venice", types.JobLiveMonitor, "job-mon")
	s.SetJobID("santa-monica", types.JobLiveDigest, "job-dig")

	id, ok := s.FindZoneByJobID("job-mon")
	require.True(t, ok)
	assert.Equal(t, "venice", id)

	id, ok = s.FindZoneByJobID("job-dig")
	require.True(t, ok)
	assert.Equal(t, "santa-monica", id)

	_, ok = s.FindZoneByJobID("job-unknown")
	assert.False(t, ok)

	_, ok = s.FindZoneByJobID("")
	assert.False(t, ok)
}

func TestBudgetCounters(t *testing.T) {
	s := New(testConfigs())

	for i := 0; i < 7; i++ {
		s.IncrementCheckUsed()
	}
	s.AddLiveMinutes(10)
	s.AddLiveMinutes(10)
	s.SetMode(types.ModeDemo)

	b := s.Budget()
	assert.Equal(t, 7, b.CheckOnceUsed)
	assert.Equal(t, 20, b.LiveMinutesUsed)
	assert.Equal(t, types.ModeDemo, b.Mode)
}

func TestResolveActionIdempotent(t *testing.T) {
	s := New(testConfigs())

	s.ResolveAction("active-swimmers:venice")
	s.ResolveAction("active-swimmers:venice")
	s.ResolveAction("crowded-waterline:venice")

	ids := s.ResolvedActionIDs()
	assert.Equal(t, []string{"active-swimmers:venice", "crowded-waterline:venice"}, ids)
}

func TestResetRestoresFactoryDefaults(t *testing.T) {
	s := New(testConfigs())

	s.MarkInitialized()
	s.SetRiskFactor("venice", types.FactorSwimmers, true)
	s.AddAlert("venice", types.AlertEntry{ID: "a1"})
	s.IncrementCheckUsed()
	s.SetMode(types.ModeDemo)
	s.SetJobID("venice", types.JobLiveMonitor, "job-1")
	s.ResolveAction("active-swimmers:venice")

	s.Reset()

	assert.False(t, s.Initialized())
	assert.Empty(t, s.ResolvedActionIDs())
	assert.Equal(t, 0, s.Budget().CheckOnceUsed)
	assert.Equal(t, types.ModeConservative, s.Budget().Mode)

	z, ok := s.Zone("venice")
	require.True(t, ok)
	assert.Empty(t, z.Alerts)
	assert.Empty(t, z.LiveMonitorJobID)
	assert.False(t, z.Risk.Factors.SwimmersDetected)

	// Config survives the reset.
	assert.Len(t, s.AllZones(), 3)
}

func TestReadsReturnCopies(t *testing.T) {
	s := New(testConfigs())
	s.AddAlert("venice", types.AlertEntry{ID: "a1"})

	z, ok := s.Zone("venice")
	require.True(t, ok)
	z.Alerts[0].ID = "tampered"
	z.Risk.Factors.SwimmersDetected = true

	fresh, _ := s.Zone("venice")
	assert.Equal(t, "a1", fresh.Alerts[0].ID)
	assert.False(t, fresh.Risk.Factors.SwimmersDetected)
}
