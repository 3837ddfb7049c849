// Package store holds the single source of truth for the monitoring system:
// one mutable record per zone plus system-wide counters, budget usage, and a
// bounded error log. Every read and write goes through a Store method; a
// mutex serializes mutation so each mutator is one atomic step. Reads return
// copies so callers never alias the guarded structures.
package store

import (
	"fmt"
	"sync"
	"time"

	"shorewatch/internal/types"
)

const (
	// maxAlertsPerZone caps each zone's alert list; older entries are
	// silently dropped.
	maxAlertsPerZone = 50
	// maxErrors caps the system error log.
	maxErrors = 20
)

// Store owns all mutable monitoring state for the process. Construct once
// with New and share the instance; zone configuration is fixed at creation.
type Store struct {
	mu    sync.Mutex
	state types.SystemState

	// zoneOrder preserves configuration order so iteration over zones is
	// deterministic (poll cycles depend on a fixed zone order).
	zoneOrder []string

	nowFn func() time.Time
}

// New creates a Store seeded with one zone record per config entry. All
// zones are present (enabled or not) so configuration is always readable.
func New(configs []types.ZoneConfig) *Store {
	s := &Store{nowFn: func() time.Time { return time.Now().UTC() }}
	s.state = initialState(configs, s.nowFn())
	for _, cfg := range configs {
		s.zoneOrder = append(s.zoneOrder, cfg.ID)
	}
	return s
}

func initialState(configs []types.ZoneConfig, now time.Time) types.SystemState {
	zones := make(map[string]*types.ZoneState, len(configs))
	for _, cfg := range configs {
		zones[cfg.ID] = &types.ZoneState{
			Config: cfg,
			Risk: types.RiskScore{
				Level:      types.RiskLow,
				ComputedAt: now,
			},
		}
	}
	return types.SystemState{
		Zones:  zones,
		Budget: types.Budget{Mode: types.ModeConservative},
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// State returns a snapshot of the full system state, with zone records
// deep-copied.
func (s *Store) State() types.SystemState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Zones = make(map[string]*types.ZoneState, len(s.state.Zones))
	for id, z := range s.state.Zones {
		c := copyZone(z)
		snap.Zones[id] = &c
	}
	snap.Errors = append([]string(nil), s.state.Errors...)
	snap.ResolvedActionIDs = append([]string(nil), s.state.ResolvedActionIDs...)
	return snap
}

// Zone returns a copy of one zone's state by id.
func (s *Store) Zone(zoneID string) (types.ZoneState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	z, ok := s.state.Zones[zoneID]
	if !ok {
		return types.ZoneState{}, false
	}
	return copyZone(z), true
}

// AllZones returns copies of every zone record in configuration order.
func (s *Store) AllZones() []types.ZoneState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.ZoneState, 0, len(s.zoneOrder))
	for _, id := range s.zoneOrder {
		out = append(out, copyZone(s.state.Zones[id]))
	}
	return out
}

// EnabledZones returns copies of the zones enabled for monitoring, in
// configuration order.
func (s *Store) EnabledZones() []types.ZoneState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.ZoneState
	for _, id := range s.zoneOrder {
		if z := s.state.Zones[id]; z.Config.Enabled {
			out = append(out, copyZone(z))
		}
	}
	return out
}

// Initialized reports whether the system has been started at least once
// since the last reset.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Initialized
}

// Budget returns the current budget record.
func (s *Store) Budget() types.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Budget
}

// ResolvedActionIDs returns the set of action ids a human has acknowledged.
func (s *Store) ResolvedActionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.ResolvedActionIDs...)
}

// FindZoneByJobID scans zones' job handles for the given remote job id.
// Used to correlate inbound webhook events back to a zone.
func (s *Store) FindZoneByJobID(jobID string) (string, bool) {
	if jobID == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.zoneOrder {
		z := s.state.Zones[id]
		if z.LiveMonitorJobID == jobID || z.LiveDigestJobID == jobID {
			return id, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Writes
//
// Mutators on an unknown zone id are silent no-ops: callers check existence
// only when they need the value back, never for mutation safety.
// ---------------------------------------------------------------------------

// MarkInitialized sets the initialization flag and start timestamp. Calls
// after the first are no-ops until Reset.
func (s *Store) MarkInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Initialized {
		return
	}
	s.state.Initialized = true
	s.state.StartedAt = s.nowFn()
}

// UpdateZoneRisk replaces a zone's risk score wholesale.
func (s *Store) UpdateZoneRisk(zoneID string, score types.RiskScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z, ok := s.state.Zones[zoneID]; ok {
		z.Risk = score
	}
}

// SetRiskFactor sets one factor by key on a zone's current factor set.
// Unknown keys are ignored.
func (s *Store) SetRiskFactor(zoneID string, key types.FactorKey, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.state.Zones[zoneID]
	if !ok {
		return
	}
	switch key {
	case types.FactorSwimmers:
		z.Risk.Factors.SwimmersDetected = value
	case types.FactorCrowd:
		z.Risk.Factors.HighCrowdNearWaterline = value
	case types.FactorEmergency:
		z.Risk.Factors.EmergencyVehiclesVisible = value
	case types.FactorHighWaves:
		z.Risk.Factors.HighWaveHeight = value
	case types.FactorStrongWind:
		z.Risk.Factors.StrongWind = value
	case types.FactorExtremeTid:
		z.Risk.Factors.ExtremeTide = value
	case types.FactorPoorVis:
		z.Risk.Factors.PoorVisibility = value
	}
}

// UpdateZoneEnvironmental replaces a zone's environmental snapshot wholesale.
// Callers only invoke this on successful fetches, so stale data persists
// across upstream failures.
func (s *Store) UpdateZoneEnvironmental(zoneID string, data types.EnvironmentalData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z, ok := s.state.Zones[zoneID]; ok {
		z.Environmental = data
	}
}

// AddAlert prepends an alert to a zone's feed (newest first) and trims the
// list to the per-zone cap.
func (s *Store) AddAlert(zoneID string, alert types.AlertEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.state.Zones[zoneID]
	if !ok {
		return
	}
	z.Alerts = append([]types.AlertEntry{alert}, z.Alerts...)
	if len(z.Alerts) > maxAlertsPerZone {
		z.Alerts = z.Alerts[:maxAlertsPerZone]
	}
}

// SetJobID sets or clears (empty id) a zone's remote job handle for the
// given job type.
func (s *Store) SetJobID(zoneID string, jobType types.JobType, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.state.Zones[zoneID]
	if !ok {
		return
	}
	switch jobType {
	case types.JobLiveMonitor:
		z.LiveMonitorJobID = jobID
	case types.JobLiveDigest:
		z.LiveDigestJobID = jobID
	}
}

// SetDigestNarrative stores the latest narrative summary with a timestamp.
func (s *Store) SetDigestNarrative(zoneID string, narrative string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z, ok := s.state.Zones[zoneID]; ok {
		z.DigestNarrative = narrative
		z.DigestNarrativeAt = s.nowFn()
	}
}

// SetStreamOnline sets a zone's stream online flag.
func (s *Store) SetStreamOnline(zoneID string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z, ok := s.state.Zones[zoneID]; ok {
		z.StreamOnline = online
	}
}

// SetLastCheck stamps the time of the most recent vision check on a zone.
func (s *Store) SetLastCheck(zoneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z, ok := s.state.Zones[zoneID]; ok {
		z.LastCheckAt = s.nowFn()
	}
}

// SetActiveJobCount records the number of currently running remote jobs.
func (s *Store) SetActiveJobCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveJobCount = count
}

// AddError appends a timestamped message to the bounded system error log
// (newest first).
func (s *Store) AddError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := fmt.Sprintf("[%s] %s", s.nowFn().Format(time.RFC3339), message)
	s.state.Errors = append([]string{entry}, s.state.Errors...)
	if len(s.state.Errors) > maxErrors {
		s.state.Errors = s.state.Errors[:maxErrors]
	}
}

// IncrementCheckUsed adds one single-shot check to the daily budget usage.
func (s *Store) IncrementCheckUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Budget.CheckOnceUsed++
}

// AddLiveMinutes charges continuous-job minutes against the daily budget.
func (s *Store) AddLiveMinutes(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Budget.LiveMinutesUsed += minutes
}

// SetMode switches the polling mode.
func (s *Store) SetMode(mode types.MonitorMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Budget.Mode = mode
}

// ResolveAction records an acknowledged action id. Duplicate ids are ignored.
func (s *Store) ResolveAction(actionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.state.ResolvedActionIDs {
		if id == actionID {
			return
		}
	}
	s.state.ResolvedActionIDs = append(s.state.ResolvedActionIDs, actionID)
}

// Reset discards all accumulated state -- alerts, budget usage, job handles,
// resolved actions -- and returns the store to factory defaults. Zone
// configuration is retained.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := make([]types.ZoneConfig, 0, len(s.zoneOrder))
	for _, id := range s.zoneOrder {
		configs = append(configs, s.state.Zones[id].Config)
	}
	s.state = initialState(configs, s.nowFn())
}

// copyZone deep-copies a zone record. The caller must hold the store lock.
func copyZone(z *types.ZoneState) types.ZoneState {
	c := *z
	c.Alerts = append([]types.AlertEntry(nil), z.Alerts...)
	if z.Environmental.Buoy != nil {
		buoy := *z.Environmental.Buoy
		c.Environmental.Buoy = &buoy
	}
	if z.Environmental.Tide != nil {
		tide := *z.Environmental.Tide
		tide.Predictions = append([]types.TidePrediction(nil), z.Environmental.Tide.Predictions...)
		c.Environmental.Tide = &tide
	}
	return c
}
