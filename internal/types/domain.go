// Package types defines the shared domain model for the Shorewatch platform:
// zone configuration, risk factors and scores, environmental readings, alert
// feed entries, and the aggregate per-zone and system state records owned by
// the store.
package types

import "time"

// RiskLevel is the three-tier summary of a zone's risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

// MonitorMode selects the breadth and cadence of condition polling.
type MonitorMode string

const (
	// ModeDemo polls every online zone each cycle at a fast interval.
	ModeDemo MonitorMode = "demo"
	// ModeConservative polls one zone per cycle, round-robin, and backs off
	// entirely when the daily check budget is nearly exhausted.
	ModeConservative MonitorMode = "conservative"
)

// JobType identifies which remote vision job handle a zone slot refers to.
type JobType string

const (
	JobLiveMonitor JobType = "live_monitor"
	JobLiveDigest  JobType = "live_digest"
)

// ActionPriority is the urgency tier of a suggested action.
type ActionPriority string

const (
	PriorityUrgent  ActionPriority = "urgent"
	PriorityWarning ActionPriority = "warning"
	PriorityInfo    ActionPriority = "info"
)

// AlertType categorizes alert feed entries.
type AlertType string

const (
	AlertVisionTrigger AlertType = "vision_trigger"
	AlertRiskChange    AlertType = "risk_change"
	AlertDigest        AlertType = "digest"
	AlertEnvironmental AlertType = "environmental"
	AlertSystem        AlertType = "system"
)

// FactorKey names one boolean risk factor. Keys are stable identifiers used
// for per-factor store updates and action rule attribution.
type FactorKey string

const (
	FactorSwimmers   FactorKey = "swimmers_detected"
	FactorCrowd      FactorKey = "high_crowd_near_waterline"
	FactorEmergency  FactorKey = "emergency_vehicles_visible"
	FactorHighWaves  FactorKey = "high_wave_height"
	FactorStrongWind FactorKey = "strong_wind"
	FactorExtremeTid FactorKey = "extreme_tide"
	FactorPoorVis    FactorKey = "poor_visibility"
)

// ZoneConfig is the static configuration for one monitored beach zone.
// Loaded once at startup and immutable thereafter.
type ZoneConfig struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	StreamURL string  `json:"stream_url"`
	Enabled   bool    `json:"enabled"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`

	// NOAA station pairing for environmental data.
	BuoyStationID string `json:"buoy_station_id"`
	TideStationID string `json:"tide_station_id"`

	// Dashboard map placement (SVG coordinates).
	MapX int `json:"map_x"`
	MapY int `json:"map_y"`
}

// RiskFactors is the fixed set of boolean risk conditions for a zone.
// Being a struct (not a map) guarantees every factor key is always present.
type RiskFactors struct {
	SwimmersDetected         bool `json:"swimmers_detected"`
	HighCrowdNearWaterline   bool `json:"high_crowd_near_waterline"`
	EmergencyVehiclesVisible bool `json:"emergency_vehicles_visible"`
	HighWaveHeight           bool `json:"high_wave_height"`
	StrongWind               bool `json:"strong_wind"`
	ExtremeTide              bool `json:"extreme_tide"`
	PoorVisibility           bool `json:"poor_visibility"`
}

// PartialFactors carries per-factor updates from one signal source. A nil
// field means "no observation" and leaves the current value untouched when
// merged, so a failed sensor fetch can never falsely clear a factor.
type PartialFactors struct {
	SwimmersDetected         *bool
	HighCrowdNearWaterline   *bool
	EmergencyVehiclesVisible *bool
	HighWaveHeight           *bool
	StrongWind               *bool
	ExtremeTide              *bool
	PoorVisibility           *bool
}

// RiskScore is the derived risk summary for a zone. Constructed only by the
// risk engine; level is always a pure function of total, and total a pure
// function of the factor set.
type RiskScore struct {
	Total         int         `json:"total"`
	Level         RiskLevel   `json:"level"`
	Factors       RiskFactors `json:"factors"`
	PreviousTotal int         `json:"previous_total"`
	ComputedAt    time.Time   `json:"computed_at"`
}

// BuoyReading is the latest observation from an NDBC buoy station.
// Nil fields indicate the station did not report that measurement.
type BuoyReading struct {
	StationID     string    `json:"station_id"`
	WaveHeight    *float64  `json:"wave_height"`    // meters
	WavePeriod    *float64  `json:"wave_period"`    // seconds
	WindSpeed     *float64  `json:"wind_speed"`     // m/s
	WindDirection *float64  `json:"wind_direction"` // degrees
	WaterTemp     *float64  `json:"water_temp"`     // Celsius
	AirTemp       *float64  `json:"air_temp"`       // Celsius
	FetchedAt     time.Time `json:"fetched_at"`
}

// TideState describes whether the water level is currently rising or falling.
type TideState string

const (
	TideRising  TideState = "rising"
	TideFalling TideState = "falling"
	TideUnknown TideState = "unknown"
)

// TidePrediction is one predicted high or low tide event.
type TidePrediction struct {
	Time  time.Time `json:"time"`
	Level float64   `json:"level"` // feet MLLW
	High  bool      `json:"high"`
}

// TideReading is the latest water level and today's high/low predictions
// from a CO-OPS station.
type TideReading struct {
	StationID    string           `json:"station_id"`
	CurrentLevel *float64         `json:"current_level"` // feet MLLW
	Predictions  []TidePrediction `json:"predictions"`
	State        TideState        `json:"state"`
	FetchedAt    time.Time        `json:"fetched_at"`
}

// EnvironmentalData is a zone's combined sensor snapshot. Either sub-reading
// may be nil when the upstream source is unavailable; the store keeps the
// last successful snapshot so the dashboard always shows last-known values.
type EnvironmentalData struct {
	Buoy *BuoyReading `json:"buoy"`
	Tide *TideReading `json:"tide"`
}

// AlertEntry is one immutable alert feed record. Entries are prepended to a
// per-zone bounded list and never mutated after creation.
type AlertEntry struct {
	ID          string    `json:"id"`
	ZoneID      string    `json:"zone_id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        AlertType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RiskLevel   RiskLevel `json:"risk_level"`
	FrameB64    string    `json:"frame_b64,omitempty"`
}

// ZoneState is the aggregate mutable record for one zone. Owned exclusively
// by the store; all mutation goes through store accessors.
type ZoneState struct {
	Config            ZoneConfig        `json:"config"`
	Risk              RiskScore         `json:"risk"`
	Environmental     EnvironmentalData `json:"environmental"`
	LiveMonitorJobID  string            `json:"live_monitor_job_id,omitempty"`
	LiveDigestJobID   string            `json:"live_digest_job_id,omitempty"`
	DigestNarrative   string            `json:"digest_narrative,omitempty"`
	DigestNarrativeAt time.Time         `json:"digest_narrative_at,omitzero"`
	StreamOnline      bool              `json:"stream_online"`
	LastCheckAt       time.Time         `json:"last_check_at,omitzero"`
	Alerts            []AlertEntry      `json:"alerts"`
}

// Budget tracks daily usage against the remote vision API quotas, plus the
// current polling mode.
type Budget struct {
	CheckOnceUsed   int         `json:"check_once_used"`
	LiveMinutesUsed int         `json:"live_minutes_used"`
	Mode            MonitorMode `json:"mode"`
}

// SystemState is the process-wide aggregate: initialization lifecycle, the
// zone map, job accounting, a bounded error log, and the budget record.
type SystemState struct {
	Initialized       bool                  `json:"initialized"`
	StartedAt         time.Time             `json:"started_at,omitzero"`
	Zones             map[string]*ZoneState `json:"zones"`
	ActiveJobCount    int                   `json:"active_job_count"`
	Errors            []string              `json:"errors"`
	Budget            Budget                `json:"budget"`
	ResolvedActionIDs []string              `json:"resolved_action_ids"`
}

// SuggestedAction is a derived patrol recommendation. The ID is deterministic
// (rule slug + zone id) so resolution tracking survives recomputation.
type SuggestedAction struct {
	ID          string         `json:"id"`
	ZoneID      string         `json:"zone_id"`
	Priority    ActionPriority `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	TriggeredBy []FactorKey    `json:"triggered_by"`
	Resolved    bool           `json:"resolved"`
}
