// Package actions derives suggested patrol actions from a zone's current risk
// factors via a prioritized rule table. Action IDs are deterministic (rule
// slug + zone id) so that resolution tracking in the store survives
// recomputation.
package actions

import (
	"fmt"

	"shorewatch/internal/types"
)

// rule is one entry in the action table. Rules are evaluated in declaration
// order (urgent first, then warning, then info); every matching rule yields
// one action. Multiple rules may fire simultaneously -- de-duplication by
// similarity is a presentation concern, not handled here.
type rule struct {
	slug        string
	priority    types.ActionPriority
	title       string
	description string
	icon        string
	triggeredBy []types.FactorKey
	match       func(types.RiskFactors) bool
}

var ruleTable = []rule{
	// Urgent
	{
		slug:     "emergency-activity",
		priority: types.PriorityUrgent,
		title:    "Emergency Activity Detected",
		description: "Emergency vehicles or personnel visible in zone. " +
			"Contact zone lifeguard captain immediately.",
		icon:        "🚨",
		triggeredBy: []types.FactorKey{types.FactorEmergency},
		match:       func(f types.RiskFactors) bool { return f.EmergencyVehiclesVisible },
	},
	{
		slug:     "swimmers-dangerous-surf",
		priority: types.PriorityUrgent,
		title:    "Swimmers in Dangerous Surf",
		description: "Active swimmers detected with high wave conditions. Consider " +
			"posting red flag and deploying additional water safety personnel.",
		icon:        "🏊",
		triggeredBy: []types.FactorKey{types.FactorSwimmers, types.FactorHighWaves},
		match:       func(f types.RiskFactors) bool { return f.SwimmersDetected && f.HighWaveHeight },
	},
	{
		slug:     "swimmers-extreme-tide",
		priority: types.PriorityUrgent,
		title:    "Swimmers in Extreme Tide",
		description: "Swimmers detected during extreme tide conditions. Increased rip " +
			"current risk. Consider restricting water access.",
		icon:        "🌊",
		triggeredBy: []types.FactorKey{types.FactorSwimmers, types.FactorExtremeTid},
		match:       func(f types.RiskFactors) bool { return f.SwimmersDetected && f.ExtremeTide },
	},

	// Warning
	{
		slug:     "crowd-strong-wind",
		priority: types.PriorityWarning,
		title:    "High Crowd + Strong Wind Advisory",
		description: "Large crowd near waterline combined with strong winds. Increase " +
			"patrol frequency and monitor for wind-related hazards.",
		icon:        "💨",
		triggeredBy: []types.FactorKey{types.FactorCrowd, types.FactorStrongWind},
		match:       func(f types.RiskFactors) bool { return f.HighCrowdNearWaterline && f.StrongWind },
	},
	{
		slug:     "crowd-high-surf",
		priority: types.PriorityWarning,
		title:    "Crowded Beach + High Surf",
		description: "Heavy crowd activity near waterline during high surf. Pre-position " +
			"rescue equipment and increase visual surveillance.",
		icon:        "🏖",
		triggeredBy: []types.FactorKey{types.FactorCrowd, types.FactorHighWaves},
		match:       func(f types.RiskFactors) bool { return f.HighCrowdNearWaterline && f.HighWaveHeight },
	},
	{
		slug:     "active-swimmers",
		priority: types.PriorityWarning,
		title:    "Active Swimmers Detected",
		description: "People observed swimming in the ocean. Maintain continuous visual " +
			"surveillance of water area.",
		icon:        "🛁",
		triggeredBy: []types.FactorKey{types.FactorSwimmers},
		match:       func(f types.RiskFactors) bool { return f.SwimmersDetected },
	},
	{
		slug:     "crowded-waterline",
		priority: types.PriorityWarning,
		title:    "Crowded Waterline",
		description: "Significant crowd activity near the waterline. Maintain elevated " +
			"patrol presence.",
		icon:        "👥",
		triggeredBy: []types.FactorKey{types.FactorCrowd},
		match:       func(f types.RiskFactors) bool { return f.HighCrowdNearWaterline },
	},

	// Info
	{
		slug:     "high-surf-advisory",
		priority: types.PriorityInfo,
		title:    "High Surf Advisory",
		description: "Wave height exceeds safety threshold. Monitor conditions and " +
			"prepare for potential beach advisories.",
		icon:        "🌊",
		triggeredBy: []types.FactorKey{types.FactorHighWaves},
		match:       func(f types.RiskFactors) bool { return f.HighWaveHeight },
	},
	{
		slug:     "extreme-tide-advisory",
		priority: types.PriorityInfo,
		title:    "Extreme Tide Conditions",
		description: "Tide level significantly deviates from mean. Watch for enhanced " +
			"rip currents and shoreline changes.",
		icon:        "🌙",
		triggeredBy: []types.FactorKey{types.FactorExtremeTid},
		match:       func(f types.RiskFactors) bool { return f.ExtremeTide },
	},
	{
		slug:     "strong-wind-advisory",
		priority: types.PriorityInfo,
		title:    "Strong Wind Advisory",
		description: "Wind speeds elevated. Monitor for wind-driven debris and " +
			"challenging surf conditions.",
		icon:        "🌬",
		triggeredBy: []types.FactorKey{types.FactorStrongWind},
		match:       func(f types.RiskFactors) bool { return f.StrongWind },
	},
}

// Generate returns the suggested actions for a zone, in priority order
// (urgent, then warning, then info). For a fixed zone id and factor set the
// returned IDs are stable across calls.
func Generate(zoneID string, factors types.RiskFactors) []types.SuggestedAction {
	var out []types.SuggestedAction
	for _, r := range ruleTable {
		if !r.match(factors) {
			continue
		}
		out = append(out, types.SuggestedAction{
			ID:          fmt.Sprintf("%s:%s", r.slug, zoneID),
			ZoneID:      zoneID,
			Priority:    r.priority,
			Title:       r.title,
			Description: r.description,
			Icon:        r.icon,
			TriggeredBy: r.triggeredBy,
		})
	}
	return out
}

// HighestPriority returns the most urgent tier present in the action list.
// The boolean is false when the list is empty.
func HighestPriority(list []types.SuggestedAction) (types.ActionPriority, bool) {
	if len(list) == 0 {
		return "", false
	}
	for _, tier := range []types.ActionPriority{types.PriorityUrgent, types.PriorityWarning} {
		for _, a := range list {
			if a.Priority == tier {
				return tier, true
			}
		}
	}
	return types.PriorityInfo, true
}
