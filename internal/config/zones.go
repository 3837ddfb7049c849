package config

import "shorewatch/internal/types"

// zoneTable lists the candidate beach zones along the LA / Orange County
// coastline. Zones without an active live stream stay disabled; the store
// still seeds a record for them so their configuration is always readable.
//
// Buoy ids are NDBC waverider stations; tide ids are CO-OPS stations (the
// nearest with an anemometer, since waverider buoys carry none).
var zoneTable = []types.ZoneConfig{
	{
		ID:            "santa-monica",
		Name:          "Santa Monica Beach",
		ShortName:     "Santa Monica",
		StreamURL:     "https://www.youtube.com/watch?v=qmE7U1YZPQA",
		Enabled:       true,
		Lat:           34.008,
		Lng:           -118.497,
		BuoyStationID: "46221",
		TideStationID: "9410840",
		MapX:          95,
		MapY:          135,
	},
	{
		ID:            "venice",
		Name:          "Venice Beach",
		ShortName:     "Venice",
		StreamURL:     "https://www.youtube.com/watch?v=RGYlFjV-dtc",
		Enabled:       true,
		Lat:           33.985,
		Lng:           -118.472,
		BuoyStationID: "46221", // shared with Santa Monica
		TideStationID: "9410840",
		MapX:          115,
		MapY:          165,
	},
	{
		ID:            "manhattan",
		Name:          "Manhattan Beach",
		ShortName:     "Manhattan",
		StreamURL:     "https://www.youtube.com/watch?v=D4B4MdxLkQo",
		Enabled:       true,
		Lat:           33.884,
		Lng:           -118.410,
		BuoyStationID: "46221",
		TideStationID: "9410840",
		MapX:          155,
		MapY:          215,
	},
	{
		ID:            "huntington",
		Name:          "Huntington Beach",
		ShortName:     "Huntington",
		Enabled:       false,
		Lat:           33.655,
		Lng:           -117.999,
		BuoyStationID: "46253",
		TideStationID: "9410660",
		MapX:          340,
		MapY:          370,
	},
	{
		ID:            "newport",
		Name:          "Newport Beach",
		ShortName:     "Newport",
		Enabled:       false,
		Lat:           33.593,
		Lng:           -117.881,
		BuoyStationID: "46222",
		TideStationID: "9410580",
		MapX:          390,
		MapY:          405,
	},
	{
		ID:            "laguna",
		Name:          "Laguna Beach",
		ShortName:     "Laguna",
		Enabled:       false,
		Lat:           33.542,
		Lng:           -117.783,
		BuoyStationID: "46222", // shared with Newport
		TideStationID: "9410580",
		MapX:          430,
		MapY:          440,
	},
}

// Zones returns the static zone configuration table.
func Zones() []types.ZoneConfig {
	out := make([]types.ZoneConfig, len(zoneTable))
	copy(out, zoneTable)
	return out
}

// Vision condition prompts, tuned sensitive for maximum detection.
const (
	// ConditionCrowd is the primary continuous-monitor condition.
	ConditionCrowd = "Are there any people visible on the beach or near the water? Even a single person counts."
	// ConditionSwimmers targets people in the water.
	ConditionSwimmers = "Is anyone in or near the ocean water? Look for any person wading, swimming, or standing in the surf."
	// ConditionEmergency targets emergency response activity.
	ConditionEmergency = "Are there any emergency vehicles, lifeguard trucks, or personnel in uniform visible?"
)
