// Package trace provides run-trace recording for evacuation and smoke-spread
// analysis. This package has no dependencies on sim/; it stores pure data types.
package trace

// EvacRecord captures evacuation progress at one point in simulated time.
type EvacRecord struct {
	Time      float64 `json:"time"`
	Evacuated int     `json:"evacuated"`
	Remaining int     `json:"remaining"`
	InTransit int     `json:"in_transit,omitempty"`
}

// ZoneRecord captures one smoke zone's state at one point in simulated time.
// Temperatures are in degrees Celsius, heights in meters, heat release in kilowatts.
type ZoneRecord struct {
	Time            float64 `json:"time"`
	Zone            string  `json:"zone"`
	HotLayerTemp    float64 `json:"hot_layer_temp"`
	ColdLayerTemp   float64 `json:"cold_layer_temp"`
	SmokeHeight     float64 `json:"smoke_height"`
	InterfaceHeight float64 `json:"interface_height"`
	HeatReleaseRate float64 `json:"hrr"`
}
