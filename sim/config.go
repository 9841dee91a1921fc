package sim

// EvacuationConfig groups per-agent movement parameters for NewEvacuation.
type EvacuationConfig struct {
	AgentSpeed  float64 // desired walking speed, m/s (must be > 0)
	AgentRadius float64 // collision radius, m (must be > 0)
	DT          float64 // tick duration, s (must be > 0)
}

// SimulationConfig groups run-level knobs for NewSimulator.
type SimulationConfig struct {
	DT      float64 // tick duration, s (must be > 0)
	MaxTime float64 // simulated horizon, s; 0 = run until evacuation completes
}

// FireSourceConfig describes one configured ignition.
type FireSourceConfig struct {
	Room       string     `yaml:"room"`                  // zone id, e.g. "room_1_1"
	Position   [2]float64 `yaml:"position"`              // world coordinates, m
	StartTime  float64    `yaml:"start_time"`            // s from simulation start
	GrowthRate float64    `yaml:"growth_rate,omitempty"` // kW/s², 0 = default
	MaxHRR     float64    `yaml:"max_hrr,omitempty"`     // kW, 0 = default
}

// Fallback fire parameters for configured ignitions that omit them. Distinct
// from the NewFireSource defaults: these describe a design-case fire.
const (
	configGrowthRate = 0.47   // kW/s²
	configMaxHRR     = 5000.0 // kW
)
