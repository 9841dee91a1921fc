// Package sim provides the core fixed-timestep simulation engine for evacsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - building.go: Static geometry (floors, rooms, doors, stairwells) and occupancy
//   - evacuation.go: The agent stepper (routing, stair transit, collision avoidance)
//   - simulator.go: The tick loop that drives evacuation and fire in lockstep
//
// # Architecture
//
// Two independent subsystems share the static building geometry:
//   - Evacuation: per-floor occupancy grids (grid.go), A* routing
//     (pathfinder.go), and agents (agent.go) seeking stairs and exits
//   - Fire: two-layer smoke zones (zone.go), vent connections
//     (connection.go), and t-squared fire sources (fire.go)
//
// Neither subsystem reads the other's state; Simulator.Step advances both on
// the same clock. Scenarios are YAML (scenario.go) validated and compiled
// into a Building, with the original two-floor demo available as
// DefaultScenario.
//
// Sub-packages:
//   - sim/trace/: run-trace recording (pure record types, zstd JSONL files)
package sim
