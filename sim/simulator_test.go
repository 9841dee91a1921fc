package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evacsim/evacsim/sim/trace"
)

// singleFloorScenario is the smallest runnable building: one room on the
// ground floor with a door to open space and the main exit beyond it.
func singleFloorScenario(occupants int) *ScenarioConfig {
	return &ScenarioConfig{
		Name: "single floor",
		Building: BuildingConfig{
			Floors: []FloorConfig{
				{
					Number: 1, Width: 10, Length: 10,
					Rooms: [][][2]float64{
						{{0, 0}, {10, 0}, {10, 5}, {0, 5}, {0, 0}},
					},
					Doors: []DoorConfig{
						{Segment: [2][2]float64{{4, 5}, {6, 5}}},
					},
					MainExit: &[2]float64{5, 8},
				},
			},
		},
		Occupants: map[int]int{1: occupants},
		Agents:    AgentConfig{Speed: 2.0, Radius: 0.5},
		DT:        0.1,
	}
}

func TestNewSimulator_BuildsSubsystems(t *testing.T) {
	s, err := NewSimulator(DefaultScenario(), 42)
	require.NoError(t, err)

	assert.NotNil(t, s.Building)
	assert.NotNil(t, s.Evacuation)
	assert.NotNil(t, s.Fire)
	assert.Len(t, s.Evacuation.Agents, 40)
	assert.Equal(t, 40, s.Metrics.TotalAgents)
	assert.Equal(t, 0.1, s.DT)
	assert.Equal(t, 600.0, s.MaxTime)
	assert.Equal(t, int64(10), s.TraceInterval)

	require.Len(t, s.Fire.Sources, 1)
	assert.Equal(t, 0.47, s.Fire.Sources[0].GrowthRate)
	assert.Equal(t, 50000.0, s.Fire.Sources[0].MaxHRR)
}

func TestNewSimulator_InvalidScenario(t *testing.T) {
	cfg := DefaultScenario()
	cfg.DT = 0
	_, err := NewSimulator(cfg, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestNewSimulator_UnknownFireZone(t *testing.T) {
	cfg := singleFloorScenario(1)
	cfg.Fires = []FireSourceConfig{{Room: "room_9_1", Position: [2]float64{1, 1}}}

	_, err := NewSimulator(cfg, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fire[0]: unknown zone "room_9_1"`)
}

func TestNewSimulator_FireParameterFallbacks(t *testing.T) {
	cfg := singleFloorScenario(1)
	cfg.Fires = []FireSourceConfig{
		{Room: "room_1_1", Position: [2]float64{5, 2.5}},
		{Room: "room_1_1", Position: [2]float64{6, 2.5}, GrowthRate: 0.19, MaxHRR: 1000},
	}

	s, err := NewSimulator(cfg, 42)
	require.NoError(t, err)
	require.Len(t, s.Fire.Sources, 2)

	assert.Equal(t, 0.47, s.Fire.Sources[0].GrowthRate)
	assert.Equal(t, 5000.0, s.Fire.Sources[0].MaxHRR)
	assert.Equal(t, 0.19, s.Fire.Sources[1].GrowthRate)
	assert.Equal(t, 1000.0, s.Fire.Sources[1].MaxHRR)
}

func TestSimulator_StepAdvancesBothSubsystems(t *testing.T) {
	s, err := NewSimulator(singleFloorScenario(1), 42)
	require.NoError(t, err)

	s.Step()

	assert.Equal(t, int64(1), s.Tick)
	assert.InDelta(t, 0.1, s.Clock, 1e-12)
	assert.InDelta(t, 0.1, s.Evacuation.Time(), 1e-12)
	assert.InDelta(t, 0.1, s.Fire.Clock, 1e-12)
}

func TestSimulator_PartialStepsLeaveSimulatorClock(t *testing.T) {
	s, err := NewSimulator(singleFloorScenario(1), 42)
	require.NoError(t, err)

	s.StepEvacuation()
	s.StepFire()

	assert.Zero(t, s.Tick)
	assert.Zero(t, s.Clock)
	assert.InDelta(t, 0.1, s.Evacuation.Time(), 1e-12)
	assert.InDelta(t, 0.1, s.Fire.Clock, 1e-12)
}

func TestSimulator_RunEvacuatesEveryone(t *testing.T) {
	s, err := NewSimulator(singleFloorScenario(2), 42)
	require.NoError(t, err)

	s.Run()

	assert.Equal(t, 2, s.Metrics.Evacuated)
	assert.Zero(t, s.Metrics.Remaining)
	assert.Zero(t, s.Metrics.Stalled)
	assert.Greater(t, s.Metrics.SimTime, 0.0)
	assert.Greater(t, s.Metrics.Ticks, int64(0))

	require.Len(t, s.Metrics.EvacuationTimes, 2)
	assert.LessOrEqual(t, s.Metrics.EvacuationTimes[0], s.Metrics.EvacuationTimes[1])
}

func TestSimulator_RunStopsAtHorizon(t *testing.T) {
	cfg := singleFloorScenario(2)
	cfg.Agents.Speed = 0.05 // too slow to reach the exit in time
	cfg.MaxTime = 2.0

	s, err := NewSimulator(cfg, 42)
	require.NoError(t, err)
	s.Run()

	assert.Zero(t, s.Metrics.Evacuated)
	assert.Equal(t, 2, s.Metrics.Remaining)
	assert.InDelta(t, 2.0, s.Metrics.SimTime, 0.15)
}

func TestSimulator_RunEndsWhenNoRoutesExist(t *testing.T) {
	// Occupants on an upper floor with no stairwell can never route down.
	cfg := singleFloorScenario(0)
	cfg.Building.Floors = append(cfg.Building.Floors, FloorConfig{
		Number: 2, Width: 10, Length: 10,
		Rooms: [][][2]float64{
			{{0, 0}, {10, 0}, {10, 5}, {0, 5}, {0, 0}},
		},
	})
	cfg.Occupants = map[int]int{2: 3}

	s, err := NewSimulator(cfg, 42)
	require.NoError(t, err)
	s.Run()

	assert.Equal(t, int64(1), s.Metrics.Ticks)
	assert.Zero(t, s.Metrics.Evacuated)
	assert.Equal(t, 3, s.Metrics.Remaining)
	assert.Equal(t, 3, s.Metrics.Stalled)
}

func TestSimulator_Determinism(t *testing.T) {
	scenario := func() *ScenarioConfig {
		cfg := DefaultScenario()
		cfg.Occupants = map[int]int{1: 6, 2: 6}
		cfg.MaxTime = 120
		return cfg
	}

	s1, err := NewSimulator(scenario(), 7)
	require.NoError(t, err)
	s2, err := NewSimulator(scenario(), 7)
	require.NoError(t, err)

	s1.Run()
	s2.Run()

	assert.Equal(t, s1.Metrics.Evacuated, s2.Metrics.Evacuated, "determinism broken: evacuated")
	assert.Equal(t, s1.Metrics.Ticks, s2.Metrics.Ticks, "determinism broken: ticks")
	assert.Equal(t, s1.Metrics.EvacuationTimes, s2.Metrics.EvacuationTimes, "determinism broken: evacuation times")

	require.Equal(t, len(s1.Evacuation.Agents), len(s2.Evacuation.Agents))
	for i, a := range s1.Evacuation.Agents {
		b := s2.Evacuation.Agents[i]
		assert.Equal(t, a.Position, b.Position, "determinism broken: agent %d position", i)
		assert.Equal(t, a.Floor, b.Floor, "determinism broken: agent %d floor", i)
	}
}

func TestSimulator_SeedChangesPlacement(t *testing.T) {
	s1, err := NewSimulator(DefaultScenario(), 1)
	require.NoError(t, err)
	s2, err := NewSimulator(DefaultScenario(), 2)
	require.NoError(t, err)

	same := true
	for i, a := range s1.Evacuation.Agents {
		if a.Position != s2.Evacuation.Agents[i].Position {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds produced identical placements")
}

func TestSimulator_TraceCadence(t *testing.T) {
	cfg := singleFloorScenario(1)
	cfg.Agents.Speed = 0.05 // keep the agent inside for the whole window
	cfg.Fires = []FireSourceConfig{{Room: "room_1_1", Position: [2]float64{5, 2.5}}}

	s, err := NewSimulator(cfg, 42)
	require.NoError(t, err)
	s.Trace = trace.NewRunTrace(cfg.Name, 42)

	for i := 0; i < 25; i++ {
		s.Step()
	}

	// Records land on ticks 10 and 20 only.
	require.Len(t, s.Trace.Evac, 2)
	assert.InDelta(t, 1.0, s.Trace.Evac[0].Time, 1e-9)
	assert.InDelta(t, 2.0, s.Trace.Evac[1].Time, 1e-9)
	assert.Equal(t, 1, s.Trace.Evac[0].Remaining)
	assert.Zero(t, s.Trace.Evac[0].InTransit)

	// The only zone holds a source, so it is recorded on the same cadence.
	require.Len(t, s.Trace.Zones, 2)
	assert.Equal(t, "room_1_1", s.Trace.Zones[0].Zone)
	assert.Greater(t, s.Trace.Zones[1].HeatReleaseRate, 0.0)
}

func TestSimulator_NoTraceByDefault(t *testing.T) {
	s, err := NewSimulator(singleFloorScenario(1), 42)
	require.NoError(t, err)

	// Without an attached trace, stepping must not panic.
	for i := 0; i < 12; i++ {
		s.Step()
	}
	assert.Nil(t, s.Trace)
}
