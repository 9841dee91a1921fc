package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp scenario: %v", err)
	}
	return path
}

func TestLoadScenario_ValidYAML(t *testing.T) {
	yaml := `
name: smoke test
building:
  floors:
    - number: 1
      width: 10
      length: 10
      rooms:
        - [[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]
      main_exit: [0, 5]
fires:
  - room: room_1_1
    position: [5, 5]
    start_time: 30
    growth_rate: 0.19
occupants:
  1: 4
agents:
  speed: 1.5
  radius: 0.4
dt: 0.1
max_time: 120
`
	cfg, err := LoadScenario(writeTempYAML(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, "smoke test", cfg.Name)
	require.Len(t, cfg.Building.Floors, 1)
	assert.Equal(t, 1, cfg.Building.Floors[0].Number)
	assert.Equal(t, 10.0, cfg.Building.Floors[0].Width)
	require.NotNil(t, cfg.Building.Floors[0].MainExit)
	assert.Equal(t, [2]float64{0, 5}, *cfg.Building.Floors[0].MainExit)
	require.Len(t, cfg.Fires, 1)
	assert.Equal(t, "room_1_1", cfg.Fires[0].Room)
	assert.Equal(t, 30.0, cfg.Fires[0].StartTime)
	assert.Equal(t, 0.19, cfg.Fires[0].GrowthRate)
	assert.Zero(t, cfg.Fires[0].MaxHRR) // omitted field stays zero for fallback
	assert.Equal(t, map[int]int{1: 4}, cfg.Occupants)
	assert.Equal(t, 1.5, cfg.Agents.Speed)
	assert.Equal(t, 0.1, cfg.DT)
	assert.Equal(t, 120.0, cfg.MaxTime)

	require.NoError(t, cfg.Validate())
}

func TestLoadScenario_NonexistentFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	_, err := LoadScenario(writeTempYAML(t, "{{invalid yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	yaml := `
dt: 0.1
agents:
  speed: 1.5
  radius: 0.4
  mass: 80
building:
  floors: []
`
	_, err := LoadScenario(writeTempYAML(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mass")
}

func TestScenarioConfig_Validate_DefaultScenario(t *testing.T) {
	assert.NoError(t, DefaultScenario().Validate())
}

func TestScenarioConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScenarioConfig)
		wantErr string
	}{
		{
			name:    "zero dt",
			mutate:  func(c *ScenarioConfig) { c.DT = 0 },
			wantErr: "dt must be positive",
		},
		{
			name:    "negative max_time",
			mutate:  func(c *ScenarioConfig) { c.MaxTime = -1 },
			wantErr: "max_time must not be negative",
		},
		{
			name:    "zero agent speed",
			mutate:  func(c *ScenarioConfig) { c.Agents.Speed = 0 },
			wantErr: "agents.speed must be positive",
		},
		{
			name:    "negative agent radius",
			mutate:  func(c *ScenarioConfig) { c.Agents.Radius = -0.5 },
			wantErr: "agents.radius must be positive",
		},
		{
			name:    "no floors",
			mutate:  func(c *ScenarioConfig) { c.Building.Floors = nil },
			wantErr: "at least one floor",
		},
		{
			name:    "zero floor width",
			mutate:  func(c *ScenarioConfig) { c.Building.Floors[0].Width = 0 },
			wantErr: "width must be positive",
		},
		{
			name:    "floor without rooms",
			mutate:  func(c *ScenarioConfig) { c.Building.Floors[1].Rooms = nil },
			wantErr: "at least one room",
		},
		{
			name: "degenerate room polygon",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].Rooms[0] = [][2]float64{{0, 0}, {5, 5}}
			},
			wantErr: "at least 3 points",
		},
		{
			name: "door references missing room",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].Doors[0].Rooms = &[2]int{1, 9}
			},
			wantErr: "references room 9",
		},
		{
			name: "duplicate floor number",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[1].Number = 1
			},
			wantErr: "duplicate floor number 1",
		},
		{
			name: "ground floor without main exit",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].MainExit = nil
			},
			wantErr: "requires main_exit",
		},
		{
			name: "ground floor not defined",
			mutate: func(c *ScenarioConfig) {
				c.Building.GroundFloor = 7
			},
			wantErr: "ground floor 7 is not defined",
		},
		{
			name: "circle obstacle without center",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].Obstacles[0].Center = nil
			},
			wantErr: "circle requires center",
		},
		{
			name: "line obstacle without endpoints",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].Obstacles[2].To = nil
			},
			wantErr: "line requires from and to",
		},
		{
			name: "unknown obstacle type",
			mutate: func(c *ScenarioConfig) {
				c.Building.Floors[0].Obstacles[0].Type = "pillar"
			},
			wantErr: `unknown type "pillar"`,
		},
		{
			name: "stairwell with one floor",
			mutate: func(c *ScenarioConfig) {
				c.Building.Stairwells[0].Floors = []int{1}
			},
			wantErr: "must connect at least 2 floors",
		},
		{
			name: "stairwell zero capacity",
			mutate: func(c *ScenarioConfig) {
				c.Building.Stairwells[0].Capacity = 0
			},
			wantErr: "capacity must be positive",
		},
		{
			name: "stairwell zero passing time",
			mutate: func(c *ScenarioConfig) {
				c.Building.Stairwells[0].PassingTime = 0
			},
			wantErr: "passing_time must be positive",
		},
		{
			name: "stairwell degenerate area",
			mutate: func(c *ScenarioConfig) {
				c.Building.Stairwells[0].Area = [][2]float64{{0, 0}, {1, 1}}
			},
			wantErr: "area needs at least 3 points",
		},
		{
			name: "stairwell serving undefined floor",
			mutate: func(c *ScenarioConfig) {
				c.Building.Stairwells[0].Floors = []int{1, 3}
			},
			wantErr: "connects floor 3 which is not defined",
		},
		{
			name: "stairwell missing entry",
			mutate: func(c *ScenarioConfig) {
				delete(c.Building.Stairwells[0].Entries, 2)
			},
			wantErr: "missing entry position for floor 2",
		},
		{
			name: "negative occupants",
			mutate: func(c *ScenarioConfig) {
				c.Occupants[1] = -4
			},
			wantErr: "must not be negative",
		},
		{
			name: "occupants on undefined floor",
			mutate: func(c *ScenarioConfig) {
				c.Occupants[5] = 10
			},
			wantErr: "occupants[5]: floor is not defined",
		},
		{
			name: "fire without room",
			mutate: func(c *ScenarioConfig) {
				c.Fires[0].Room = ""
			},
			wantErr: "room is required",
		},
		{
			name: "fire with negative start",
			mutate: func(c *ScenarioConfig) {
				c.Fires[0].StartTime = -5
			},
			wantErr: "start_time must not be negative",
		},
		{
			name: "fire with negative growth rate",
			mutate: func(c *ScenarioConfig) {
				c.Fires[0].GrowthRate = -0.1
			},
			wantErr: "growth_rate must not be negative",
		},
		{
			name: "fire with negative max HRR",
			mutate: func(c *ScenarioConfig) {
				c.Fires[0].MaxHRR = -1
			},
			wantErr: "max_hrr must not be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScenario()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildBuilding_DefaultScenario(t *testing.T) {
	cfg := DefaultScenario()
	b, err := BuildBuilding(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, b.GroundFloor)
	assert.Equal(t, []int{1, 2}, b.FloorNumbers())

	ground, ok := b.Floor(1)
	require.True(t, ok)
	assert.Len(t, ground.Rooms, 3)
	assert.Len(t, ground.Doors, 3)
	assert.Len(t, ground.Obstacles, 3)
	require.NotNil(t, ground.MainExit)
	assert.Equal(t, Vec2{X: 0, Y: 17.5}, *ground.MainExit)
	assert.Equal(t, []Vec2{{X: 0, Y: 15}, {X: 0, Y: 20}}, ground.BuildingExit)

	upper, ok := b.Floor(2)
	require.True(t, ok)
	assert.Len(t, upper.Rooms, 3)
	assert.Nil(t, upper.MainExit)

	require.Len(t, b.Stairs, 1)
	sw := b.Stairs[0]
	assert.Equal(t, []int{1, 2}, sw.Floors)
	assert.Equal(t, 50, sw.Capacity)
	assert.Equal(t, 3.0, sw.PassingTime)
	entry, ok := sw.EntryPosition(2)
	require.True(t, ok)
	assert.Equal(t, Vec2{X: 35, Y: 37.5}, entry)
}

func TestBuildBuilding_GroundFloorOverride(t *testing.T) {
	cfg := DefaultScenario()
	cfg.Building.GroundFloor = 2
	cfg.Building.Floors[1].MainExit = &[2]float64{50, 12.5}

	b, err := BuildBuilding(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, b.GroundFloor)
}

func TestBuildBuilding_RejectsInvalidScenario(t *testing.T) {
	cfg := DefaultScenario()
	cfg.DT = 0
	_, err := BuildBuilding(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestDefaultScenario_RoundTripsThroughYAML(t *testing.T) {
	cfg := DefaultScenario()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	loaded, err := LoadScenario(writeTempYAML(t, string(data)))
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, cfg, loaded)
}
