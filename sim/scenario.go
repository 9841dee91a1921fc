package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig is the top-level scenario: building geometry, ignitions,
// population, and run parameters. Loaded from YAML via LoadScenario(path).
type ScenarioConfig struct {
	Name      string             `yaml:"name,omitempty"`
	Building  BuildingConfig     `yaml:"building"`
	Fires     []FireSourceConfig `yaml:"fires,omitempty"`
	Occupants map[int]int        `yaml:"occupants,omitempty"`
	Agents    AgentConfig        `yaml:"agents"`
	DT        float64            `yaml:"dt"`
	MaxTime   float64            `yaml:"max_time,omitempty"` // 0 = run to completion
}

// AgentConfig sets the movement parameters shared by every agent.
type AgentConfig struct {
	Speed  float64 `yaml:"speed"`  // m/s
	Radius float64 `yaml:"radius"` // m
}

// BuildingConfig describes the whole structure.
type BuildingConfig struct {
	GroundFloor int               `yaml:"ground_floor,omitempty"` // 0 = floor 1
	Floors      []FloorConfig     `yaml:"floors"`
	Stairwells  []StairwellConfig `yaml:"stairwells,omitempty"`
}

// FloorConfig describes one level. Points are [x, y] in meters.
type FloorConfig struct {
	Number       int              `yaml:"number"`
	Width        float64          `yaml:"width"`
	Length       float64          `yaml:"length"`
	Capacity     int              `yaml:"capacity,omitempty"`
	Rooms        [][][2]float64   `yaml:"rooms"`
	Doors        []DoorConfig     `yaml:"doors,omitempty"`
	Obstacles    []ObstacleConfig `yaml:"obstacles,omitempty"`
	MainExit     *[2]float64      `yaml:"main_exit,omitempty"`
	BuildingExit [][2]float64     `yaml:"building_exit,omitempty"`
}

// DoorConfig is a passable wall segment. Rooms optionally names the two
// 1-based room indexes the door joins for the smoke model; omitted means
// consecutive rooms by door order.
type DoorConfig struct {
	Segment [2][2]float64 `yaml:"segment"`
	Rooms   *[2]int       `yaml:"rooms,omitempty"`
}

// ObstacleConfig is a static blocker, either a circle or a line.
type ObstacleConfig struct {
	Type   string      `yaml:"type"` // "circle" or "line"
	Center *[2]float64 `yaml:"center,omitempty"`
	Radius float64     `yaml:"radius,omitempty"`
	From   *[2]float64 `yaml:"from,omitempty"`
	To     *[2]float64 `yaml:"to,omitempty"`
}

// StairwellConfig describes one stairwell and its per-floor entry points.
type StairwellConfig struct {
	Floors      []int              `yaml:"floors"`
	Capacity    int                `yaml:"capacity"`
	PassingTime float64            `yaml:"passing_time"`
	Area        [][2]float64       `yaml:"area"`
	Entries     map[int][2]float64 `yaml:"entries"`
}

// LoadScenario reads and parses a scenario file. Unknown fields are
// rejected. Parsing does not validate; call Validate before building.
func LoadScenario(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var cfg ScenarioConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all fields in the scenario are usable.
func (c *ScenarioConfig) Validate() error {
	if c.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.DT)
	}
	if c.MaxTime < 0 {
		return fmt.Errorf("max_time must not be negative, got %f", c.MaxTime)
	}
	if c.Agents.Speed <= 0 {
		return fmt.Errorf("agents.speed must be positive, got %f", c.Agents.Speed)
	}
	if c.Agents.Radius <= 0 {
		return fmt.Errorf("agents.radius must be positive, got %f", c.Agents.Radius)
	}
	if len(c.Building.Floors) == 0 {
		return fmt.Errorf("building requires at least one floor")
	}

	ground := c.Building.GroundFloor
	if ground == 0 {
		ground = 1
	}
	floorNums := make(map[int]int) // number -> room count
	for i, fc := range c.Building.Floors {
		if err := validateFloor(&fc, i); err != nil {
			return err
		}
		if _, dup := floorNums[fc.Number]; dup {
			return fmt.Errorf("floor[%d]: duplicate floor number %d", i, fc.Number)
		}
		floorNums[fc.Number] = len(fc.Rooms)
		if fc.Number == ground && fc.MainExit == nil {
			return fmt.Errorf("floor[%d]: ground floor %d requires main_exit", i, fc.Number)
		}
	}
	if _, ok := floorNums[ground]; !ok {
		return fmt.Errorf("ground floor %d is not defined", ground)
	}

	for i, sc := range c.Building.Stairwells {
		if err := validateStairwell(&sc, i, floorNums); err != nil {
			return err
		}
	}

	for num, count := range c.Occupants {
		if count < 0 {
			return fmt.Errorf("occupants[%d] must not be negative, got %d", num, count)
		}
		if _, ok := floorNums[num]; !ok {
			return fmt.Errorf("occupants[%d]: floor is not defined", num)
		}
	}

	for i, fire := range c.Fires {
		if fire.Room == "" {
			return fmt.Errorf("fire[%d]: room is required", i)
		}
		if fire.StartTime < 0 {
			return fmt.Errorf("fire[%d]: start_time must not be negative, got %f", i, fire.StartTime)
		}
		if fire.GrowthRate < 0 {
			return fmt.Errorf("fire[%d]: growth_rate must not be negative, got %f", i, fire.GrowthRate)
		}
		if fire.MaxHRR < 0 {
			return fmt.Errorf("fire[%d]: max_hrr must not be negative, got %f", i, fire.MaxHRR)
		}
	}
	return nil
}

func validateFloor(fc *FloorConfig, idx int) error {
	prefix := fmt.Sprintf("floor[%d]", idx)
	if fc.Width <= 0 {
		return fmt.Errorf("%s: width must be positive, got %f", prefix, fc.Width)
	}
	if fc.Length <= 0 {
		return fmt.Errorf("%s: length must be positive, got %f", prefix, fc.Length)
	}
	if len(fc.Rooms) == 0 {
		return fmt.Errorf("%s: at least one room required", prefix)
	}
	for j, room := range fc.Rooms {
		if len(room) < 3 {
			return fmt.Errorf("%s: room[%d] needs at least 3 points, got %d", prefix, j, len(room))
		}
	}
	for j, dc := range fc.Doors {
		if dc.Rooms == nil {
			continue
		}
		for _, r := range dc.Rooms {
			if r < 1 || r > len(fc.Rooms) {
				return fmt.Errorf("%s: door[%d] references room %d, have rooms 1..%d",
					prefix, j, r, len(fc.Rooms))
			}
		}
	}
	for j, oc := range fc.Obstacles {
		switch ObstacleKind(oc.Type) {
		case ObstacleCircle:
			if oc.Center == nil || oc.Radius <= 0 {
				return fmt.Errorf("%s: obstacle[%d] circle requires center and positive radius", prefix, j)
			}
		case ObstacleLine:
			if oc.From == nil || oc.To == nil {
				return fmt.Errorf("%s: obstacle[%d] line requires from and to", prefix, j)
			}
		default:
			return fmt.Errorf("%s: obstacle[%d] unknown type %q; valid: circle, line", prefix, j, oc.Type)
		}
	}
	return nil
}

func validateStairwell(sc *StairwellConfig, idx int, floors map[int]int) error {
	prefix := fmt.Sprintf("stairwell[%d]", idx)
	if len(sc.Floors) < 2 {
		return fmt.Errorf("%s: must connect at least 2 floors, got %d", prefix, len(sc.Floors))
	}
	if sc.Capacity <= 0 {
		return fmt.Errorf("%s: capacity must be positive, got %d", prefix, sc.Capacity)
	}
	if sc.PassingTime <= 0 {
		return fmt.Errorf("%s: passing_time must be positive, got %f", prefix, sc.PassingTime)
	}
	if len(sc.Area) < 3 {
		return fmt.Errorf("%s: area needs at least 3 points, got %d", prefix, len(sc.Area))
	}
	for _, num := range sc.Floors {
		if _, ok := floors[num]; !ok {
			return fmt.Errorf("%s: connects floor %d which is not defined", prefix, num)
		}
		if _, ok := sc.Entries[num]; !ok {
			return fmt.Errorf("%s: missing entry position for floor %d", prefix, num)
		}
	}
	return nil
}

// BuildBuilding validates the scenario and constructs the immutable
// building geometry from it.
func BuildBuilding(cfg *ScenarioConfig) (*Building, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	b := NewBuilding()
	if cfg.Building.GroundFloor != 0 {
		b.GroundFloor = cfg.Building.GroundFloor
	}

	for _, fc := range cfg.Building.Floors {
		floor := NewFloor(fc.Number, fc.Width, fc.Length, fc.Capacity)
		for _, room := range fc.Rooms {
			floor.AddRoom(vecs(room))
		}
		for _, dc := range fc.Doors {
			door := Door{P1: vec(dc.Segment[0]), P2: vec(dc.Segment[1])}
			if dc.Rooms != nil {
				door.Rooms = *dc.Rooms
			}
			floor.AddDoor(door)
		}
		for _, oc := range fc.Obstacles {
			switch ObstacleKind(oc.Type) {
			case ObstacleCircle:
				floor.AddObstacle(Obstacle{Kind: ObstacleCircle, Center: vec(*oc.Center), Radius: oc.Radius})
			case ObstacleLine:
				floor.AddObstacle(Obstacle{Kind: ObstacleLine, P1: vec(*oc.From), P2: vec(*oc.To)})
			}
		}
		if fc.MainExit != nil {
			floor.SetMainExit(vec(*fc.MainExit))
		}
		floor.BuildingExit = vecs(fc.BuildingExit)
		b.AddFloor(floor)
	}

	for _, sc := range cfg.Building.Stairwells {
		sw := NewStairwell(sc.Floors, sc.Capacity, sc.PassingTime)
		entries := make(map[int]Vec2, len(sc.Entries))
		for num, p := range sc.Entries {
			entries[num] = vec(p)
		}
		sw.SetGeometry(vecs(sc.Area), entries)
		b.AddStairwell(sw)
	}
	return b, nil
}

func vec(p [2]float64) Vec2 { return Vec2{X: p[0], Y: p[1]} }

func vecs(ps [][2]float64) []Vec2 {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Vec2, len(ps))
	for i, p := range ps {
		out[i] = vec(p)
	}
	return out
}

// DefaultScenario returns the built-in two-floor office scenario: three
// rooms per floor, one stairwell, a ground-floor exit, and a single
// design-case fire in the first-floor corner room.
func DefaultScenario() *ScenarioConfig {
	return &ScenarioConfig{
		Name: "two-floor office",
		Building: BuildingConfig{
			Floors: []FloorConfig{
				{
					Number: 1, Width: 50, Length: 40, Capacity: 200,
					Rooms: [][][2]float64{
						{{0, 0}, {20, 0}, {20, 15}, {0, 15}, {0, 0}},
						{{20, 0}, {35, 0}, {35, 15}, {20, 15}, {20, 0}},
						{{35, 0}, {50, 0}, {50, 40}, {35, 40}, {35, 0}},
					},
					Doors: []DoorConfig{
						{Segment: [2][2]float64{{17, 15}, {19, 15}}},
						{Segment: [2][2]float64{{21, 15}, {23, 15}}},
						{Segment: [2][2]float64{{35, 16}, {35, 20}}},
					},
					Obstacles: []ObstacleConfig{
						{Type: "circle", Center: &[2]float64{10, 30}, Radius: 2},
						{Type: "circle", Center: &[2]float64{20, 30}, Radius: 2},
						{Type: "line", From: &[2]float64{25, 35}, To: &[2]float64{35, 35}},
					},
					MainExit:     &[2]float64{0, 17.5},
					BuildingExit: [][2]float64{{0, 15}, {0, 20}},
				},
				{
					Number: 2, Width: 50, Length: 40, Capacity: 200,
					Rooms: [][][2]float64{
						{{0, 0}, {20, 0}, {20, 15}, {0, 15}, {0, 0}},
						{{20, 0}, {35, 0}, {35, 15}, {20, 15}, {20, 0}},
						{{35, 0}, {50, 0}, {50, 25}, {35, 25}, {35, 0}},
					},
					Doors: []DoorConfig{
						{Segment: [2][2]float64{{17, 15}, {19, 15}}},
						{Segment: [2][2]float64{{21, 15}, {23, 15}}},
						{Segment: [2][2]float64{{35, 16}, {35, 20}}},
					},
					Obstacles: []ObstacleConfig{
						{Type: "line", From: &[2]float64{0, 20}, To: &[2]float64{25, 20}},
						{Type: "line", From: &[2]float64{25, 20}, To: &[2]float64{25, 40}},
						{Type: "line", From: &[2]float64{25, 35}, To: &[2]float64{35, 35}},
					},
				},
			},
			Stairwells: []StairwellConfig{
				{
					Floors:      []int{1, 2},
					Capacity:    50,
					PassingTime: 3.0,
					Area:        [][2]float64{{25, 35}, {35, 35}, {35, 40}, {25, 40}, {25, 35}},
					Entries: map[int][2]float64{
						1: {25, 37.5},
						2: {35, 37.5},
					},
				},
			},
		},
		Fires: []FireSourceConfig{
			{
				Room:       "room_1_1",
				Position:   [2]float64{10, 7.5},
				StartTime:  0,
				GrowthRate: 0.47,
				MaxHRR:     50000,
			},
		},
		Occupants: map[int]int{1: 20, 2: 20},
		Agents:    AgentConfig{Speed: 2.0, Radius: 0.5},
		DT:        0.1,
		MaxTime:   600,
	}
}
