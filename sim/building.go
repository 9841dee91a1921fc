package sim

import "sort"

// Direction of travel through a stairwell, relative to floor numbering.
type Direction string

const (
	DirDown Direction = "down"
	DirUp   Direction = "up"
)

// ObstacleKind distinguishes the two obstacle shapes a floor can carry.
type ObstacleKind string

const (
	ObstacleCircle ObstacleKind = "circle"
	ObstacleLine   ObstacleKind = "line"
)

// Obstacle is a static blocker on a floor. Circle obstacles use Center and
// Radius; line obstacles use P1 and P2.
type Obstacle struct {
	Kind   ObstacleKind
	Center Vec2
	Radius float64
	P1     Vec2
	P2     Vec2
}

// Door is a passable segment in a room wall. Rooms optionally names the
// 1-based indices of the two rooms the door connects for the smoke model;
// a zero value means "infer from door order" (door k joins rooms k+1, k+2).
type Door struct {
	P1    Vec2
	P2    Vec2
	Rooms [2]int
}

// Floor holds the static geometry of one building level. All coordinates
// are meters in the floor's own plan frame. Immutable after scenario build.
type Floor struct {
	Number   int
	Width    float64 // extent along X
	Length   float64 // extent along Y
	Capacity int     // design occupant capacity, informational

	Rooms        [][]Vec2   // closed boundary polygons
	Doors        []Door     // passable wall segments
	Obstacles    []Obstacle // circles and line barriers
	MainExit     *Vec2      // evacuation goal; ground floor only
	BuildingExit []Vec2     // exterior exit segment, informational
}

// NewFloor creates an empty floor of the given dimensions.
func NewFloor(number int, width, length float64, capacity int) *Floor {
	return &Floor{Number: number, Width: width, Length: length, Capacity: capacity}
}

// AddRoom appends a room boundary polygon.
func (f *Floor) AddRoom(boundary []Vec2) {
	f.Rooms = append(f.Rooms, boundary)
}

// AddDoor appends a door segment.
func (f *Floor) AddDoor(d Door) {
	f.Doors = append(f.Doors, d)
}

// AddObstacle appends a static obstacle.
func (f *Floor) AddObstacle(o Obstacle) {
	f.Obstacles = append(f.Obstacles, o)
}

// SetMainExit designates the evacuation goal position on this floor.
func (f *Floor) SetMainExit(p Vec2) {
	f.MainExit = &p
}

// RoomContaining returns the index of the room whose polygon contains p,
// falling back to the room with the nearest vertex-mean centroid. Returns
// -1 when the floor has no rooms.
func (f *Floor) RoomContaining(p Vec2) int {
	for i, room := range f.Rooms {
		if pointInPolygon(p, room) {
			return i
		}
	}
	best, bestDist := -1, 0.0
	for i, room := range f.Rooms {
		d := Dist(p, polygonCentroid(room))
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Stairwell is the sole inter-floor transition mechanism: a capacity-limited
// channel with a fixed traversal time. Entry and exit share the same position
// per floor. The occupant count is the only mutable state.
type Stairwell struct {
	Floors      []int        // connected floor numbers, ascending
	Capacity    int          // max simultaneous occupants
	PassingTime float64      // fixed traversal duration, seconds
	Area        []Vec2       // shaft footprint polygon
	Entries     map[int]Vec2 // per-floor entry/exit position

	occupants int
}

// NewStairwell creates a stairwell connecting the given floors. The floor
// list is copied and sorted ascending.
func NewStairwell(floors []int, capacity int, passingTime float64) *Stairwell {
	fs := append([]int(nil), floors...)
	sort.Ints(fs)
	return &Stairwell{
		Floors:      fs,
		Capacity:    capacity,
		PassingTime: passingTime,
		Entries:     make(map[int]Vec2),
	}
}

// SetGeometry assigns the shaft footprint and per-floor entry positions.
func (s *Stairwell) SetGeometry(area []Vec2, entries map[int]Vec2) {
	s.Area = area
	s.Entries = entries
}

// EntryPosition returns the entry point on the given floor.
func (s *Stairwell) EntryPosition(floor int) (Vec2, bool) {
	p, ok := s.Entries[floor]
	return p, ok
}

// ExitPosition returns the exit point on the given floor. Entry and exit
// coincide in this model.
func (s *Stairwell) ExitPosition(floor int) (Vec2, bool) {
	return s.EntryPosition(floor)
}

// CanTraverse reports whether the stairwell connects the two distinct floors.
func (s *Stairwell) CanTraverse(from, to int) bool {
	return from != to && s.serves(from) && s.serves(to)
}

// NextFloor returns the adjacent connected floor in the given direction.
func (s *Stairwell) NextFloor(current int, dir Direction) (int, bool) {
	idx := -1
	for i, f := range s.Floors {
		if f == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	switch dir {
	case DirDown:
		if idx > 0 {
			return s.Floors[idx-1], true
		}
	case DirUp:
		if idx < len(s.Floors)-1 {
			return s.Floors[idx+1], true
		}
	}
	return 0, false
}

// IsFull reports whether the stairwell is at capacity.
func (s *Stairwell) IsFull() bool {
	return s.occupants >= s.Capacity
}

// Enter admits one occupant. Returns false without mutation when full.
func (s *Stairwell) Enter() bool {
	if s.IsFull() {
		return false
	}
	s.occupants++
	return true
}

// Leave releases one occupant. Returns false when already empty.
func (s *Stairwell) Leave() bool {
	if s.occupants <= 0 {
		return false
	}
	s.occupants--
	return true
}

// Occupants returns the current occupant count.
func (s *Stairwell) Occupants() int { return s.occupants }

func (s *Stairwell) serves(floor int) bool {
	for _, f := range s.Floors {
		if f == floor {
			return true
		}
	}
	return false
}

// Building is the static geometry shared by both simulation subsystems.
// Stairwells are kept in a slice so per-tick iteration order is the
// declaration order, never map order.
type Building struct {
	Floors      map[int]*Floor
	Stairs      []*Stairwell
	GroundFloor int // floor number agents evacuate from
}

// NewBuilding creates an empty building with ground floor 1.
func NewBuilding() *Building {
	return &Building{Floors: make(map[int]*Floor), GroundFloor: 1}
}

// AddFloor registers a floor, replacing any floor with the same number.
func (b *Building) AddFloor(f *Floor) {
	b.Floors[f.Number] = f
}

// AddStairwell appends a stairwell. Order of addition is the order used
// for route selection and zone construction.
func (b *Building) AddStairwell(s *Stairwell) {
	b.Stairs = append(b.Stairs, s)
}

// Floor returns the floor with the given number.
func (b *Building) Floor(number int) (*Floor, bool) {
	f, ok := b.Floors[number]
	return f, ok
}

// FloorNumbers returns all floor numbers in ascending order.
func (b *Building) FloorNumbers() []int {
	nums := make([]int, 0, len(b.Floors))
	for n := range b.Floors {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// StairwellsServing returns the stairwells connected to the given floor,
// in declaration order.
func (b *Building) StairwellsServing(floor int) []*Stairwell {
	var out []*Stairwell
	for _, s := range b.Stairs {
		if s.serves(floor) {
			out = append(out, s)
		}
	}
	return out
}

// StairwellBetween returns the first stairwell connecting the two floors.
func (b *Building) StairwellBetween(a, c int) (*Stairwell, bool) {
	for _, s := range b.Stairs {
		if s.CanTraverse(a, c) {
			return s, true
		}
	}
	return nil, false
}
