package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// Movement tolerances. Arrival consumes a waypoint; detection gates both
// stairwell admission and building-exit completion.
const (
	arrivalTolerance = 0.5 // m, waypoint reached
	detectDistance   = 2.0 // m, stairwell entry and building exit detection
	repulsionGain    = 0.5 // scales summed neighbor repulsion
	distEpsilon      = 1e-6
)

// Stats is the evacuation progress snapshot returned by Stats().
type Stats struct {
	CurrentTime  float64
	Evacuated    int
	Remaining    int
	MeanEvacTime float64
	MaxEvacTime  float64
}

// Evacuation advances all agents tick by tick: route seeking, waypoint
// following with collision avoidance, stairwell transit, and building-exit
// detection. It reads only the static Building geometry; the fire model
// never feeds back into movement here.
type Evacuation struct {
	Building *Building
	Grids    map[int]*Grid
	Agents   []*Agent // active agents; evacuated ones are removed

	Clock float64
	DT    float64

	EvacuatedCount  int
	EvacuationTimes []float64

	cfg      EvacuationConfig
	agentSeq int
}

// NewEvacuation builds the per-floor occupancy grids and an empty agent
// population for the given building.
func NewEvacuation(b *Building, cfg EvacuationConfig) *Evacuation {
	ev := &Evacuation{
		Building: b,
		Grids:    make(map[int]*Grid),
		DT:       cfg.DT,
		cfg:      cfg,
	}
	for _, num := range b.FloorNumbers() {
		floor := b.Floors[num]
		ev.Grids[num] = BuildGrid(floor)
	}
	return ev
}

// PlaceOccupants creates perFloor[n] agents on floor n, each at a uniform
// random position inside a uniformly chosen room's bounding box, inset half
// a meter from the box edges. Floors are processed in ascending order so a
// fixed rng yields a fixed population.
func (ev *Evacuation) PlaceOccupants(perFloor map[int]int, rng *rand.Rand) {
	floors := make([]int, 0, len(perFloor))
	for n := range perFloor {
		floors = append(floors, n)
	}
	sort.Ints(floors)

	for _, num := range floors {
		floor, ok := ev.Building.Floor(num)
		if !ok || len(floor.Rooms) == 0 {
			logrus.Warnf("cannot place occupants on floor %d: no such floor or no rooms", num)
			continue
		}
		for i := 0; i < perFloor[num]; i++ {
			room := floor.Rooms[rng.Intn(len(floor.Rooms))]
			ev.Agents = append(ev.Agents, &Agent{
				ID:       fmt.Sprintf("agent_%d", ev.agentSeq),
				Position: randomPointInBounds(room, rng),
				Floor:    num,
				Speed:    ev.cfg.AgentSpeed,
				Radius:   ev.cfg.AgentRadius,
			})
			ev.agentSeq++
		}
	}
}

func randomPointInBounds(room []Vec2, rng *rand.Rand) Vec2 {
	min, max := polygonBounds(room)
	return Vec2{
		X: min.X + 0.5 + rng.Float64()*(max.X-min.X-1.0),
		Y: min.Y + 0.5 + rng.Float64()*(max.Y-min.Y-1.0),
	}
}

// Step advances one tick: every active agent in population order, then a
// single pass removing agents that reached the building exit.
func (ev *Evacuation) Step() {
	ev.Clock += ev.DT
	for _, a := range ev.Agents {
		ev.stepAgent(a)
	}
	ev.removeEvacuated()
}

// Complete reports whether the active agent set is empty.
func (ev *Evacuation) Complete() bool { return len(ev.Agents) == 0 }

// Time returns the current simulation time in seconds.
func (ev *Evacuation) Time() float64 { return ev.Clock }

// ActiveCount returns the number of agents still evacuating.
func (ev *Evacuation) ActiveCount() int { return len(ev.Agents) }

// Stats returns the current progress snapshot. Mean and max are over
// completed evacuations only.
func (ev *Evacuation) Stats() Stats {
	st := Stats{
		CurrentTime: ev.Clock,
		Evacuated:   ev.EvacuatedCount,
		Remaining:   len(ev.Agents),
	}
	for _, t := range ev.EvacuationTimes {
		st.MeanEvacTime += t
		if t > st.MaxEvacTime {
			st.MaxEvacTime = t
		}
	}
	if n := len(ev.EvacuationTimes); n > 0 {
		st.MeanEvacTime /= float64(n)
	}
	return st
}

// StalledCount returns the number of active agents with no target. A
// persistent nonzero value means agents cannot route (missing exit or
// stairwell) and will never evacuate.
func (ev *Evacuation) StalledCount() int {
	n := 0
	for _, a := range ev.Agents {
		if a.State() == AgentIdle {
			n++
		}
	}
	return n
}

// stepAgent advances one agent by one tick. Order matters: transit countdown
// first, then route seeking, then arrival handling, then movement.
func (ev *Evacuation) stepAgent(a *Agent) {
	if a.InTransit {
		ev.advanceTransit(a)
		return
	}

	if a.Target == nil {
		ev.seekRoute(a)
		if a.Target == nil {
			return // no route available; retry next tick
		}
	}

	if Dist(*a.Target, a.Position) < arrivalTolerance {
		ev.handleArrival(a)
		return
	}

	dir := a.Target.Sub(a.Position)
	dist := dir.Len()
	var desired Vec2
	if dist > 0 {
		desired = dir.Scale(a.Speed / dist)
	}
	a.Velocity = ev.avoidCollisions(a, desired)
	a.Position = a.Position.Add(a.Velocity.Scale(ev.DT))
}

// advanceTransit counts down a stairwell traversal and, on completion, moves
// the agent to the next floor's stairwell exit and immediately re-seeks a
// route there. Exit always succeeds: capacity models congestion on the
// stairs, not the landing.
func (ev *Evacuation) advanceTransit(a *Agent) {
	a.TransitRemaining -= ev.DT
	if a.TransitRemaining > 0 {
		return
	}
	if a.Stairs == nil {
		return
	}

	a.Stairs.Leave()
	next, ok := a.Stairs.NextFloor(a.Floor, a.Direction)
	if !ok {
		return
	}

	a.Floor = next
	a.InTransit = false
	a.clearRoute()
	if exit, ok := a.Stairs.ExitPosition(next); ok {
		a.Position = exit
	}
	logrus.Debugf("%s left stairwell onto floor %d", a.ID, next)
	ev.seekRoute(a)
}

// seekRoute assigns the agent a fresh route. Above the ground floor the goal
// is the entry of any stairwell leading toward the ground; on the ground
// floor it is the main exit. A failed search leaves the agent without a
// target; it retries next tick.
func (ev *Evacuation) seekRoute(a *Agent) {
	floor, ok := ev.Building.Floor(a.Floor)
	if !ok {
		return
	}
	grid := ev.Grids[a.Floor]
	a.clearRoute()

	if a.Floor != ev.Building.GroundFloor {
		dir := DirDown
		if a.Floor < ev.Building.GroundFloor {
			dir = DirUp
		}
		a.TargetKind = TargetStairs

		for _, stairs := range ev.Building.StairwellsServing(a.Floor) {
			if _, ok := stairs.NextFloor(a.Floor, dir); !ok {
				continue
			}
			entry, ok := stairs.EntryPosition(a.Floor)
			if !ok {
				continue
			}
			if route := FindPath(a.Position, entry, grid); route != nil {
				a.Route = route
				a.advanceRoute()
				a.Stairs = stairs
				a.Direction = dir
				return
			}
		}
		return
	}

	a.TargetKind = TargetExit
	if floor.MainExit == nil {
		return
	}
	if route := FindPath(a.Position, *floor.MainExit, grid); route != nil {
		a.Route = route
		a.advanceRoute()
	}
}

// handleArrival consumes a reached waypoint. At a stairwell-entry waypoint
// the agent attempts admission when within detection range; a full stairwell
// rejects silently and the agent keeps walking its route.
func (ev *Evacuation) handleArrival(a *Agent) {
	if a.TargetKind == TargetStairs {
		for _, stairs := range ev.Building.StairwellsServing(a.Floor) {
			entry, ok := stairs.EntryPosition(a.Floor)
			if !ok || Dist(a.Position, entry) >= detectDistance {
				continue
			}
			a.Stairs = stairs
			if !stairs.Enter() {
				logrus.Debugf("%s rejected by full stairwell on floor %d", a.ID, a.Floor)
				continue
			}
			a.InTransit = true
			a.TransitRemaining = stairs.PassingTime
			a.TransitStart = a.Position
			if next, ok := stairs.NextFloor(a.Floor, a.Direction); ok {
				if exit, ok := stairs.ExitPosition(next); ok {
					a.TransitEnd = exit
				}
			}
			logrus.Debugf("%s entered stairwell on floor %d (%d/%d inside)",
				a.ID, a.Floor, stairs.Occupants(), stairs.Capacity)
			return
		}
		// Not admitted (or not actually at an entry): keep following the
		// route, re-seeking when it is exhausted.
		if !a.advanceRoute() {
			ev.seekRoute(a)
		}
		return
	}

	if !a.advanceRoute() {
		ev.seekRoute(a)
	}
}

// avoidCollisions applies the repulsion rule: every same-floor neighbor
// within twice the collision radius contributes a unit direction away from
// it scaled by 1/(distance+eps); the damped sum is subtracted from the
// desired velocity and the result is clamped to the desired speed.
func (ev *Evacuation) avoidCollisions(a *Agent, desired Vec2) Vec2 {
	var repulsion Vec2
	influence := a.Radius * 2
	for _, other := range ev.Agents {
		if other == a || other.Floor != a.Floor {
			continue
		}
		diff := other.Position.Sub(a.Position)
		d := diff.Len()
		if d >= influence {
			continue
		}
		repulsion = repulsion.Add(diff.Scale(1 / (d + distEpsilon)))
	}

	v := desired.Sub(repulsion.Scale(repulsionGain))
	if speed := v.Len(); speed > a.Speed {
		v = v.Scale(a.Speed / speed)
	}
	return v
}

// removeEvacuated retires agents on the ground floor within detection range
// of the main exit, recording their evacuation times.
func (ev *Evacuation) removeEvacuated() int {
	floor, ok := ev.Building.Floor(ev.Building.GroundFloor)
	if !ok || floor.MainExit == nil {
		return 0
	}

	kept := ev.Agents[:0]
	escaped := 0
	for _, a := range ev.Agents {
		if a.Floor == ev.Building.GroundFloor && !a.Evacuated &&
			Dist(a.Position, *floor.MainExit) < detectDistance {
			a.Evacuated = true
			a.EvacuationTime = ev.Clock
			ev.EvacuationTimes = append(ev.EvacuationTimes, ev.Clock)
			ev.EvacuatedCount++
			escaped++
			logrus.Debugf("%s evacuated at t=%.1fs", a.ID, ev.Clock)
			continue
		}
		kept = append(kept, a)
	}
	ev.Agents = kept
	return escaped
}
