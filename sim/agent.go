package sim

// TargetKind classifies what an agent's current route leads to.
type TargetKind string

const (
	TargetStairs TargetKind = "stairs"
	TargetExit   TargetKind = "exit"
)

// AgentState is the derived lifecycle state of an agent. Exactly one state
// holds at any instant; State() derives it from the underlying fields so the
// states cannot drift out of sync with behavior.
type AgentState string

const (
	AgentIdle      AgentState = "idle"       // no target, will seek a route
	AgentMoving    AgentState = "moving"     // following a route
	AgentAtEntry   AgentState = "at_entry"   // within stairwell detection range
	AgentInTransit AgentState = "in_transit" // inside a stairwell
	AgentEvacuated AgentState = "evacuated"  // reached the building exit
)

// Agent is one evacuating occupant.
type Agent struct {
	ID       string
	Position Vec2
	Velocity Vec2
	Floor    int
	Speed    float64 // desired walking speed, m/s
	Radius   float64 // collision radius, m

	Route      []Vec2     // remaining waypoints, consumed front-to-back
	Target     *Vec2      // current waypoint; nil = no route
	TargetKind TargetKind // what the route leads to; empty before first routing

	InTransit        bool
	TransitRemaining float64 // seconds left inside the stairwell
	TransitStart     Vec2
	TransitEnd       Vec2
	Stairs           *Stairwell // stairwell in use or being approached
	Direction        Direction  // travel direction toward the ground floor

	Evacuated      bool
	EvacuationTime float64
}

// State derives the agent's lifecycle state.
func (a *Agent) State() AgentState {
	switch {
	case a.Evacuated:
		return AgentEvacuated
	case a.InTransit:
		return AgentInTransit
	case a.Target == nil:
		return AgentIdle
	case a.TargetKind == TargetStairs && a.Stairs != nil && a.atStairEntry():
		return AgentAtEntry
	default:
		return AgentMoving
	}
}

func (a *Agent) atStairEntry() bool {
	entry, ok := a.Stairs.EntryPosition(a.Floor)
	return ok && Dist(a.Position, entry) < detectDistance
}

// advanceRoute pops the next waypoint into Target. Returns false when the
// route is exhausted (Target is then nil).
func (a *Agent) advanceRoute() bool {
	if len(a.Route) == 0 {
		a.Target = nil
		return false
	}
	wp := a.Route[0]
	a.Route = a.Route[1:]
	a.Target = &wp
	return true
}

// clearRoute resets all routing state, leaving transit state untouched.
func (a *Agent) clearRoute() {
	a.Route = nil
	a.Target = nil
}

// TransitPosition returns the agent's display position while in transit: a
// linear blend from the recorded entry to the exit position by elapsed
// fraction of the stairwell's passing time. Movement physics never reads
// this.
func (a *Agent) TransitPosition() Vec2 {
	if !a.InTransit || a.Stairs == nil || a.Stairs.PassingTime <= 0 {
		return a.Position
	}
	frac := 1 - a.TransitRemaining/a.Stairs.PassingTime
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return a.TransitStart.Add(a.TransitEnd.Sub(a.TransitStart).Scale(frac))
}
