// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/evacsim/evacsim/sim/trace"
)

// progressLogInterval is the number of ticks between Info-level progress
// lines during Run.
const progressLogInterval = 100

// Simulator is the core object that holds simulation time and both
// subsystems: the evacuation stepper and the fire/smoke model. The two share
// only the static building geometry and never read each other's state, so
// StepEvacuation and StepFire can also be driven independently. Run advances
// them in lockstep on a fixed timestep.
type Simulator struct {
	Scenario   *ScenarioConfig
	Building   *Building
	Evacuation *Evacuation
	Fire       *FireModel
	Metrics    *Metrics

	Clock   float64 // simulated seconds
	Tick    int64
	DT      float64
	MaxTime float64 // 0 = run until evacuation completes

	// Trace, when non-nil, receives evacuation and zone records every
	// TraceInterval ticks.
	Trace         *trace.RunTrace
	TraceInterval int64

	rng *PartitionedRNG
}

// NewSimulator builds the full simulation from a scenario and a seed:
// building geometry, per-floor occupancy grids, the zone graph, configured
// fire sources, and the seeded initial population.
func NewSimulator(scenario *ScenarioConfig, seed int64) (*Simulator, error) {
	building, err := BuildBuilding(scenario)
	if err != nil {
		return nil, err
	}

	ev := NewEvacuation(building, EvacuationConfig{
		AgentSpeed:  scenario.Agents.Speed,
		AgentRadius: scenario.Agents.Radius,
		DT:          scenario.DT,
	})

	fire := NewFireModel(building)
	for i, fc := range scenario.Fires {
		src := fire.AddFireSource(fc.Room, vec(fc.Position), fc.StartTime)
		if src == nil {
			return nil, fmt.Errorf("fire[%d]: unknown zone %q", i, fc.Room)
		}
		if fc.GrowthRate > 0 {
			src.GrowthRate = fc.GrowthRate
		} else {
			src.GrowthRate = configGrowthRate
		}
		if fc.MaxHRR > 0 {
			src.MaxHRR = fc.MaxHRR
		} else {
			src.MaxHRR = configMaxHRR
		}
	}

	s := &Simulator{
		Scenario:      scenario,
		Building:      building,
		Evacuation:    ev,
		Fire:          fire,
		Metrics:       &Metrics{},
		DT:            scenario.DT,
		MaxTime:       scenario.MaxTime,
		TraceInterval: 10,
		rng:           NewPartitionedRNG(NewSimulationKey(seed)),
	}
	ev.PlaceOccupants(scenario.Occupants, s.rng.ForSubsystem(SubsystemPlacement))
	s.Metrics.TotalAgents = len(ev.Agents)
	return s, nil
}

// Step advances one tick: agents move first, then the fire model. The
// subsystem clocks advance through their own Step methods, so calling
// StepEvacuation or StepFire directly leaves the simulator clock alone.
func (s *Simulator) Step() {
	s.Tick++
	s.Clock += s.DT
	s.StepEvacuation()
	s.StepFire()
	s.record()
}

// StepEvacuation advances only the agent stepper by one tick.
func (s *Simulator) StepEvacuation() {
	s.Evacuation.Step()
}

// StepFire advances only the fire model by one tick.
func (s *Simulator) StepFire() {
	s.Fire.Step(s.DT)
}

// Run drives the simulation until the evacuation completes or the MaxTime
// horizon is reached, then freezes final metrics. A run where every
// remaining agent has no route ends early: the grids are static, so a route
// that does not exist now never will.
func (s *Simulator) Run() {
	logrus.Infof("[tick %07d] Starting: %d agents, %d zones, %d fire sources",
		s.Tick, len(s.Evacuation.Agents), len(s.Fire.Zones), len(s.Fire.Sources))

	for !s.Evacuation.Complete() {
		if s.MaxTime > 0 && s.Clock >= s.MaxTime {
			logrus.Warnf("[tick %07d] Horizon reached with %d agents still inside",
				s.Tick, s.Evacuation.ActiveCount())
			break
		}
		s.Step()
		if s.Evacuation.ActiveCount() > 0 &&
			s.Evacuation.StalledCount() == s.Evacuation.ActiveCount() {
			logrus.Warnf("[tick %07d] No remaining agent has a route; ending run with %d inside",
				s.Tick, s.Evacuation.ActiveCount())
			break
		}
		if s.Tick%progressLogInterval == 0 {
			st := s.Evacuation.Stats()
			logrus.Infof("[tick %07d] t=%.1fs evacuated=%d remaining=%d",
				s.Tick, s.Clock, st.Evacuated, st.Remaining)
		}
	}

	s.finalizeMetrics()
	logrus.Infof("[tick %07d] Simulation ended", s.Tick)
}

// Stats returns the live evacuation progress snapshot.
func (s *Simulator) Stats() Stats {
	return s.Evacuation.Stats()
}

func (s *Simulator) finalizeMetrics() {
	st := s.Evacuation.Stats()
	s.Metrics.Evacuated = st.Evacuated
	s.Metrics.Remaining = st.Remaining
	s.Metrics.Stalled = s.Evacuation.StalledCount()
	s.Metrics.ZoneErrors = s.Fire.UpdateErrors
	s.Metrics.SimTime = s.Clock
	s.Metrics.Ticks = s.Tick
	s.Metrics.EvacuationTimes = append([]float64(nil), s.Evacuation.EvacuationTimes...)
}

// record appends trace records on the trace cadence. Zones are recorded
// only once affected: holding a source, heated above ambient, or smoke-laden.
func (s *Simulator) record() {
	if s.Trace == nil || s.TraceInterval <= 0 || s.Tick%s.TraceInterval != 0 {
		return
	}

	st := s.Evacuation.Stats()
	inTransit := 0
	for _, a := range s.Evacuation.Agents {
		if a.State() == AgentInTransit {
			inTransit++
		}
	}
	s.Trace.RecordEvac(trace.EvacRecord{
		Time:      s.Clock,
		Evacuated: st.Evacuated,
		Remaining: st.Remaining,
		InTransit: inTransit,
	})

	for _, id := range s.Fire.ZoneIDs() {
		zone := s.Fire.Zones[id]
		if len(zone.Sources) == 0 && zone.HotLayerTemp <= ambientTemp && zone.SmokeHeight == 0 {
			continue
		}
		zst, _ := s.Fire.ZoneState(id)
		s.Trace.RecordZone(trace.ZoneRecord{
			Time:            s.Clock,
			Zone:            id,
			HotLayerTemp:    zst.HotLayerTemp,
			ColdLayerTemp:   zst.ColdLayerTemp,
			SmokeHeight:     zst.SmokeHeight,
			InterfaceHeight: zst.InterfaceHeight,
			HeatReleaseRate: zst.HeatReleaseRate,
		})
	}
}
