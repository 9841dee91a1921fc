package sim

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for evaluating egress performance
// and debugging behavior over time.
type Metrics struct {
	TotalAgents int     // Number of agents placed
	Evacuated   int     // Number of agents that reached the exit
	Remaining   int     // Number of agents still inside at the end
	Stalled     int     // Number of agents without a route at the end
	ZoneErrors  int     // Number of discarded zone updates
	SimTime     float64 // Simulated seconds elapsed
	Ticks       int64   // Ticks executed

	EvacuationTimes []float64 // per-agent exit times, seconds
}

// Summary holds derived statistics over completed evacuations.
type Summary struct {
	MeanEvacTime float64
	MaxEvacTime  float64
	P95EvacTime  float64
}

// Summarize computes mean, max, and p95 over the recorded evacuation times.
// Zero-valued when nobody evacuated.
func (m *Metrics) Summarize() Summary {
	if len(m.EvacuationTimes) == 0 {
		return Summary{}
	}
	times := make([]float64, len(m.EvacuationTimes))
	copy(times, m.EvacuationTimes)
	sort.Float64s(times)
	return Summary{
		MeanEvacTime: stat.Mean(times, nil),
		MaxEvacTime:  floats.Max(times),
		P95EvacTime:  stat.Quantile(0.95, stat.Empirical, times, nil),
	}
}

// Print displays aggregated metrics at the end of the simulation.
// Includes evacuation progress, timing percentiles, and zone model health.
func (m *Metrics) Print(startTime time.Time) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Simulated Time       : %.1f s (%d ticks)\n", m.SimTime, m.Ticks)
	fmt.Printf("Wall Clock           : %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Evacuated            : %d / %d\n", m.Evacuated, m.TotalAgents)
	fmt.Printf("Remaining            : %d\n", m.Remaining)
	if m.Stalled > 0 {
		fmt.Printf("Stalled (no route)   : %d\n", m.Stalled)
	}
	if m.ZoneErrors > 0 {
		fmt.Printf("Zone Update Errors   : %d\n", m.ZoneErrors)
	}
	if len(m.EvacuationTimes) > 0 {
		s := m.Summarize()
		fmt.Printf("Mean Evacuation Time : %.1f s\n", s.MeanEvacTime)
		fmt.Printf("P95 Evacuation Time  : %.1f s\n", s.P95EvacTime)
		fmt.Printf("Max Evacuation Time  : %.1f s\n", s.MaxEvacTime)
	}
}
