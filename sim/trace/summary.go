package trace

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	EvacRecords      int
	ZoneRecords      int
	FinalTime        float64
	TotalEvacuated   int
	PeakHotTemp      float64
	PeakHotZone      string
	MinInterface     float64
	MinInterfaceZone string
	ZonesAffected    int
	ZoneDistribution map[string]int // zone ID → count of records
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{
		ZoneDistribution: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.EvacRecords = len(rt.Evac)
	if len(rt.Evac) > 0 {
		last := rt.Evac[len(rt.Evac)-1]
		summary.FinalTime = last.Time
		summary.TotalEvacuated = last.Evacuated
	}

	summary.ZoneRecords = len(rt.Zones)
	for i, z := range rt.Zones {
		summary.ZoneDistribution[z.Zone]++
		if i == 0 || z.HotLayerTemp > summary.PeakHotTemp {
			summary.PeakHotTemp = z.HotLayerTemp
			summary.PeakHotZone = z.Zone
		}
		if i == 0 || z.InterfaceHeight < summary.MinInterface {
			summary.MinInterface = z.InterfaceHeight
			summary.MinInterfaceZone = z.Zone
		}
		if z.Time > summary.FinalTime {
			summary.FinalTime = z.Time
		}
	}

	summary.ZonesAffected = len(summary.ZoneDistribution)

	return summary
}
