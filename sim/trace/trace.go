package trace

// RunTrace collects evacuation and zone records during a simulation run.
type RunTrace struct {
	Scenario string
	Seed     int64
	Evac     []EvacRecord
	Zones    []ZoneRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(scenario string, seed int64) *RunTrace {
	return &RunTrace{
		Scenario: scenario,
		Seed:     seed,
		Evac:     make([]EvacRecord, 0),
		Zones:    make([]ZoneRecord, 0),
	}
}

// RecordEvac appends an evacuation progress record.
func (rt *RunTrace) RecordEvac(record EvacRecord) {
	rt.Evac = append(rt.Evac, record)
}

// RecordZone appends a zone state record.
func (rt *RunTrace) RecordZone(record ZoneRecord) {
	rt.Zones = append(rt.Zones, record)
}
