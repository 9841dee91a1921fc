package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Fire growth defaults: the α-t² ultra-fast design curve and combustion
// estimates used when a source is created without overrides.
const (
	defaultGrowthRate = 0.19   // kW/s²
	defaultMaxHRR     = 3000.0 // kW
	defaultSmokeYield = 0.2    // kg smoke per kg fuel
)

// Connection opening sizes used when wiring zones, in meters.
const (
	doorVentWidth   = 2.0
	doorVentHeight  = 2.0
	stairVentWidth  = 2.0
	stairVentHeight = 3.0
)

// FireSource is a single α-t² design fire. Advance grows the heat release
// rate quadratically until capped, throttled by the oxygen its zone can
// supply through room volume and vent openings.
type FireSource struct {
	Position  Vec2
	Zone      *SmokeZone
	StartTime float64

	GrowthRate float64 // kW/s²
	MaxHRR     float64 // kW
	SmokeYield float64 // kg/kg

	HeatReleaseRate     float64 // kW
	SmokeProductionRate float64 // kg/s
	PlumeTemperature    float64 // °C
	Active              bool

	duration float64
}

// NewFireSource builds a dormant source that ignites at startTime.
func NewFireSource(pos Vec2, startTime float64) *FireSource {
	return &FireSource{
		Position:         pos,
		StartTime:        startTime,
		GrowthRate:       defaultGrowthRate,
		MaxHRR:           defaultMaxHRR,
		SmokeYield:       defaultSmokeYield,
		PlumeTemperature: ambientTemp,
	}
}

// Advance recomputes the source state at absolute time now and reports
// whether the source is burning. The igniting advance burns at zero
// duration; every later advance measures duration from the nominal start
// time.
func (s *FireSource) Advance(now float64) bool {
	if now < s.StartTime {
		return false
	}
	if !s.Active {
		s.Active = true
		s.duration = 0
	} else {
		s.duration = now - s.StartTime
	}

	baseHRR := math.Min(s.GrowthRate*s.duration*s.duration, s.MaxHRR)

	// Ventilation limit: one kW burned needs roughly 0.13 g/s of oxygen.
	factor := 1.0
	if required := baseHRR * 0.13 / 1000; required > 0 {
		factor = math.Min(1.0, s.availableOxygen()/required)
	}
	s.HeatReleaseRate = baseHRR * factor
	s.SmokeProductionRate = s.HeatReleaseRate * s.SmokeYield / 1000
	s.PlumeTemperature = ambientTemp + math.Pow(s.HeatReleaseRate, 0.4)
	return true
}

func (s *FireSource) availableOxygen() float64 {
	if s.Zone == nil {
		return 0
	}
	return s.Zone.Volume*0.21 + s.Zone.connectedVentArea()*0.5
}

// FireModel owns every smoke zone and opening in the building and advances
// them in a fixed three-phase order: zone updates, flow computation, smoke
// redistribution. Phases never interleave, so flows always read a consistent
// snapshot of the zone states.
type FireModel struct {
	Building    *Building
	Zones       map[string]*SmokeZone
	Connections []*ZoneConnection
	Sources     []*FireSource

	Clock        float64
	UpdateErrors int

	zoneOrder []string
}

// NewFireModel builds one zone per room, keyed "room_<floor>_<index>" with
// 1-based room indexes, plus one shaft zone per stairwell with geometry,
// keyed "stair_<n>". Door openings join the rooms each door names, or
// consecutive rooms when unset; shaft openings join each stairwell to the
// room holding its entry on every floor it serves.
func NewFireModel(b *Building) *FireModel {
	m := &FireModel{
		Building: b,
		Zones:    make(map[string]*SmokeZone),
	}
	for _, num := range b.FloorNumbers() {
		floor := b.Floors[num]
		for i, room := range floor.Rooms {
			m.addZone(fmt.Sprintf("room_%d_%d", num, i+1), room)
		}
	}
	for i, stairs := range b.Stairs {
		if len(stairs.Area) < 3 {
			logrus.Debugf("stairwell %d has no shaft geometry, no zone created", i+1)
			continue
		}
		m.addZone(fmt.Sprintf("stair_%d", i+1), stairs.Area)
	}
	m.connectZones()
	return m
}

func (m *FireModel) addZone(id string, boundary []Vec2) {
	m.Zones[id] = NewSmokeZone(id, boundary)
	m.zoneOrder = append(m.zoneOrder, id)
}

func (m *FireModel) connectZones() {
	for _, num := range m.Building.FloorNumbers() {
		floor := m.Building.Floors[num]
		for j, door := range floor.Doors {
			r1, r2 := door.Rooms[0], door.Rooms[1]
			if r1 == 0 && r2 == 0 {
				r1, r2 = j+1, j+2
			}
			m.connect(
				fmt.Sprintf("room_%d_%d", num, r1),
				fmt.Sprintf("room_%d_%d", num, r2),
				ConnDoor, doorVentWidth, doorVentHeight,
			)
		}
	}
	for i, stairs := range m.Building.Stairs {
		shaftID := fmt.Sprintf("stair_%d", i+1)
		if _, ok := m.Zones[shaftID]; !ok {
			continue
		}
		for _, num := range stairs.Floors {
			floor, ok := m.Building.Floor(num)
			if !ok {
				continue
			}
			entry, ok := stairs.EntryPosition(num)
			if !ok {
				continue
			}
			idx := floor.RoomContaining(entry)
			if idx < 0 {
				continue
			}
			m.connect(shaftID, fmt.Sprintf("room_%d_%d", num, idx+1), ConnStair, stairVentWidth, stairVentHeight)
		}
	}
}

func (m *FireModel) connect(id1, id2 string, kind ConnectionKind, width, height float64) {
	z1, ok1 := m.Zones[id1]
	z2, ok2 := m.Zones[id2]
	if !ok1 || !ok2 {
		logrus.Debugf("skipping %s opening %s <-> %s: zone missing", kind, id1, id2)
		return
	}
	m.Connections = append(m.Connections, NewZoneConnection(z1, z2, kind, width, height))
}

// AddFireSource places a source at pos in the named zone, igniting at
// startTime. Returns nil when the zone does not exist.
func (m *FireModel) AddFireSource(roomID string, pos Vec2, startTime float64) *FireSource {
	zone, ok := m.Zones[roomID]
	if !ok {
		logrus.Warnf("cannot add fire source: unknown zone %q", roomID)
		return nil
	}
	src := NewFireSource(pos, startTime)
	zone.AddFireSource(src)
	m.Sources = append(m.Sources, src)
	logrus.Debugf("fire source in %s at (%.1f, %.1f), ignition t=%.1fs", roomID, pos.X, pos.Y, startTime)
	return src
}

// Ignite places a source at the named zone's centroid, igniting immediately.
func (m *FireModel) Ignite(roomID string) *FireSource {
	zone, ok := m.Zones[roomID]
	if !ok {
		logrus.Warnf("cannot ignite: unknown zone %q", roomID)
		return nil
	}
	return m.AddFireSource(roomID, polygonCentroid(zone.Boundary), 0)
}

// Step advances the model by dt seconds. Every zone updates against its own
// sources, every opening recomputes its flow from that snapshot, then smoke
// volume moves across openings with layer heights clamped to [0, height].
// A zone update that fails is logged, counted, and skipped; the rest of the
// step proceeds.
func (m *FireModel) Step(dt float64) {
	m.Clock += dt

	for _, id := range m.zoneOrder {
		if err := m.Zones[id].Update(dt, m.Clock); err != nil {
			m.UpdateErrors++
			logrus.Warnf("zone update discarded at t=%.1fs: %v", m.Clock, err)
		}
	}

	for _, conn := range m.Connections {
		conn.ComputeFlow()
	}

	for _, conn := range m.Connections {
		if conn.FlowRate == 0 {
			continue
		}
		volume := math.Abs(conn.FlowRate) * dt
		src, dst := conn.Zone1, conn.Zone2
		if conn.FlowRate < 0 {
			src, dst = conn.Zone2, conn.Zone1
		}
		src.SmokeHeight = math.Max(0, src.SmokeHeight-volume/src.FloorArea)
		dst.SmokeHeight = math.Min(dst.Height, dst.SmokeHeight+volume/dst.FloorArea)
		src.InterfaceHeight = src.Height - src.SmokeHeight
		dst.InterfaceHeight = dst.Height - dst.SmokeHeight
		logrus.Debugf("smoke flow %s -> %s (%s): %.3f m³/s", src.ID, dst.ID, conn.Kind, math.Abs(conn.FlowRate))
	}
}

// ZoneState is a reporting snapshot of one zone.
type ZoneState struct {
	HotLayerTemp    float64
	ColdLayerTemp   float64
	SmokeHeight     float64
	InterfaceHeight float64
	OnFire          bool
	HeatReleaseRate float64
}

// ZoneState returns the current snapshot for roomID.
func (m *FireModel) ZoneState(roomID string) (ZoneState, bool) {
	zone, ok := m.Zones[roomID]
	if !ok {
		return ZoneState{}, false
	}
	st := ZoneState{
		HotLayerTemp:    zone.HotLayerTemp,
		ColdLayerTemp:   zone.ColdLayerTemp,
		SmokeHeight:     zone.SmokeHeight,
		InterfaceHeight: zone.InterfaceHeight,
		OnFire:          len(zone.Sources) > 0,
	}
	for _, src := range zone.Sources {
		st.HeatReleaseRate += src.HeatReleaseRate
	}
	return st, true
}

// ZoneIDs returns zone ids in creation order: rooms by ascending floor then
// room index, followed by stair shafts.
func (m *FireModel) ZoneIDs() []string {
	ids := make([]string, len(m.zoneOrder))
	copy(ids, m.zoneOrder)
	return ids
}
