package sim

import "math"

// ConnectionKind tells door openings apart from stair shaft openings.
type ConnectionKind string

const (
	ConnDoor  ConnectionKind = "door"
	ConnStair ConnectionKind = "stair"
)

// Flow gating and orifice constants.
const (
	minFlowThickness = 0.1  // m of smoke before a layer spills
	minFlowTempDiff  = 50.0 // °C between source hot and cold layers
	minPressureDiff  = 0.1  // Pa
	dischargeCoeff   = 0.6
	gravity          = 9.81
	ambientDensity   = 1.2 // kg/m³ at 20°C
)

// ZoneConnection is an opening between two zones. FlowRate is the last
// computed smoke volume flow in m³/s, positive from Zone1 to Zone2.
type ZoneConnection struct {
	Zone1, Zone2  *SmokeZone
	Kind          ConnectionKind
	Width, Height float64
	FlowRate      float64
}

// NewZoneConnection links two zones through an opening of the given size and
// registers the opening on both zones' vent inventories.
func NewZoneConnection(z1, z2 *SmokeZone, kind ConnectionKind, width, height float64) *ZoneConnection {
	c := &ZoneConnection{Zone1: z1, Zone2: z2, Kind: kind, Width: width, Height: height}
	z1.Connections = append(z1.Connections, c)
	z2.Connections = append(z2.Connections, c)
	return c
}

// ComputeFlow recalculates FlowRate from the buoyancy pressure difference
// across the opening. Flow starts only once Zone1 holds a smoke layer above
// the thickness and temperature-difference thresholds, and is suppressed when
// it would push smoke from a thinner layer into a thicker one.
func (c *ZoneConnection) ComputeFlow() {
	c.FlowRate = 0

	thickness := c.Zone1.SmokeThickness()
	if thickness <= minFlowThickness ||
		c.Zone1.HotLayerTemp-c.Zone1.ColdLayerTemp <= minFlowTempDiff {
		return
	}

	// Buoyancy head between Zone1's hot layer and Zone2's cold layer.
	t1 := c.Zone1.HotLayerTemp + 273.15
	t2 := c.Zone2.ColdLayerTemp + 273.15
	rho1 := ambientDensity * 293 / t1
	rho2 := ambientDensity * 293 / t2
	deltaP := gravity * (rho2 - rho1) * thickness
	if math.Abs(deltaP) <= minPressureDiff {
		return
	}

	effHeight := math.Min(c.Height, thickness)
	flow := dischargeCoeff * c.Width * effHeight * math.Sqrt(2*math.Abs(deltaP)/ambientDensity)
	if deltaP < 0 {
		flow = -flow
	}

	source, target := c.Zone1, c.Zone2
	if flow < 0 {
		source, target = c.Zone2, c.Zone1
	}
	if target.SmokeThickness() >= source.SmokeThickness() {
		return
	}
	c.FlowRate = flow
}
