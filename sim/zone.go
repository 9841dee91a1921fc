package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrLayerInversion reports a zone update whose clamped layer temperatures
// would place the hot layer below the cold layer. The offending update is
// discarded in full; callers decide whether to keep stepping.
var ErrLayerInversion = errors.New("hot layer temperature below cold layer")

// Two-zone model constants.
const (
	ambientTemp       = 20.0  // °C
	zoneHeight        = 3.0   // m, uniform room height
	smokeDensity      = 0.5   // kg/m³ of settled smoke
	maxHeightDelta    = 0.1   // m, per-update smoke layer growth cap
	minSmokeHeight    = 0.05  // m, floor for a forming layer
	heatTransferCoeff = 0.1   // W/m²·K across the layer interface
	maxTempDelta      = 100.0 // °C per update per mechanism
	maxHotLayerTemp   = 800.0 // °C
	maxColdLayerTemp  = 50.0  // °C
)

// SmokeZone is one well-mixed two-layer volume: a hot smoke layer descending
// from the ceiling over a cold clear layer. Temperatures are °C, heights m.
// A zone only heats itself while it holds a burning source; smoke reaches
// unburning zones through connections.
type SmokeZone struct {
	ID       string
	Boundary []Vec2

	SmokeHeight     float64 // hot layer thickness, 0 = clear
	HotLayerTemp    float64
	ColdLayerTemp   float64
	InterfaceHeight float64 // Height - SmokeHeight

	FloorArea float64
	Height    float64
	Volume    float64

	Connections []*ZoneConnection
	Sources     []*FireSource
}

// NewSmokeZone builds a clear ambient-temperature zone over the boundary
// polygon.
func NewSmokeZone(id string, boundary []Vec2) *SmokeZone {
	area := polygonArea(boundary)
	return &SmokeZone{
		ID:              id,
		Boundary:        boundary,
		HotLayerTemp:    ambientTemp,
		ColdLayerTemp:   ambientTemp,
		InterfaceHeight: zoneHeight,
		FloorArea:       area,
		Height:          zoneHeight,
		Volume:          area * zoneHeight,
	}
}

// AddFireSource attaches a source to this zone; the source reads the zone's
// volume and vent openings to bound its burn rate.
func (z *SmokeZone) AddFireSource(s *FireSource) {
	s.Zone = z
	z.Sources = append(z.Sources, s)
}

// SmokeThickness is the hot layer depth measured down from the ceiling.
func (z *SmokeZone) SmokeThickness() float64 { return z.Height - z.InterfaceHeight }

func (z *SmokeZone) connectedVentArea() float64 {
	total := 0.0
	for _, c := range z.Connections {
		total += c.Width * c.Height
	}
	return total
}

// airProperties returns density (kg/m³) and specific heat (kJ/kg·K) at the
// given temperature, ideal gas around the 293 K reference.
func airProperties(tempC float64) (rho, cp float64) {
	t := tempC + 273.15
	rho = ambientDensity * (293 / t)
	cp = 1.005 + 0.00004*(t-293)
	return rho, cp
}

// Update advances the zone one step at absolute time now. Sources advance
// first; with no heat released the zone is left untouched. Otherwise the
// smoke layer thickens by the capped production volume, the fire heats the
// hot layer, and interface conduction moves heat into the cold layer, each
// delta capped and each temperature clamped to its band. The update is
// transactional: on ErrLayerInversion nothing is committed.
func (z *SmokeZone) Update(dt, now float64) error {
	var totalHeat, totalSmoke float64
	for _, src := range z.Sources {
		if src.Advance(now) {
			totalHeat += src.HeatReleaseRate
			totalSmoke += src.SmokeProductionRate
		}
	}
	if totalHeat <= 0 {
		return nil
	}

	deltaHeight := math.Min(totalSmoke*dt/smokeDensity/z.FloorArea, maxHeightDelta)

	rhoHot, cpHot := airProperties(z.HotLayerTemp)
	rhoCold, cpCold := airProperties(z.ColdLayerTemp)

	smokeHeight := math.Min(z.Height, math.Max(minSmokeHeight, z.SmokeHeight+deltaHeight))

	hotTemp, coldTemp := z.HotLayerTemp, z.ColdLayerTemp
	hotMass := z.FloorArea * smokeHeight * rhoHot
	coldMass := z.FloorArea * (z.Height - smokeHeight) * rhoCold
	if hotMass > 0 && coldMass > 0 {
		transfer := heatTransferCoeff * z.FloorArea * (z.HotLayerTemp - z.ColdLayerTemp) * dt

		dTFire := math.Min(maxTempDelta, totalHeat*dt/(cpHot*hotMass))
		dTHot := math.Max(-maxTempDelta, -transfer/(cpHot*hotMass))
		dTCold := math.Min(maxTempDelta, transfer/(cpCold*coldMass))

		hotTemp = clamp(z.HotLayerTemp+dTFire+dTHot, ambientTemp, maxHotLayerTemp)
		coldTemp = clamp(z.ColdLayerTemp+dTCold, ambientTemp, maxColdLayerTemp)
		if hotTemp < coldTemp {
			return fmt.Errorf("zone %s: %w", z.ID, ErrLayerInversion)
		}
	}

	z.SmokeHeight = smokeHeight
	z.HotLayerTemp = hotTemp
	z.ColdLayerTemp = coldTemp
	z.InterfaceHeight = z.Height - smokeHeight
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
