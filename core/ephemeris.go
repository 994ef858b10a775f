package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

// Ephemeris places one object in the world for a given simulation time.
type Ephemeris interface {
	// UpdatePosition writes the object's holder and body positions into
	// the index. Parents must be updated before their children; catalogs
	// list primaries first, so updating in catalog order suffices.
	UpdatePosition(simTime time.Time, idx *PositionIndex)
}

// StaticEphemeris pins an object at a fixed position (system primaries).
type StaticEphemeris struct {
	ID  string
	Pos Vec3
}

func (e *StaticEphemeris) UpdatePosition(simTime time.Time, idx *PositionIndex) {
	idx.SetHolder(e.ID, e.Pos)
	idx.SetBody(e.ID, e.Pos)
}

// CircularOrbitEphemeris moves an object on a circular orbit of the given
// visual radius around its parent. The holder sits at the parent's position;
// the body is offset along the orbit. This is a display orbit, not physics:
// the radius comes from the mechanics pipeline, not from Kepler's laws.
type CircularOrbitEphemeris struct {
	ID             string
	ParentID       string
	OrbitRadius    float64
	Period         time.Duration
	PhaseRad       float64
	InclinationRad float64

	epoch time.Time
}

// NewCircularOrbitEphemeris constructs a display orbit anchored at epoch.
func NewCircularOrbitEphemeris(id, parentID string, orbitRadius float64, period time.Duration, phase, inclination float64, epoch time.Time) *CircularOrbitEphemeris {
	if period <= 0 {
		period = time.Hour
	}
	return &CircularOrbitEphemeris{
		ID:             id,
		ParentID:       parentID,
		OrbitRadius:    orbitRadius,
		Period:         period,
		PhaseRad:       phase,
		InclinationRad: inclination,
		epoch:          epoch,
	}
}

func (e *CircularOrbitEphemeris) UpdatePosition(simTime time.Time, idx *PositionIndex) {
	center, ok := idx.WorldPositionOf(e.ParentID)
	if !ok {
		center = Vec3{}
	}
	idx.SetHolder(e.ID, center)

	elapsed := simTime.Sub(e.epoch)
	theta := e.PhaseRad + 2*math.Pi*float64(elapsed)/float64(e.Period)

	offset := Vec3{
		X: e.OrbitRadius * math.Cos(theta),
		Y: e.OrbitRadius * math.Sin(theta) * math.Sin(e.InclinationRad),
		Z: e.OrbitRadius * math.Sin(theta) * math.Cos(e.InclinationRad),
	}
	idx.SetBody(e.ID, center.Add(offset))
}

// SGP4Ephemeris propagates a spacecraft from its TLE. go-satellite works in
// kilometres; positions are scaled into scene units.
type SGP4Ephemeris struct {
	ID        string
	ParentID  string
	KmPerUnit float64
	sat       satellite.Satellite
}

// NewSGP4Ephemeris builds an SGP4 propagator from TLE lines. kmPerUnit
// converts propagated kilometres into scene units; zero defaults to 1000.
func NewSGP4Ephemeris(id, parentID, tle1, tle2 string, kmPerUnit float64) *SGP4Ephemeris {
	if kmPerUnit <= 0 {
		kmPerUnit = 1000
	}
	return &SGP4Ephemeris{
		ID:        id,
		ParentID:  parentID,
		KmPerUnit: kmPerUnit,
		sat:       satellite.TLEToSat(tle1, tle2, satellite.GravityWGS72),
	}
}

func (e *SGP4Ephemeris) UpdatePosition(simTime time.Time, idx *PositionIndex) {
	center, ok := idx.WorldPositionOf(e.ParentID)
	if !ok {
		center = Vec3{}
	}
	idx.SetHolder(e.ID, center)

	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(e.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	idx.SetBody(e.ID, center.Add(Vec3{
		X: posECEF.X / e.KmPerUnit,
		Y: posECEF.Y / e.KmPerUnit,
		Z: posECEF.Z / e.KmPerUnit,
	}))
}

// NewEphemeris chooses an ephemeris for a descriptor. Spacecraft with TLE
// lines use SGP4; orbiting bodies get a display orbit at the mechanics
// distance; everything else is static at the origin.
func NewEphemeris(d *model.CelestialObjectDescriptor, mech ObjectMechanics, epoch time.Time) Ephemeris {
	if d == nil {
		return &StaticEphemeris{}
	}
	if d.TLELine1 != "" && d.TLELine2 != "" {
		parent := ""
		if d.Orbit != nil {
			parent = d.Orbit.Parent
		}
		return NewSGP4Ephemeris(d.ID, parent, d.TLELine1, d.TLELine2, 0)
	}
	if d.HasOrbit() && mech.OrbitDistance > 0 {
		// Derive a stable phase from the id so co-orbital bodies spread
		// out instead of stacking.
		phase := phaseFromID(d.ID)
		period := time.Duration(float64(time.Hour) * (1 + mech.OrbitDistance))
		incl := d.Orbit.InclinationDeg * math.Pi / 180
		return NewCircularOrbitEphemeris(d.ID, d.Orbit.Parent, mech.OrbitDistance, period, phase, incl, epoch)
	}
	return &StaticEphemeris{ID: d.ID}
}

// NewSystemEphemerides builds ephemerides for a whole system. Orbit parent
// references are resolved the same way navigation resolves them (id or name,
// case-insensitive) so position lookups always key on the parent's id.
func NewSystemEphemerides(objects []*model.CelestialObjectDescriptor, mechanics MechanicsResult, epoch time.Time) []Ephemeris {
	out := make([]Ephemeris, 0, len(objects))
	for _, d := range objects {
		if d == nil || d.ID == "" {
			continue
		}
		resolved := d
		if d.Orbit != nil {
			if parent := ParentOf(objects, d.ID); parent != nil && parent.ID != d.Orbit.Parent {
				clone := *d
				orbit := *d.Orbit
				orbit.Parent = parent.ID
				clone.Orbit = &orbit
				resolved = &clone
			}
		}
		out = append(out, NewEphemeris(resolved, mechanics[d.ID], epoch))
	}
	return out
}

func phaseFromID(id string) float64 {
	var h uint32
	for i := 0; i < len(id); i++ {
		h = h*31 + uint32(id[i])
	}
	return 2 * math.Pi * float64(h%360) / 360
}
