package model

// Classification identifies what kind of body a descriptor represents.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassStar
	ClassPlanet
	ClassMoon
	ClassBelt
	ClassSpacecraft
	ClassOther
)

// String returns the lowercase catalog spelling of the classification.
func (c Classification) String() string {
	switch c {
	case ClassStar:
		return "star"
	case ClassPlanet:
		return "planet"
	case ClassMoon:
		return "moon"
	case ClassBelt:
		return "belt"
	case ClassSpacecraft:
		return "spacecraft"
	case ClassOther:
		return "other"
	default:
		return "unknown"
	}
}

// ClassificationFromString parses a catalog classification string. Unknown or
// empty strings map to ClassUnknown so callers can fall back to the heuristic.
func ClassificationFromString(s string) Classification {
	switch s {
	case "star":
		return ClassStar
	case "planet":
		return ClassPlanet
	case "moon":
		return ClassMoon
	case "belt":
		return ClassBelt
	case "spacecraft":
		return ClassSpacecraft
	case "other":
		return ClassOther
	default:
		return ClassUnknown
	}
}

// PhysicalProperties holds the real, mode-independent magnitudes of a body.
// Radii are kilometres, mass is kilograms, temperature is kelvin. Luminosity
// is in solar luminosities and is only present for stars.
type PhysicalProperties struct {
	MassKg         float64
	RadiusKm       float64
	TemperatureK   float64
	LuminositySuns *float64
}

// OrbitElements describes the orbit of a body around its parent. The parent
// may be referenced by id or by name; upstream catalogs use both.
type OrbitElements struct {
	Parent          string
	SemiMajorAxisAU float64
	Eccentricity    float64
	InclinationDeg  float64
}

// CelestialObjectDescriptor is one catalog entry: a star, planet, moon, belt,
// or spacecraft. Descriptors are owned by the catalog loader and read-only to
// the computation core.
type CelestialObjectDescriptor struct {
	ID             string
	Name           string
	Classification Classification
	Properties     PhysicalProperties

	// Orbit is nil for the system primary.
	Orbit *OrbitElements

	// TLELine1/TLELine2 are set for spacecraft whose position comes from
	// SGP4 propagation rather than catalog orbit elements.
	TLELine1 string
	TLELine2 string
}

// HasOrbit reports whether the descriptor carries usable orbit data. A nil
// orbit block or a non-positive semi-major axis both count as "no orbit".
func (d *CelestialObjectDescriptor) HasOrbit() bool {
	return d != nil && d.Orbit != nil && d.Orbit.SemiMajorAxisAU > 0
}
