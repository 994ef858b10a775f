package model

import "strings"

// Physical thresholds for the classification heuristic. Mass is in kilograms,
// radius in kilometres.
const (
	// Below roughly 0.08 solar masses a body cannot sustain fusion; above
	// it we call it a star.
	starMassThresholdKg = 1.6e29

	// Bodies below ~2000 km radius orbiting another body read as moons.
	moonRadiusThresholdKm = 2000

	// Gas giants: more massive than ~10 Earth masses.
	gasGiantMassThresholdKg = 6.0e25
)

// gasGiantNames are name fragments that mark a body as a giant planet even
// when its catalog entry carries no mass.
var gasGiantNames = []string{
	"jupiter", "saturn", "uranus", "neptune",
}

var starNames = []string{
	"sol", "sun", "alpha", "proxima", "stanton", "terra major",
}

// Classify infers a classification for a body from its name and physical
// properties. An explicit classification on the descriptor is always
// authoritative; this heuristic exists only for catalogs that omit it.
// Ambiguous inputs default to planet.
func Classify(name string, props PhysicalProperties, hasOrbit bool) Classification {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, s := range starNames {
		if strings.Contains(lower, s) {
			return ClassStar
		}
	}
	for _, g := range gasGiantNames {
		if strings.Contains(lower, g) {
			return ClassPlanet
		}
	}
	if strings.Contains(lower, "belt") {
		return ClassBelt
	}

	if props.MassKg >= starMassThresholdKg || props.LuminositySuns != nil {
		return ClassStar
	}
	if props.MassKg >= gasGiantMassThresholdKg {
		return ClassPlanet
	}
	if hasOrbit && props.RadiusKm > 0 && props.RadiusKm < moonRadiusThresholdKm {
		return ClassMoon
	}

	return ClassPlanet
}

// EffectiveClassification returns the descriptor's explicit classification,
// falling back to the heuristic when the catalog left it unset.
func EffectiveClassification(d *CelestialObjectDescriptor) Classification {
	if d == nil {
		return ClassUnknown
	}
	if d.Classification != ClassUnknown {
		return d.Classification
	}
	return Classify(d.Name, d.Properties, d.HasOrbit())
}
