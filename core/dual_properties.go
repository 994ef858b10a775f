package core

import (
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

// ResolveInput carries one object's real magnitudes into the resolver.
// Classification may be ClassUnknown, in which case the name/mass heuristic
// decides. SystemScale defaults to 1 when zero.
type ResolveInput struct {
	Name            string
	Classification  model.Classification
	RealRadiusKm    float64
	RealOrbitRadius float64
	RealMassKg      float64
	SystemScale     float64
}

// DualProperties pairs an object's real magnitudes with the visual
// magnitudes derived for one view mode. Real values are copied verbatim and
// are mode-independent; everything else follows the mode config.
type DualProperties struct {
	RealRadiusKm    float64
	RealOrbitRadius float64
	RealMassKg      float64

	ObjectType model.Classification

	VisualRadius      float64
	VisualOrbitRadius float64

	OptimalViewDistance float64
	MinViewDistance     float64
	MaxViewDistance     float64
}

// ResolveDualProperties converts real magnitudes into visual magnitudes under
// the given mode config.
//
// The optimal view distance is always visualRadius * RadiusMultiplier, the
// same formula for every object type. That identity is what keeps apparent
// size consistent when switching modes: two objects with equal visual radius
// are always viewed from equal distance.
func ResolveDualProperties(in ResolveInput, cfg viewmode.Config) DualProperties {
	scale := in.SystemScale
	if scale <= 0 {
		scale = 1
	}

	class := in.Classification
	if class == model.ClassUnknown {
		class = model.Classify(in.Name, model.PhysicalProperties{
			MassKg:   in.RealMassKg,
			RadiusKm: in.RealRadiusKm,
		}, in.RealOrbitRadius > 0)
	}

	visualRadius := in.RealRadiusKm * cfg.ObjectScaling.Factor(class) * scale
	if in.RealRadiusKm <= 0 {
		// Degenerate catalog entries still get a visible body.
		visualRadius = cfg.MinVisualSize
	}
	visualRadius = Clamp(visualRadius, cfg.MinVisualSize, cfg.MaxVisualSize)

	visualOrbit := 0.0
	if in.RealOrbitRadius > 0 {
		visualOrbit = in.RealOrbitRadius * cfg.OrbitScalingFactor * scale
	}

	optimal := visualRadius * cfg.Camera.RadiusMultiplier
	minDist := Clamp(visualRadius*cfg.Camera.MinDistanceMultiplier,
		cfg.Camera.AbsoluteMinDistance, cfg.Camera.AbsoluteMaxDistance)
	maxDist := Clamp(visualRadius*cfg.Camera.MaxDistanceMultiplier,
		cfg.Camera.AbsoluteMinDistance, cfg.Camera.AbsoluteMaxDistance)

	// Clamping the min/max window must never push the optimal distance
	// outside it; pin to the nearer bound when it would.
	if optimal < minDist {
		optimal = minDist
	} else if optimal > maxDist {
		optimal = maxDist
	}

	return DualProperties{
		RealRadiusKm:        in.RealRadiusKm,
		RealOrbitRadius:     in.RealOrbitRadius,
		RealMassKg:          in.RealMassKg,
		ObjectType:          class,
		VisualRadius:        visualRadius,
		VisualOrbitRadius:   visualOrbit,
		OptimalViewDistance: optimal,
		MinViewDistance:     minDist,
		MaxViewDistance:     maxDist,
	}
}
