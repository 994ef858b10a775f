package viewmode

import (
	"testing"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

func TestGetUnknownModeFallsBackToExplorational(t *testing.T) {
	got := Get("cinematic")
	if got.Name != ModeExplorational {
		t.Fatalf("Get(cinematic).Name = %q, want %q", got.Name, ModeExplorational)
	}
}

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range Modes() {
		cfg := Get(name)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("built-in mode %q failed validation: %v", name, err)
		}
		if cfg.Camera.MaxDistanceMultiplier <= cfg.Camera.MinDistanceMultiplier {
			t.Fatalf("mode %q: max distance multiplier %v <= min %v",
				name, cfg.Camera.MaxDistanceMultiplier, cfg.Camera.MinDistanceMultiplier)
		}
	}
}

func TestObjectScalingFactorFallback(t *testing.T) {
	s := ObjectScaling{
		Default: 2.0,
		ByClass: map[model.Classification]float64{model.ClassStar: 0.5},
	}
	if got := s.Factor(model.ClassStar); got != 0.5 {
		t.Fatalf("Factor(star) = %v, want 0.5", got)
	}
	if got := s.Factor(model.ClassBelt); got != 2.0 {
		t.Fatalf("Factor(belt) = %v, want default 2.0", got)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Get(ModeExplorational)
	cfg.Camera.MaxDistanceMultiplier = cfg.Camera.MinDistanceMultiplier
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for equal distance multipliers")
	}

	cfg = Get(ModeExplorational)
	cfg.ObjectScaling.Default = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero default scale factor")
	}
}

func TestOverridesApply(t *testing.T) {
	base := Get(ModeProfile)
	got := apply(base, Overrides{RadiusMultiplier: 6.0, BaseSpacing: 0.25})
	if got.Camera.RadiusMultiplier != 6.0 {
		t.Fatalf("RadiusMultiplier = %v, want 6.0", got.Camera.RadiusMultiplier)
	}
	if got.Spacing.BaseSpacing != 0.25 {
		t.Fatalf("BaseSpacing = %v, want 0.25", got.Spacing.BaseSpacing)
	}
	// Untouched fields keep built-in values.
	if got.OrbitScalingFactor != base.OrbitScalingFactor {
		t.Fatalf("OrbitScalingFactor changed: %v != %v", got.OrbitScalingFactor, base.OrbitScalingFactor)
	}
}
