package viewmode

import (
	"errors"
	"fmt"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

var (
	ErrBadScaleFactor   = errors.New("scale factor must be positive")
	ErrBadDistanceBound = errors.New("max distance bound must exceed min")
)

// Easing names the interpolation curve used for camera transitions.
type Easing int

const (
	EaseLinear Easing = iota
	EaseInOutCubic
	EaseOutQuart
)

// ObjectScaling maps object classifications to visual scale factors. Lookups
// for classes without an explicit entry use Default.
type ObjectScaling struct {
	Default float64
	ByClass map[model.Classification]float64
}

// Factor returns the scale factor for a classification.
func (s ObjectScaling) Factor(c model.Classification) float64 {
	if f, ok := s.ByClass[c]; ok {
		return f
	}
	return s.Default
}

// ViewingAngles holds camera elevation angles in radians.
type ViewingAngles struct {
	DefaultElevation  float64
	BirdsEyeElevation float64
}

// AnimationConfig governs camera transition timing.
type AnimationConfig struct {
	FocusDuration    time.Duration
	BirdsEyeDuration time.Duration
	Easing           Easing
}

// CameraConfig holds the per-mode camera distance tunables. The radius
// multiplier is the single source of truth for how far the camera sits from
// an object of a given visual radius.
type CameraConfig struct {
	RadiusMultiplier      float64
	MinDistanceMultiplier float64
	MaxDistanceMultiplier float64
	AbsoluteMinDistance   float64
	AbsoluteMaxDistance   float64
	ViewingAngles         ViewingAngles
	Animation             AnimationConfig
}

// EquidistantSpacing configures diagrammatic child placement: the nth child
// of a parent sits at BaseSpacing * (1 + n*SpacingMultiplier) regardless of
// its real orbital radius.
type EquidistantSpacing struct {
	BaseSpacing       float64
	SpacingMultiplier float64
}

// Config is the full set of tunables for one view mode. Configs are built at
// startup, validated once, and never mutated afterwards.
type Config struct {
	Name               string
	ObjectScaling      ObjectScaling
	OrbitScalingFactor float64
	MinVisualSize      float64
	MaxVisualSize      float64
	Camera             CameraConfig
	Spacing            EquidistantSpacing
	SafetyFactor       float64

	// Diagrammatic modes ignore real orbital radii and use Spacing.
	Diagrammatic bool

	// LayoutMultiplier scales the focal-to-outermost span when framing a
	// hierarchy; SingleObjectFallbackDistance is used when an object has
	// no hierarchy to frame.
	LayoutMultiplier             float64
	SingleObjectFallbackDistance float64
}

// Validate checks the structural invariants every mode config must satisfy.
func (c Config) Validate() error {
	if c.ObjectScaling.Default <= 0 {
		return fmt.Errorf("mode %q: default object scaling: %w", c.Name, ErrBadScaleFactor)
	}
	for class, f := range c.ObjectScaling.ByClass {
		if f <= 0 {
			return fmt.Errorf("mode %q: scaling for %s: %w", c.Name, class, ErrBadScaleFactor)
		}
	}
	if c.OrbitScalingFactor <= 0 {
		return fmt.Errorf("mode %q: orbit scaling factor: %w", c.Name, ErrBadScaleFactor)
	}
	if c.Camera.RadiusMultiplier <= 0 {
		return fmt.Errorf("mode %q: radius multiplier: %w", c.Name, ErrBadScaleFactor)
	}
	if c.Camera.MaxDistanceMultiplier <= c.Camera.MinDistanceMultiplier {
		return fmt.Errorf("mode %q: distance multipliers: %w", c.Name, ErrBadDistanceBound)
	}
	if c.Camera.AbsoluteMaxDistance <= c.Camera.AbsoluteMinDistance {
		return fmt.Errorf("mode %q: absolute distances: %w", c.Name, ErrBadDistanceBound)
	}
	if c.MinVisualSize <= 0 || c.MaxVisualSize <= c.MinVisualSize {
		return fmt.Errorf("mode %q: visual size bounds: %w", c.Name, ErrBadDistanceBound)
	}
	return nil
}
