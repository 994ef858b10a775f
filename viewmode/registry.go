package viewmode

import (
	"fmt"
	"sort"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/model"
)

// Mode names understood by the built-in registry.
const (
	ModeExplorational = "explorational"
	ModeNavigational  = "navigational"
	ModeProfile       = "profile"
)

// builtins holds the validated, immutable built-in mode configs.
var builtins = map[string]Config{}

func init() {
	for _, cfg := range []Config{
		explorationalConfig(),
		navigationalConfig(),
		profileConfig(),
	} {
		if err := cfg.Validate(); err != nil {
			panic(fmt.Sprintf("built-in view mode invalid: %v", err))
		}
		builtins[cfg.Name] = cfg
	}
}

// Get returns the config for a mode. Unknown mode names fall back to the
// explorational config rather than failing, so a stale mode string coming
// from the UI can never break sizing.
func Get(mode string) Config {
	if cfg, ok := builtins[mode]; ok {
		return cfg
	}
	return builtins[ModeExplorational]
}

// Install validates a config and registers it under its name, replacing any
// existing entry. Call it during startup, before serving; Get does not lock.
func Install(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	builtins[cfg.Name] = cfg
	return nil
}

// Modes lists the registered mode names in sorted order.
func Modes() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func explorationalConfig() Config {
	return Config{
		Name: ModeExplorational,
		ObjectScaling: ObjectScaling{
			Default: 1.0,
			ByClass: map[model.Classification]float64{
				model.ClassStar:   0.5,
				model.ClassPlanet: 1.0,
				model.ClassMoon:   1.5,
				model.ClassBelt:   0.8,
			},
		},
		OrbitScalingFactor: 8.0,
		MinVisualSize:      0.05,
		MaxVisualSize:      40.0,
		Camera: CameraConfig{
			RadiusMultiplier:      4.0,
			MinDistanceMultiplier: 1.5,
			MaxDistanceMultiplier: 12.0,
			AbsoluteMinDistance:   0.1,
			AbsoluteMaxDistance:   2000.0,
			ViewingAngles: ViewingAngles{
				DefaultElevation:  0.5236, // 30 degrees
				BirdsEyeElevation: 1.2217, // 70 degrees
			},
			Animation: AnimationConfig{
				FocusDuration:    800 * time.Millisecond,
				BirdsEyeDuration: 1200 * time.Millisecond,
				Easing:           EaseInOutCubic,
			},
		},
		Spacing:                      EquidistantSpacing{BaseSpacing: 0.5, SpacingMultiplier: 1.0},
		SafetyFactor:                 1.1,
		LayoutMultiplier:             1.2,
		SingleObjectFallbackDistance: 15.0,
	}
}

func navigationalConfig() Config {
	cfg := explorationalConfig()
	cfg.Name = ModeNavigational
	cfg.Diagrammatic = true
	cfg.OrbitScalingFactor = 1.0
	cfg.ObjectScaling = ObjectScaling{
		Default: 1.0,
		ByClass: map[model.Classification]float64{
			model.ClassStar:   0.8,
			model.ClassPlanet: 1.0,
			model.ClassMoon:   1.0,
			model.ClassBelt:   0.6,
		},
	}
	cfg.Camera.ViewingAngles.DefaultElevation = 0.7854 // 45 degrees
	return cfg
}

func profileConfig() Config {
	cfg := explorationalConfig()
	cfg.Name = ModeProfile
	cfg.Diagrammatic = true
	cfg.OrbitScalingFactor = 1.0
	cfg.ObjectScaling = ObjectScaling{
		// Profile mode flattens everything to comparable sizes.
		Default: 0.6,
		ByClass: map[model.Classification]float64{
			model.ClassStar:   0.6,
			model.ClassPlanet: 0.6,
			model.ClassMoon:   0.6,
		},
	}
	cfg.Spacing = EquidistantSpacing{BaseSpacing: 0.6, SpacingMultiplier: 0.8}
	cfg.Camera.ViewingAngles.DefaultElevation = 0.2618 // 15 degrees
	cfg.Camera.Animation.FocusDuration = 600 * time.Millisecond
	return cfg
}
