package viewmode

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Overrides are the tunables an operator may adjust per mode from a config
// file or environment without rebuilding. Zero values leave the built-in
// value untouched.
type Overrides struct {
	OrbitScalingFactor           float64 `mapstructure:"orbit_scaling_factor"`
	RadiusMultiplier             float64 `mapstructure:"radius_multiplier"`
	BaseSpacing                  float64 `mapstructure:"base_spacing"`
	SpacingMultiplier            float64 `mapstructure:"spacing_multiplier"`
	SafetyFactor                 float64 `mapstructure:"safety_factor"`
	SingleObjectFallbackDistance float64 `mapstructure:"single_object_fallback_distance"`
}

// LoadOverrides reads per-mode overrides from an optional YAML config file
// and VIEWER_-prefixed environment variables, returning the adjusted config
// for the given mode. A missing config file is not an error.
func LoadOverrides(configPath, mode string) (Config, error) {
	cfg := Get(mode)

	v := viper.New()
	v.SetEnvPrefix("VIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("viewmodes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return cfg, fmt.Errorf("read view mode config: %w", err)
		}
	}

	var ov Overrides
	if err := v.UnmarshalKey("modes."+cfg.Name, &ov); err != nil {
		return cfg, fmt.Errorf("decode overrides for mode %q: %w", cfg.Name, err)
	}
	applied := apply(cfg, ov)
	if err := applied.Validate(); err != nil {
		return cfg, fmt.Errorf("overrides for mode %q: %w", cfg.Name, err)
	}
	return applied, nil
}

func apply(cfg Config, ov Overrides) Config {
	if ov.OrbitScalingFactor > 0 {
		cfg.OrbitScalingFactor = ov.OrbitScalingFactor
	}
	if ov.RadiusMultiplier > 0 {
		cfg.Camera.RadiusMultiplier = ov.RadiusMultiplier
	}
	if ov.BaseSpacing > 0 {
		cfg.Spacing.BaseSpacing = ov.BaseSpacing
	}
	if ov.SpacingMultiplier > 0 {
		cfg.Spacing.SpacingMultiplier = ov.SpacingMultiplier
	}
	if ov.SafetyFactor > 0 {
		cfg.SafetyFactor = ov.SafetyFactor
	}
	if ov.SingleObjectFallbackDistance > 0 {
		cfg.SingleObjectFallbackDistance = ov.SingleObjectFallbackDistance
	}
	return cfg
}
