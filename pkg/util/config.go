package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// MatcherConfig holds the tunable parameters of one matching session. the
// zero value is never used directly, load it through ReadConfig or
// DefaultMatcherConfig.
type MatcherConfig struct {
	Beta                   float64 `mapstructure:"beta" validate:"gt=0"`
	BreakageDistance       float64 `mapstructure:"breakage_distance" validate:"gt=0"`
	MaxRouteDistanceFactor float64 `mapstructure:"max_route_distance_factor" validate:"gt=0"`
	MaxRouteTimeFactor     float64 `mapstructure:"max_route_time_factor" validate:"gt=0"`
	TurnPenaltyFactor      float64 `mapstructure:"turn_penalty_factor" validate:"gte=0"`
	SigmaZ                 float64 `mapstructure:"sigma_z" validate:"gt=0"`
	SearchRadius           float64 `mapstructure:"search_radius" validate:"gt=0"`
}

// DefaultMatcherConfig. parameter defaults follow the usual automobile
// map-matching tuning (beta=3, breakage 2km, sigma_z ~5m gps noise).
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		Beta:                   3.0,
		BreakageDistance:       2000.0,
		MaxRouteDistanceFactor: 5.0,
		MaxRouteTimeFactor:     5.0,
		TurnPenaltyFactor:      0.0,
		SigmaZ:                 4.07,
		SearchRadius:           50.0,
	}
}

func ReadConfig(configPath string) (MatcherConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(configPath)

	cfg := DefaultMatcherConfig()

	err := v.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("fatal error config file: %w", err)
	}

	if err := v.UnmarshalKey("matcher", &cfg); err != nil {
		return cfg, fmt.Errorf("fatal error config file: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return cfg, WrapErrorf(err, ErrBadParamInput, "invalid matcher config")
	}

	return cfg, nil
}
