package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// TurnPolicy picks who acts first when a game starts: "first" gives the
	// turn to the earlier joiner, "random" flips a coin. Either way the
	// choice reaches clients only through the game_start broadcast.
	TurnPolicy string `env:"TURN_POLICY" envDefault:"first"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.TurnPolicy != "first" && cfg.TurnPolicy != "random" {
		return nil, fmt.Errorf("invalid TURN_POLICY %q", cfg.TurnPolicy)
	}
	return cfg, nil
}
