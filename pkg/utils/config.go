package utils

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// TrackerConfig holds everything the tracking engine and servers need.
// All values come from SCANTRACK_* environment variables (optionally via
// a .env file).
type TrackerConfig struct {
	Workers     int           `envconfig:"WORKERS" default:"2"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	PairTimeout time.Duration `envconfig:"PAIR_TIMEOUT" default:"2m"`
	UserAgent   string        `envconfig:"USER_AGENT"` // empty = rotated default

	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`
	NotifyAddr string `envconfig:"NOTIFY_ADDR" default:":7171"`
}

func LoadTrackerConfig() (TrackerConfig, error) {
	// .env is optional; shell env wins either way.
	_ = godotenv.Load(".env")

	var cfg TrackerConfig
	if err := envconfig.Process("SCANTRACK", &cfg); err != nil {
		return cfg, fmt.Errorf("process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c TrackerConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("SCANTRACK_WORKERS must be >= 1, got %d", c.Workers)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("SCANTRACK_HTTP_TIMEOUT must be positive")
	}
	if c.PairTimeout <= 0 {
		return fmt.Errorf("SCANTRACK_PAIR_TIMEOUT must be positive")
	}
	return nil
}
