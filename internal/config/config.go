// Package config loads service configuration from the environment, with an
// optional .env file for development.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings. Every field can be set through the
// environment with the SAFETYPAL_ prefix, e.g. SAFETYPAL_PORT.
type Config struct {
	Port      int    `envconfig:"port" default:"8084"`
	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"console"`

	// StoreBackend selects persistence: "bolt" or "sqlite".
	StoreBackend string `envconfig:"store_backend" default:"bolt"`
	DBPath       string `envconfig:"db_path"`

	// DefaultAdminID is recorded on decisions whose request names no admin.
	DefaultAdminID string `envconfig:"default_admin_id" default:"admin-system"`

	RequestTimeout  time.Duration `envconfig:"request_timeout" default:"5s"`
	MetricsInterval time.Duration `envconfig:"metrics_interval" default:"30s"`
	TracingEnabled  bool          `envconfig:"tracing_enabled"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win over .env contents.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	c := &Config{}
	if err := envconfig.Process("safetypal", c); err != nil {
		return nil, err
	}
	return c, nil
}
