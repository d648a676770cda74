package app

import (
	"errors"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the engine.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DataDir is where all flat data files live.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// LowStockThreshold drives the reorder report.
	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`

	// BootstrapAdminUser and BootstrapAdminPassword seed the user catalog
	// when users.csv is empty, so a fresh deployment can log in.
	BootstrapAdminUser     string `envconfig:"BOOTSTRAP_ADMIN_USER" default:"admin"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD" default:"admin"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		return nil, errors.New("data directory must be provided")
	}
	if cfg.LowStockThreshold < 0 {
		cfg.LowStockThreshold = 0
	}
	return &cfg, nil
}

// IsProduction returns true when the engine runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
