package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads, populates, and validates the service configuration.
//
// The loading sequence is:
//  1. Enforce UTC process time to prevent drift bugs across NOAA/vision
//     timestamps.
//  2. Load a .env file if present (non-fatal if absent; existing environment
//     variables are never overridden).
//  3. Populate the Config struct from envconfig tags.
//  4. Validate the struct; any failure is fatal to startup (fail fast).
func Load() (*Config, error) {
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.Budget.CheckSafetyMargin >= cfg.Budget.DailyCheckBudget {
		return nil, fmt.Errorf("BUDGET_CHECK_SAFETY_MARGIN (%d) must be below BUDGET_DAILY_CHECKS (%d)",
			cfg.Budget.CheckSafetyMargin, cfg.Budget.DailyCheckBudget)
	}

	return &cfg, nil
}
