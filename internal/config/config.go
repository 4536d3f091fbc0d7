package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBSource       string `env:"DB_SOURCE,required"`
	Port           string `env:"SERVER_PORT" envDefault:"8080"`
	Env            string `env:"ENVIRONMENT" envDefault:"development"`
	NumberPrefix   string `env:"AGREEMENT_NUMBER_PREFIX" envDefault:"CHIOMA"`
	ExpirySchedule string `env:"EXPIRY_SWEEP_SCHEDULE" envDefault:"@hourly"`
}

// Load reads an optional .env file, then parses configuration from the
// environment. Missing DB_SOURCE is a hard error.
func Load() (*Config, error) {
	// .env is optional; production supplies real environment variables.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config parse failed: %w", err)
	}
	return &cfg, nil
}
