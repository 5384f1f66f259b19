package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port          string `env:"PORT" envDefault:"4000"`
	DBPath        string `env:"DB_PATH" envDefault:"./scenarios.db"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"./migrations"`
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config from environment: %w", err)
	}

	return cfg, nil
}
