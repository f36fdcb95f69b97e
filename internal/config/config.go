package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration, loaded from environment
// variables.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Roadmap Auth Client"`
	Env     string `env:"ENV" envDefault:"DEV"`

	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
}

// New loads and validates configuration from the environment.
func New() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config.New: %w", err)
	}
	if c.SupabaseURL == "" {
		return Config{}, fmt.Errorf("config.New: SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return Config{}, fmt.Errorf("config.New: SUPABASE_ANON_KEY is required")
	}
	return c, nil
}
