// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config holds all runtime configuration for the server.
type Config struct {
	HTTP struct {
		Addr            string        `env:"HTTP_ADDR,default=:8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
	}

	Supabase struct {
		URL        string        `env:"SUPABASE_URL"`
		AnonKey    string        `env:"SUPABASE_ANON_KEY"`
		ServiceKey string        `env:"SUPABASE_SERVICE_KEY"`
		JWTSecret  string        `env:"SUPABASE_JWT_SECRET"`
		Timeout    time.Duration `env:"SUPABASE_TIMEOUT,default=30s"`
	}

	// Storage selects the persistence backend: supabase, postgres or memory.
	Storage struct {
		Backend     string `env:"STORAGE_BACKEND,default=supabase"`
		PostgresDSN string `env:"DATABASE_URL,default="`
	}

	// Pending is the on-disk slot for assessments captured before sign-in.
	Pending struct {
		Path string `env:"PENDING_BUFFER_PATH,default=pending_assessment.json"`
	}
}

// Load decodes configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
