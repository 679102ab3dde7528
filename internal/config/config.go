// Package config loads surface-level settings from the environment. Only the
// API server and CLI read it; the engine packages take every parameter as an
// explicit argument and never touch the environment.
package config

import (
	"os"
	"strconv"

	"vvengine/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Defaults DefaultsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DefaultsConfig holds default statistical parameters for the surfaces.
// Callers can always override them per request.
type DefaultsConfig struct {
	Confidence  float64
	Reliability float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Defaults: DefaultsConfig{
			Confidence:  0.95,
			Reliability: 0.90,
		},
	}

	if v := os.Getenv("DEFAULT_CONFIDENCE"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("DEFAULT_CONFIDENCE must be a number, got " + v)
		}
		cfg.Defaults.Confidence = c
	}
	if v := os.Getenv("DEFAULT_RELIABILITY"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("DEFAULT_RELIABILITY must be a number, got " + v)
		}
		cfg.Defaults.Reliability = r
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if d := c.Defaults.Confidence; d <= 0 || d >= 1 {
		return errors.ConfigInvalid("DEFAULT_CONFIDENCE must be in (0,1), got " + strconv.FormatFloat(d, 'g', -1, 64))
	}
	if d := c.Defaults.Reliability; d <= 0 || d >= 1 {
		return errors.ConfigInvalid("DEFAULT_RELIABILITY must be in (0,1), got " + strconv.FormatFloat(d, 'g', -1, 64))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
