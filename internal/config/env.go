// Package config loads server settings from the environment and the
// optional YAML bot config file.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds the settings read from the environment
type ServerConfig struct {
	Port             int           `env:"PORT"              envDefault:"3000"`
	Host             string        `env:"HOST"`
	StorageType      string        `env:"STORAGE_TYPE"      envDefault:"sqlite"`
	RedisURL         string        `env:"REDIS_URL"`
	SQLitePath       string        `env:"SQLITE_PATH"       envDefault:"data/game.db"`
	BotConfigPath    string        `env:"BOT_CONFIG"`
	LogLevel         string        `env:"LOG_LEVEL"         envDefault:"info"`
	SerializeSenders bool          `env:"SERIALIZE_SENDERS" envDefault:"false"`
	ExpectationTTL   time.Duration `env:"EXPECTATION_TTL"   envDefault:"5m"`
}

// ParseEnv loads configuration from environment variables into target
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerConfig reads and validates the server settings
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency
func (c ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.StorageType {
	case "memory", "sqlite":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory, redis or sqlite, got %q", c.StorageType)
	}
	if c.StorageType == "sqlite" && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH required when STORAGE_TYPE=sqlite")
	}
	if c.ExpectationTTL <= 0 {
		return fmt.Errorf("EXPECTATION_TTL must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel parses LOG_LEVEL
func (c ServerConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
