package cli

import (
	"time"

	"github.com/mcoot/kingdom-bot/internal/config"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string        `env:"KBOT_SERVER"  envDefault:"http://localhost:3000"`
	Output    string        `env:"KBOT_OUTPUT"  envDefault:"text"`
	Timeout   time.Duration `env:"KBOT_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns a Config populated from the environment
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
