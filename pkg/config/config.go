package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type GlobalConfig struct {
	AccessTokenTTL int    `env:"ACCESS_TOKEN_TTL" env-default:"10080"` // in minutes (7 days)
	ServerPort     string `env:"SERVER_PORT" env-default:"8000"`
}

// LoadGlobalConfig reads the settings shared by every service from the environment.
func LoadGlobalConfig() (*GlobalConfig, error) {
	var cfg GlobalConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}
	return &cfg, nil
}

// AccessTokenDuration returns AccessTokenTTL as a time.Duration.
func (c GlobalConfig) AccessTokenDuration() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Minute
}
