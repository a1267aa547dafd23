package config

import (
	"fmt"
	"log"
	"net"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"seungpyo.lee/SurveyBuilder/pkg/config"
)

// SurveyConfig extends GlobalConfig with the survey-service specific settings.
type SurveyConfig struct {
	config.GlobalConfig
	PostgreConnectionString string `env:"POSTGRE_CONNECTION_STRING" env-required:"true"`
	RedisDBURL              string `env:"REDIS_DB_URL"`
	RedisDBPort             string `env:"REDIS_DB_PORT" env-default:"6379"`
	RedisDBPassword         string `env:"REDIS_DB_PASSWORD"`
	RedisDB                 int    `env:"REDIS_DB" env-default:"0"`
	RedisMaxRetries         int    `env:"REDIS_MAX_RETRIES" env-default:"3"`
	RedisPoolSize           int    `env:"REDIS_POOL_SIZE" env-default:"10"`
	JWTSecretKey            string `env:"JWT_SECRET_KEY" env-required:"true"`
	PublicDir               string `env:"PUBLIC_DIR" env-default:"public"`
	AppURL                  string `env:"APP_URL"`
	LogDir                  string `env:"LOG_DIR"`
	LogLevel                string `env:"LOG_LEVEL" env-default:"info"`

	// EnforceUpdateOwnership rejects survey updates from non-owners.
	// Turning it off restores the legacy behaviour where only show and
	// destroy are checked.
	EnforceUpdateOwnership bool `env:"SURVEY_ENFORCE_UPDATE_OWNERSHIP" env-default:"true"`
}

func LoadSurveyConfig() (*SurveyConfig, error) {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}
	var cfg SurveyConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("critical config missing: %w", err)
	}
	return &cfg, nil
}

// RedisAddr returns host:port of the token cache, or "" when Redis is not configured.
func (c *SurveyConfig) RedisAddr() string {
	if c.RedisDBURL == "" {
		return ""
	}
	return net.JoinHostPort(c.RedisDBURL, c.RedisDBPort)
}
