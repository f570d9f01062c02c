// Package config loads client settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	API     APIConfig
	Session SessionConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	// File is where the session state persists between runs. Empty
	// disables persistence.
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("QGEN_ENV")

	cfg.API = APIConfig{
		BaseURL: v.GetString("QGEN_API_URL"),
		Timeout: v.GetDuration("QGEN_API_TIMEOUT"),
	}
	cfg.Session = SessionConfig{
		File: v.GetString("QGEN_SESSION_FILE"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("QGEN_LOG_LEVEL"),
		Format: v.GetString("QGEN_LOG_FORMAT"),
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("QGEN_API_URL is required")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("QGEN_ENV", EnvDevelopment)
	v.SetDefault("QGEN_API_TIMEOUT", 30*time.Second)
	v.SetDefault("QGEN_LOG_LEVEL", "info")
	v.SetDefault("QGEN_LOG_FORMAT", "json")

	if home, err := os.UserHomeDir(); err == nil {
		v.SetDefault("QGEN_SESSION_FILE", filepath.Join(home, ".qgen", "session.json"))
	}
}
