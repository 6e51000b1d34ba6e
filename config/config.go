// Package config loads client settings from a YAML file and/or environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
)

// Config is the root client configuration.
// Sources, highest priority first:
//  1. explicit path (--config flag);
//  2. CONFIG_PATH;
//  3. environment variables only.
//
// Environment variables always overlay values read from a file.
type Config struct {
	Env   string      `yaml:"env" env:"TALENTIQ_ENV" env-default:"local"`
	API   APIConfig   `yaml:"api"`
	Store StoreConfig `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`
}

// APIConfig describes how to reach the backend.
type APIConfig struct {
	URL       string        `yaml:"url" env:"TALENTIQ_API_URL" env-default:"http://localhost:8000"`
	Timeout   time.Duration `yaml:"timeout" env:"TALENTIQ_HTTP_TIMEOUT" env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"TALENTIQ_USER_AGENT" env-default:"talentiq-go"`
}

// StoreConfig picks where the session is persisted.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"TALENTIQ_STORE" env-default:"bolt"`
	Path    string `yaml:"path" env:"TALENTIQ_STORE_PATH" env-default:"talentiq.db"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"TALENTIQ_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"TALENTIQ_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"TALENTIQ_REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"TALENTIQ_REDIS_PREFIX" env-default:"talentiq:"`
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration: explicit path, then CONFIG_PATH, then env only.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreBolt, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, bolt or redis)", c.Store.Backend)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("negative http timeout %s", c.API.Timeout)
	}
	return nil
}
