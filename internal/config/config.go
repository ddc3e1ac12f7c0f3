// Package config loads service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"vault-data-api/internal/logging"
)

// Storage backends.
const (
	BackendPostgres   = "postgres"
	BackendClickhouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config is the full service configuration.
type Config struct {
	Backend string `yaml:"backend" default:"postgres" validate:"oneof=postgres clickhouse memory"`

	Postgres struct {
		DSN             string `yaml:"dsn"`
		MaxConns        int32  `yaml:"max_conns" default:"10" validate:"gte=0"`
		ApplicationName string `yaml:"application_name" default:"vault-data-api"`
	} `yaml:"postgres"`

	Clickhouse struct {
		DSN         string        `yaml:"dsn"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	} `yaml:"clickhouse"`

	Memory struct {
		FixturesPath string `yaml:"fixtures_path"`
	} `yaml:"memory"`

	HTTP struct {
		Addr            string        `yaml:"addr" default:":8080" validate:"required"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"http"`

	Buckets struct {
		SnapshotInterval time.Duration `yaml:"snapshot_interval" default:"15m" validate:"gt=0"`
	} `yaml:"buckets"`

	Log logging.Config `yaml:"log"`
}

var validate = validator.New()

// Load reads path (if it exists), applies defaults, env overrides and validation.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Clickhouse.DSN = v
	}
	if v := os.Getenv("FIXTURES_PATH"); v != "" {
		c.Memory.FixturesPath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field constraints and backend-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Backend == BackendPostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required for backend %q", c.Backend)
	}
	if c.Backend == BackendClickhouse && c.Clickhouse.DSN == "" {
		return fmt.Errorf("clickhouse.dsn is required for backend %q", c.Backend)
	}
	if c.Backend == BackendMemory && c.Memory.FixturesPath == "" {
		return fmt.Errorf("memory.fixtures_path is required for backend %q", c.Backend)
	}
	return nil
}
