// Package config loads process configuration for the eztrans command from
// the environment.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/eztrans/errors"
)

// DefaultInitKey is the init token the engine ships with.
const DefaultInitKey = "CSUSER123455"

// Config controls which engine to load and how to start it.
type Config struct {
	Library      string `env:"EZTRANS_LIBRARY"`
	Home         string `env:"EZTRANS_HOME"`
	InitKey      string `env:"EZTRANS_INIT_KEY"      envDefault:"CSUSER123455"`
	LogLevel     string `env:"EZTRANS_LOG_LEVEL"     envDefault:"warn"`
	OTelEndpoint string `env:"EZTRANS_OTEL_ENDPOINT"`
	Mode         int32  `env:"EZTRANS_MODE"          envDefault:"0"`
	OTelEnabled  bool   `env:"EZTRANS_OTEL_ENABLED"  envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// HomeDir returns the engine's dictionary directory: Home when set, else the
// Dat directory next to the library.
func (c Config) HomeDir() string {
	if c.Home != "" {
		return c.Home
	}
	if c.Library == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(c.Library), "Dat")
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// TracingEnabled reports whether spans should be exported.
func (c Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}

// Validate reports settings that make the engine impossible to start.
func (c Config) Validate() error {
	if c.Library == "" {
		return errors.InvalidInput(errors.PhaseLoad, "library path not set (EZTRANS_LIBRARY or -lib)")
	}
	if c.InitKey == "" {
		return errors.InvalidInput(errors.PhaseInit, "init key is empty")
	}
	if _, err := c.Level(); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "log level")
	}
	return nil
}
