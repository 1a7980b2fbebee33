// Package config loads facet settings from a TOML file.
//
// A missing key keeps its default, so an empty file is a valid config:
//
//	tolerance    = 1e-6
//	default_kind = "faces"
//	eval_timeout = "5s"
//	log_level    = "info"
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/selector"
	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config holds the user-tunable settings.
type Config struct {
	Tolerance   float64 `toml:"tolerance"`
	DefaultKind string  `toml:"default_kind"`
	EvalTimeout string  `toml:"eval_timeout"`
	LogLevel    string  `toml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Tolerance:   selector.DefaultTolerance,
		DefaultKind: kernel.KindFace.Plural(),
		EvalTimeout: engine.EvalTimeout.String(),
		LogLevel:    logrus.InfoLevel.String(),
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Tolerance <= 0 {
		result = multierror.Append(result, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	if _, ok := kernel.ParseKind(c.DefaultKind); !ok {
		result = multierror.Append(result, fmt.Errorf("default_kind: unknown entity kind %q", c.DefaultKind))
	}
	if d, err := time.ParseDuration(c.EvalTimeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("eval_timeout: %w", err))
	} else if d <= 0 {
		result = multierror.Append(result, fmt.Errorf("eval_timeout must be positive, got %s", c.EvalTimeout))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}
	return result.ErrorOrNil()
}

// Timeout returns the evaluation timeout, or the engine default if the
// setting does not parse.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil || d <= 0 {
		return engine.EvalTimeout
	}
	return d
}

// Kind returns the default entity kind, falling back to faces.
func (c *Config) Kind() kernel.ShapeKind {
	if k, ok := kernel.ParseKind(c.DefaultKind); ok {
		return k
	}
	return kernel.KindFace
}

// EngineOptions translates the settings into engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTolerance(c.Tolerance),
		engine.WithDefaultKind(c.Kind()),
		engine.WithTimeout(c.Timeout()),
	}
}
