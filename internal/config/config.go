// Package config loads the .harness.yaml project configuration used by
// the harness command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/harness/setget"
)

// FileName is the configuration file looked up in the working
// directory when no path is given.
const FileName = ".harness.yaml"

// Format is an output format of harness lint.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config is the decoded .harness.yaml.
type Config struct {
	Defaults Defaults `yaml:"defaults"`
	Lint     Lint     `yaml:"lint"`
}

// Defaults override the setter and getter defaults applied to case
// files. Empty fields keep the built-in value.
type Defaults struct {
	Getter         string `yaml:"getter,omitempty"`
	Setter         string `yaml:"setter,omitempty"`
	Assert         string `yaml:"assert,omitempty"`
	SetterAssert   string `yaml:"setter_assert,omitempty"`
	PropertyAssert string `yaml:"property_assert,omitempty"`
}

// Lint configures harness lint.
type Lint struct {
	Format Format `yaml:"format,omitempty"`

	// Strict makes warnings fail the run.
	Strict bool `yaml:"strict,omitempty"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	return &Config{Lint: Lint{Format: FormatText}}
}

// Load reads the configuration at path. A missing file yields the
// defaults when path is the default FileName.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks formats and comparator names.
func (c *Config) Validate() error {
	switch c.Lint.Format {
	case "":
		c.Lint.Format = FormatText
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid lint.format %q: must be 'text' or 'json'", c.Lint.Format)
	}

	for key, name := range map[string]string{
		"defaults.assert":          c.Defaults.Assert,
		"defaults.setter_assert":   c.Defaults.SetterAssert,
		"defaults.property_assert": c.Defaults.PropertyAssert,
	} {
		if name == "" {
			continue
		}
		if _, ok := setget.Builtin(name); !ok {
			return fmt.Errorf("invalid %s %q: not a built-in comparator", key, name)
		}
	}
	return nil
}

// SetterAndGetter returns the defaults for a setget.Normalizer.
func (c *Config) SetterAndGetter() setget.Defaults {
	return setget.Defaults{
		Getter:         c.Defaults.Getter,
		Setter:         c.Defaults.Setter,
		Assert:         c.Defaults.Assert,
		SetterAssert:   c.Defaults.SetterAssert,
		PropertyAssert: c.Defaults.PropertyAssert,
	}
}
