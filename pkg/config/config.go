// Package config implements calc configuration loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SourceDefault is reported by Load when no config file was found.
const SourceDefault = "default"

// Config holds the settings for the calc CLI.
type Config struct {
	Prompt      string   `yaml:"prompt"`
	HistoryFile string   `yaml:"history_file"`
	Color       string   `yaml:"color"`
	Pretty      bool     `yaml:"pretty"`
	MaxDepth    int      `yaml:"max_depth"`
	Debug       bool     `yaml:"debug"`
	Prelude     []string `yaml:"prelude,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:      "calc> ",
		HistoryFile: filepath.Join("~", ".calc", "history"),
		Color:       ColorAuto,
		Pretty:      true,
		MaxDepth:    256,
	}
}

// Error reports a config file that exists but cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load loads the configuration for projectDir.
// Precedence: project (.calc.yaml) → user (~/.calc/config.yaml) → defaults.
// It returns the config and the path it came from, or SourceDefault.
// A missing file falls through to the next location; a file that is present
// but invalid is an error.
func Load(projectDir string) (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}
	return LoadFrom(projectDir, homeDir)
}

// LoadFrom is Load with an explicit home directory. An empty homeDir skips
// the user config.
func LoadFrom(projectDir, homeDir string) (*Config, string, error) {
	candidates := []string{filepath.Join(projectDir, ".calc.yaml")}
	if homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, ".calc", "config.yaml"))
	}
	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return Default(), SourceDefault, nil
}

// LoadFile reads one config file. Fields it omits keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &Error{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never; got %q", c.Color)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative; got %d", c.MaxDepth)
	}
	return nil
}

// ExpandHome replaces a leading ~ in path with homeDir.
func ExpandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
