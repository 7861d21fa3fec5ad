package config

import (
	"fmt"

	"github.com/keshon/avtally/internal/digest"
	"github.com/keshon/avtally/internal/fs"

	"gopkg.in/yaml.v3"
)

const IsDev = false

const (
	DefaultBaselineFile = ".avtally-baseline.json"
	DefaultConfigFile   = "avtally.yaml"
	ExportExt           = ".txt"
)

const (
	DefaultHash     = digest.Default // "xxh3" | "md5" | "sha256"
	DefaultLogLevel = "warn"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the user-facing configuration file.
type Config struct {
	Hash         string   `yaml:"hash"`
	Workers      int      `yaml:"workers"`
	Exclude      []string `yaml:"exclude"`
	BaselineFile string   `yaml:"baseline_file"`
	Color        string   `yaml:"color"`
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path from fsys, or returns defaults when path is empty.
// If path is empty and DefaultConfigFile exists in the working directory, it is used.
func Load(fsys fs.FS, path string) (*Config, error) {
	if path == "" {
		if !fsys.Exists(DefaultConfigFile) {
			return Default(), nil
		}
		path = DefaultConfigFile
	}
	return LoadFile(fsys, path)
}

// LoadFile reads a YAML configuration file.
func LoadFile(fsys fs.FS, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Hash == "" {
		c.Hash = DefaultHash
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.BaselineFile == "" {
		c.BaselineFile = DefaultBaselineFile
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate rejects values no component can act on.
func (c *Config) Validate() error {
	if !digest.Valid(c.Hash) {
		return fmt.Errorf("config: hash %q not one of %v", c.Hash, digest.Algorithms())
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("config: color %q not one of auto, always, never", c.Color)
	}
	return nil
}
