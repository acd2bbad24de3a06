// Package config loads dirmap settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirmap/internal/treemap"
)

// FileName is the config file looked up in the working directory.
const FileName = "dirmap.yaml"

// Outputs lists the supported console output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json"}

// DefaultExcludes contains the default exclusion patterns.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`.*\.git/.*`, `.*node_modules/.*`}

// Config holds all configuration for dirmap.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Chart   ChartConfig   `yaml:"chart"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScanConfig holds traversal configuration.
type ScanConfig struct {
	Excludes []string `yaml:"excludes"` // Regex patterns
	Ignores  []string `yaml:"ignores"`  // Doublestar globs
	MinSize  string   `yaml:"min_size"` // e.g. "1KB"
	Workers  int      `yaml:"workers"`  // 0 = GOMAXPROCS
	FailFast bool     `yaml:"fail_fast"`
}

// ChartConfig holds treemap configuration.
type ChartConfig struct {
	Terminal    bool   `yaml:"terminal"`
	Columns     int    `yaml:"columns"`
	Rows        int    `yaml:"rows"`
	SVG         string `yaml:"svg"` // Output path, empty = no SVG
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	LegendLimit int    `yaml:"legend_limit"` // 0 = unlimited
	Colors      string `yaml:"colors"`       // "order" or "hash"
}

// OutputConfig holds console output configuration.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Excludes: slices.Clone(DefaultExcludes),
			Ignores:  []string{},
			MinSize:  "0B",
		},
		Chart: ChartConfig{
			Terminal:    true,
			Columns:     80,
			Rows:        24,
			Width:       treemap.DefaultWidth,
			Height:      treemap.DefaultHeight,
			LegendLimit: treemap.DefaultLegendLimit,
			Colors:      string(treemap.ColorsByOrder),
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults if no config file
		}

		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads dirmap.yaml from dir, or returns the defaults.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Validate checks the configuration for values the scan or chart cannot use.
func (c *Config) Validate() error {
	if !slices.Contains(Outputs, c.Output.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output.Format, Outputs)
	}

	if _, err := treemap.ParseColorMode(c.Chart.Colors); err != nil {
		return err
	}

	if c.Scan.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if c.Chart.LegendLimit < 0 {
		return errors.New("legend limit cannot be negative")
	}

	if c.Chart.Columns <= 0 || c.Chart.Rows <= 0 {
		return fmt.Errorf("invalid terminal chart size %dx%d", c.Chart.Columns, c.Chart.Rows)
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Chart.Width, c.Chart.Height)
	}

	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec // Config is not secret
}
