// Package config handles configuration loading and shared defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Provider Provider `yaml:"provider,omitempty"`
	Analysis Analysis `yaml:"analysis,omitempty"`
	Output   Output   `yaml:"output,omitempty"`
}

// Provider configures the DEM source.
type Provider struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	Resolution string `yaml:"resolution,omitempty"` // "30m" or "90m"
	LocalDir   string `yaml:"local_dir,omitempty"`  // local GeoTIFF tiles instead of HTTP
}

// Analysis holds the flat-area extraction parameters.
type Analysis struct {
	SlopeThresholdDegrees float64 `yaml:"slope_threshold,omitempty"`
	BoundaryMargin        float64 `yaml:"boundary_margin,omitempty"`
}

// Output configures result destinations.
type Output struct {
	GeoJSON string `yaml:"geojson,omitempty"`
	Overlay string `yaml:"overlay,omitempty"` // classified slope webp + worldfile
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.Provider.Resolution == "" {
		c.Provider.Resolution = "30m"
	}
	if c.Analysis.SlopeThresholdDegrees <= 0 {
		c.Analysis.SlopeThresholdDegrees = 2.0
	}
	if c.Analysis.BoundaryMargin == 0 {
		c.Analysis.BoundaryMargin = 0.001
	}
	if c.Output.GeoJSON == "" {
		c.Output.GeoJSON = "flat.geojson"
	}
}

// Validate rejects unusable parameter combinations.
func (c *Config) Validate() error {
	if c.Analysis.SlopeThresholdDegrees <= 0 {
		return fmt.Errorf("slope_threshold must be > 0, got %g", c.Analysis.SlopeThresholdDegrees)
	}
	if c.Analysis.BoundaryMargin < 0 {
		return fmt.Errorf("boundary_margin must be >= 0, got %g", c.Analysis.BoundaryMargin)
	}
	if c.Provider.Resolution != "30m" && c.Provider.Resolution != "90m" {
		return fmt.Errorf("resolution must be 30m or 90m, got %q", c.Provider.Resolution)
	}
	return nil
}
