package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration schema. Pointer fields distinguish
// "not set" from an explicit zero or false.
type FileConfig struct {
	Input struct {
		Properties string `yaml:"properties"`
		Leases     string `yaml:"leases"`
		Sheet      string `yaml:"sheet"`
	} `yaml:"input"`

	Output string `yaml:"output"`

	Date struct {
		Pivot *int `yaml:"pivot"`
	} `yaml:"date"`

	City struct {
		Default string `yaml:"default"`
	} `yaml:"city"`

	Owner struct {
		Default string   `yaml:"default"`
		Names   []string `yaml:"names"`
	} `yaml:"owner"`

	Leases struct {
		PositionalFallback *bool `yaml:"positionalFallback"`
		RequireSlash       *bool `yaml:"requireSlash"`
		Extensions         *bool `yaml:"extensions"`
	} `yaml:"leases"`

	Match struct {
		MinScore *int `yaml:"minScore"`
	} `yaml:"match"`

	Verbose *bool `yaml:"verbose"`
}

// LoadConfigFile reads a YAML configuration file. Unknown keys are rejected
// so a typo does not silently fall back to a default.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if fc.Input.Properties != "" {
		cfg.PropertiesInput = fc.Input.Properties
	}
	if fc.Input.Leases != "" {
		cfg.LeasesInput = fc.Input.Leases
	}
	if fc.Input.Sheet != "" {
		cfg.Sheet = fc.Input.Sheet
	}
	if fc.Output != "" {
		cfg.OutputDir = fc.Output
	}
	if fc.Date.Pivot != nil {
		cfg.YearPivot = *fc.Date.Pivot
	}
	if fc.City.Default != "" {
		cfg.DefaultCity = fc.City.Default
	}
	if fc.Owner.Default != "" {
		cfg.DefaultOwner = fc.Owner.Default
	}
	if len(fc.Owner.Names) > 0 {
		cfg.OwnerNames = append([]string(nil), fc.Owner.Names...)
	}
	if fc.Leases.PositionalFallback != nil {
		cfg.PositionalFallback = *fc.Leases.PositionalFallback
	}
	if fc.Leases.RequireSlash != nil {
		cfg.RequireSlash = *fc.Leases.RequireSlash
	}
	if fc.Leases.Extensions != nil {
		cfg.LeaseExtensions = *fc.Leases.Extensions
	}
	if fc.Match.MinScore != nil {
		cfg.MatchMinScore = *fc.Match.MinScore
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
}
