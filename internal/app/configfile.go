package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig is a sweep file, YAML or HCL. Unset keys leave the
// configuration untouched.
type FileConfig struct {
	MaxFrequency     *float64        `yaml:"max_frequency"`
	Step             *float64        `yaml:"step"`
	Points           *int            `yaml:"points"`
	Temperature      *float64        `yaml:"temperature"`
	Radiation        *string         `yaml:"radiation"`
	WallLoss         *bool           `yaml:"wall_loss"`
	SectionVariation *bool           `yaml:"section_variation"`
	SubdivisionStep  *float64        `yaml:"subdivision_step"`
	Valves           map[string]bool `yaml:"valves"`
	Workers          *int            `yaml:"workers"`
	Format           *string         `yaml:"format"`
	LogLevel         *string         `yaml:"log_level"`
	LogFormat        *string         `yaml:"log_format"`
}

// Flag names a FileConfig key yields to when the flag was set explicitly.
const (
	FlagMaxFrequency     = "max-freq"
	FlagStep             = "step"
	FlagPoints           = "points"
	FlagTemperature      = "temperature"
	FlagRadiation        = "radiation"
	FlagWallLoss         = "wall-loss"
	FlagSectionVariation = "section-variation"
	FlagSubdivisionStep  = "subdivision-step"
	FlagValve            = "valve"
	FlagWorkers          = "workers"
	FlagFormat           = "format"
	FlagLogLevel         = "log-level"
	FlagLogFormat        = "log-format"
)

// LoadConfigFile reads a sweep file. Files ending in .hcl are decoded as
// HCL, anything else as YAML. Unknown keys are rejected.
func LoadConfigFile(path string) (*FileConfig, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return loadHCLConfigFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies the keys present in the file into cfg, skipping those whose
// flag was set on the command line. Valves merge per name, with explicit
// -valve values winning.
func (fc *FileConfig) Apply(cfg *Config, explicit func(flag string) bool) {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	apply(explicit, FlagMaxFrequency, &cfg.MaxFrequency, fc.MaxFrequency)
	apply(explicit, FlagStep, &cfg.Step, fc.Step)
	apply(explicit, FlagPoints, &cfg.Points, fc.Points)
	apply(explicit, FlagTemperature, &cfg.Temperature, fc.Temperature)
	apply(explicit, FlagRadiation, &cfg.Radiation, fc.Radiation)
	apply(explicit, FlagWallLoss, &cfg.WallLoss, fc.WallLoss)
	apply(explicit, FlagSectionVariation, &cfg.SectionVariation, fc.SectionVariation)
	apply(explicit, FlagSubdivisionStep, &cfg.SubdivisionStep, fc.SubdivisionStep)
	apply(explicit, FlagWorkers, &cfg.Workers, fc.Workers)
	apply(explicit, FlagFormat, &cfg.Format, fc.Format)
	apply(explicit, FlagLogLevel, &cfg.LogLevel, fc.LogLevel)
	apply(explicit, FlagLogFormat, &cfg.LogFormat, fc.LogFormat)

	if len(fc.Valves) > 0 {
		merged := make(map[string]bool, len(fc.Valves)+len(cfg.Valves))
		for name, on := range fc.Valves {
			merged[name] = on
		}
		for name, on := range cfg.Valves {
			merged[name] = on
		}
		cfg.Valves = merged
	}
}

func apply[T any](explicit func(string) bool, flag string, dst, v *T) {
	if v != nil && !explicit(flag) {
		*dst = *v
	}
}
