package app

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/specialistvlad/boreimp/internal/acoustics"
	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/pkg/calcimp"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// BorePath is a bore file or a directory of bore files.
	BorePath string
	// OutputPath is the result file, or directory in batch mode. Empty
	// writes a single result to the app output and batch results next to
	// each input.
	OutputPath string
	// ConvertPath writes the canonical form of BorePath instead of sweeping.
	ConvertPath string
	// Dump prints the resolved segments instead of sweeping.
	Dump bool
	// Format forces the bore dialect: canonical, structured, or empty
	// and "auto" to detect it per file.
	Format string

	MaxFrequency     float64
	Step             float64
	Points           int
	Temperature      float64
	Radiation        string
	WallLoss         bool
	SectionVariation bool
	SubdivisionStep  float64
	Valves           map[string]bool
	Workers          int

	LogFormat string
	LogLevel  string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	opts := calcimp.DefaultOptions()
	return Config{
		MaxFrequency:    opts.MaxFrequency,
		Step:            opts.Step,
		Temperature:     opts.Temperature,
		Radiation:       opts.Radiation.String(),
		WallLoss:        opts.WallLoss,
		SubdivisionStep: opts.SubdivisionStep,
		Format:          "auto",
		LogFormat:       "text",
		LogLevel:        "info",
	}
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BorePath == "" {
		return nil, errors.New("BorePath is a required configuration field and cannot be empty")
	}
	if !(cfg.MaxFrequency > 0) {
		return nil, fmt.Errorf("max frequency must be positive, got %g", cfg.MaxFrequency)
	}
	if cfg.Points < 0 {
		return nil, fmt.Errorf("points must not be negative, got %d", cfg.Points)
	}
	if cfg.Points == 0 && !(cfg.Step > 0) {
		return nil, fmt.Errorf("step must be positive when points is 0, got %g", cfg.Step)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if !(cfg.SubdivisionStep > 0) {
		return nil, fmt.Errorf("subdivision step must be positive, got %g", cfg.SubdivisionStep)
	}
	if _, err := acoustics.ParseRadiationMode(cfg.Radiation); err != nil {
		return nil, err
	}
	if _, err := parseFormat(cfg.Format); err != nil {
		return nil, err
	}
	if err := checkLogSettings(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	if cfg.Dump && cfg.ConvertPath != "" {
		return nil, errors.New("dump and convert cannot be used together")
	}
	if cfg.ConvertPath != "" && cfg.OutputPath != "" {
		return nil, errors.New("convert writes to its own path; output cannot be set as well")
	}

	cfg.Valves = maps.Clone(cfg.Valves)
	return &cfg, nil
}

// Options translates the configuration into library options.
func (c *Config) Options() (calcimp.Options, error) {
	mode, err := acoustics.ParseRadiationMode(c.Radiation)
	if err != nil {
		return calcimp.Options{}, err
	}
	format, err := parseFormat(c.Format)
	if err != nil {
		return calcimp.Options{}, err
	}
	return calcimp.Options{
		MaxFrequency:     c.MaxFrequency,
		Step:             c.Step,
		Points:           c.Points,
		Temperature:      c.Temperature,
		Radiation:        mode,
		WallLoss:         c.WallLoss,
		SectionVariation: c.SectionVariation,
		SubdivisionStep:  c.SubdivisionStep,
		Valves:           maps.Clone(c.Valves),
		Workers:          c.Workers,
		Format:           format,
	}, nil
}

// parseFormat maps a dialect name onto calcimp.Format. Empty and "auto"
// leave detection on.
func parseFormat(s string) (calcimp.Format, error) {
	if s == "" || strings.EqualFold(s, "auto") {
		return calcimp.FormatAuto, nil
	}
	return bore.ParseFormat(s)
}
