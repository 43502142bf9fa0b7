package app

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfigFile is the HCL form of FileConfig. Valve states are blocks:
//
//	valve "valve1" {
//	  engaged = true
//	}
type hclConfigFile struct {
	MaxFrequency     *float64    `hcl:"max_frequency,optional"`
	Step             *float64    `hcl:"step,optional"`
	Points           *int        `hcl:"points,optional"`
	Temperature      *float64    `hcl:"temperature,optional"`
	Radiation        *string     `hcl:"radiation,optional"`
	WallLoss         *bool       `hcl:"wall_loss,optional"`
	SectionVariation *bool       `hcl:"section_variation,optional"`
	SubdivisionStep  *float64    `hcl:"subdivision_step,optional"`
	Workers          *int        `hcl:"workers,optional"`
	Format           *string     `hcl:"format,optional"`
	LogLevel         *string     `hcl:"log_level,optional"`
	LogFormat        *string     `hcl:"log_format,optional"`
	Valves           []*hclValve `hcl:"valve,block"`
}

type hclValve struct {
	Name    string `hcl:"name,label"`
	Engaged bool   `hcl:"engaged"`
}

func loadHCLConfigFile(path string) (*FileConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var hc hclConfigFile
	if diags := gohcl.DecodeBody(file.Body, nil, &hc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return hc.fileConfig()
}

func (hc *hclConfigFile) fileConfig() (*FileConfig, error) {
	fc := &FileConfig{
		MaxFrequency:     hc.MaxFrequency,
		Step:             hc.Step,
		Points:           hc.Points,
		Temperature:      hc.Temperature,
		Radiation:        hc.Radiation,
		WallLoss:         hc.WallLoss,
		SectionVariation: hc.SectionVariation,
		SubdivisionStep:  hc.SubdivisionStep,
		Workers:          hc.Workers,
		Format:           hc.Format,
		LogLevel:         hc.LogLevel,
		LogFormat:        hc.LogFormat,
	}
	for _, v := range hc.Valves {
		if _, dup := fc.Valves[v.Name]; dup {
			return nil, fmt.Errorf("valve %q is configured more than once", v.Name)
		}
		if fc.Valves == nil {
			fc.Valves = make(map[string]bool, len(hc.Valves))
		}
		fc.Valves[v.Name] = v.Engaged
	}
	return fc, nil
}
