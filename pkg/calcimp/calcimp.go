package calcimp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/boreimp/internal/acoustics"
	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/ctxlog"
	"github.com/specialistvlad/boreimp/internal/structured"
	"github.com/specialistvlad/boreimp/internal/sweep"
	"github.com/specialistvlad/boreimp/internal/topology"
)

type (
	// Bore is a resolved, marker-free segment sequence.
	Bore = bore.Bore
	// Tuple is one (frontRadius, backRadius, length, comment) entry.
	Tuple = bore.Tuple
	// Format names an input dialect.
	Format = bore.Format
	// RadiationMode selects the open-end load.
	RadiationMode = acoustics.RadiationMode
	// Result holds the frequency, real, imaginary and magnitude sequences.
	Result = sweep.Result
)

const (
	FormatAuto       Format = 0
	FormatCanonical         = bore.FormatCanonical
	FormatStructured        = bore.FormatStructured

	RadiationPipe   = acoustics.RadiationPipe
	RadiationBaffle = acoustics.RadiationBaffle
	RadiationNone   = acoustics.RadiationNone
)

// Error kinds, usable with errors.Is.
var (
	ErrSyntax     = bore.ErrSyntax
	ErrExpression = bore.ErrExpression
	ErrStructure  = bore.ErrStructure
	ErrValue      = bore.ErrValue
	ErrIO         = bore.ErrIO
)

// Options controls loading and the sweep.
type Options struct {
	MaxFrequency float64
	Step         float64
	// Points overrides Step when positive.
	Points           int
	Temperature      float64
	Radiation        RadiationMode
	WallLoss         bool
	SectionVariation bool
	// SubdivisionStep is the taper cell length in mm for section variation.
	SubdivisionStep float64
	// Valves forces branch routes by name: true takes the branch group.
	Valves map[string]bool
	// Workers bounds the sweep goroutines; 0 means GOMAXPROCS.
	Workers int
	// Format overrides detection when not FormatAuto.
	Format Format
}

// DefaultOptions returns a 2.5 Hz grid up to 2 kHz at 24 °C with pipe
// radiation and wall losses.
func DefaultOptions() Options {
	ac := acoustics.DefaultConfig()
	return Options{
		MaxFrequency:    2000,
		Step:            2.5,
		Temperature:     ac.Temperature,
		Radiation:       ac.Radiation,
		WallLoss:        ac.WallLoss,
		SubdivisionStep: ac.SubdivisionStep,
	}
}

func (o Options) engineConfig() acoustics.Config {
	return acoustics.Config{
		Temperature:      o.Temperature,
		Radiation:        o.Radiation,
		WallLoss:         o.WallLoss,
		SectionVariation: o.SectionVariation,
		SubdivisionStep:  o.SubdivisionStep,
	}
}

func (o Options) sweepParams() sweep.Params {
	return sweep.Params{
		MaxFrequency: o.MaxFrequency,
		Step:         o.Step,
		Points:       o.Points,
		Workers:      o.Workers,
	}
}

// ParseBore reads a bore from content. name is used for format detection
// and error messages only.
func ParseBore(ctx context.Context, name string, content []byte, opts Options) (*Bore, error) {
	format := opts.Format
	if format == FormatAuto {
		format = bore.DetectFormat(name, content)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading bore", "file", name, "format", format.String())

	var (
		b   *bore.Bore
		err error
	)
	switch format {
	case bore.FormatCanonical:
		b, err = bore.ReadCanonical(bytes.NewReader(content))
	case bore.FormatStructured:
		b, err = resolveStructured(ctx, content, opts)
	default:
		err = bore.Valuef(0, "unknown bore format %s", format)
	}
	if err != nil {
		return nil, bore.WithFile(err, name)
	}
	return b, nil
}

func resolveStructured(ctx context.Context, content []byte, opts Options) (*bore.Bore, error) {
	doc, err := structured.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	res, err := topology.Resolve(ctx, doc, topology.Options{Engaged: opts.Valves})
	if err != nil {
		return nil, err
	}
	return res.Bore, nil
}

// LoadBore reads and resolves the bore file at path.
func LoadBore(ctx context.Context, path string, opts Options) (*Bore, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, bore.IO(path, err)
	}
	return ParseBore(ctx, path, content, opts)
}

// Compute sweeps an already loaded bore.
func Compute(ctx context.Context, b *Bore, opts Options) (*Result, error) {
	e, err := acoustics.NewEngine(b, opts.engineConfig())
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Engine ready",
		"segments", b.Len(),
		"cells", e.Cells(),
		"length_mm", b.TotalLength(),
		"mouth_radius_mm", b.TerminalRadius(),
		"sound_speed", e.Air().SoundSpeed,
		"radiation", opts.Radiation.String(),
		"wall_loss", opts.WallLoss,
		"section_variation", opts.SectionVariation,
	)
	return sweep.Run(ctx, e, opts.sweepParams())
}

// ComputeImpedance loads the bore at path and returns its input impedance
// over the configured grid. All parsing and resolution completes before
// the first frequency is evaluated.
func ComputeImpedance(ctx context.Context, path string, opts Options) (*Result, error) {
	b, err := LoadBore(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	res, err := Compute(ctx, b, opts)
	if err != nil {
		return nil, bore.WithFile(err, path)
	}
	return res, nil
}

// DumpCanonicalSegments returns the resolved bore of path without running
// any acoustic computation.
func DumpCanonicalSegments(ctx context.Context, path string, opts Options) ([]Tuple, error) {
	b, err := LoadBore(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return b.Tuples(), nil
}

// CanonicalPath returns the default conversion target for inputPath: the
// same directory and base name with the canonical extension.
func CanonicalPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + bore.CanonicalExt
}

// ConvertStructuredToCanonical resolves inputPath and writes the
// equivalent canonical file to outputPath, or to CanonicalPath(inputPath)
// when outputPath is empty. The output is written to a temporary file
// first and renamed, so a failed conversion leaves no partial file behind.
func ConvertStructuredToCanonical(ctx context.Context, inputPath, outputPath string, opts Options) error {
	if outputPath == "" {
		outputPath = CanonicalPath(inputPath)
	}
	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		return bore.Valuef(0, "conversion output %s would overwrite its input", outputPath)
	}

	b, err := LoadBore(ctx, inputPath, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	header := fmt.Sprintf("converted from %s", filepath.Base(inputPath))
	if err := bore.WriteCanonical(&buf, b, header); err != nil {
		return bore.IO(outputPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".boreimp-*")
	if err != nil {
		return bore.IO(outputPath, err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return bore.IO(outputPath, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return bore.IO(outputPath, err)
	}
	if err := tmp.Close(); err != nil {
		return bore.IO(outputPath, err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return bore.IO(outputPath, err)
	}

	ctxlog.FromContext(ctx).Debug("Wrote canonical bore", "input", inputPath, "output", outputPath, "segments", b.Len())
	return nil
}
