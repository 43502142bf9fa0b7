package sweep

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/ctxlog"
)

// ReferenceImpedance is the 0 dB level of MagnitudeDB.
const ReferenceImpedance = 1.0

// Model computes the input impedance at one frequency. Implementations
// must be safe for concurrent use.
type Model interface {
	InputImpedance(freq float64) (complex128, error)
}

// Params describes the frequency grid and the worker pool.
type Params struct {
	MaxFrequency float64
	Step         float64
	// Points overrides Step when positive.
	Points int
	// Workers bounds the goroutines; 0 means GOMAXPROCS.
	Workers int
}

// Sample is one evaluated frequency.
type Sample struct {
	Frequency   float64
	Impedance   complex128
	MagnitudeDB float64
}

// Result holds four equal-length sequences, ascending in frequency.
type Result struct {
	Frequency   []float64
	Real        []float64
	Imag        []float64
	MagnitudeDB []float64
}

// Len returns the number of samples.
func (r *Result) Len() int {
	return len(r.Frequency)
}

// Samples returns the result as a slice of samples.
func (r *Result) Samples() []Sample {
	out := make([]Sample, r.Len())
	for i := range out {
		out[i] = Sample{
			Frequency:   r.Frequency[i],
			Impedance:   complex(r.Real[i], r.Imag[i]),
			MagnitudeDB: r.MagnitudeDB[i],
		}
	}
	return out
}

// MagnitudeDB returns 20 log10(|z| / ReferenceImpedance).
func MagnitudeDB(z complex128) float64 {
	return 20 * math.Log10(cmplx.Abs(z)/ReferenceImpedance)
}

// Run evaluates m on the grid described by p. The context is checked once
// per frequency; a cancelled sweep returns the context error and no
// partial result.
func Run(ctx context.Context, m Model, p Params) (*Result, error) {
	freqs, err := Frequencies(p.MaxFrequency, p.Step, p.Points)
	if err != nil {
		return nil, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(freqs) {
		workers = len(freqs)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting sweep", "points", len(freqs), "workers", workers,
		"first_hz", freqs[0], "last_hz", freqs[len(freqs)-1])

	res := &Result{
		Frequency:   freqs,
		Real:        make([]float64, len(freqs)),
		Imag:        make([]float64, len(freqs)),
		MagnitudeDB: make([]float64, len(freqs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range freqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			z, err := m.InputImpedance(f)
			if err != nil {
				return err
			}
			db := MagnitudeDB(z)
			if math.IsInf(db, 0) || math.IsNaN(db) {
				return bore.Structuref(0, "impedance magnitude at %g Hz is not finite", f)
			}
			res.Real[i], res.Imag[i], res.MagnitudeDB[i] = real(z), imag(z), db
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Catches a cancellation that arrived after the last worker started.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Sweep finished", "points", res.Len())
	return res, nil
}
