package acoustics

import (
	"math"
	"math/cmplx"

	"github.com/specialistvlad/boreimp/internal/bore"
)

const (
	mm = 1e-3
	// Remainders shorter than this (mm) are not emitted as cells.
	subdivisionEpsilon = 1e-10
	// maxCells bounds subdivision so a tiny step cannot exhaust memory.
	maxCells = 10_000_000
)

// Config selects the physics of an Engine.
type Config struct {
	Temperature      float64 // °C
	Radiation        RadiationMode
	WallLoss         bool
	SectionVariation bool
	// SubdivisionStep is the longest taper cell, in mm, used when
	// SectionVariation is on.
	SubdivisionStep float64
}

// DefaultConfig returns 24 °C, pipe radiation, wall losses on and section
// variation off.
func DefaultConfig() Config {
	return Config{
		Temperature:     24,
		Radiation:       RadiationPipe,
		WallLoss:        true,
		SubdivisionStep: 1,
	}
}

// Validate reports configuration values the engine cannot use.
func (c Config) Validate() error {
	switch c.Radiation {
	case RadiationPipe, RadiationBaffle, RadiationNone:
	default:
		return bore.Valuef(0, "unknown radiation mode %d", int(c.Radiation))
	}
	if c.SectionVariation && !(c.SubdivisionStep > 0) {
		return bore.Valuef(0, "subdivision step must be positive, got %g", c.SubdivisionStep)
	}
	return nil
}

// cell is one precomputed two-port, dimensions in metres.
type cell struct {
	r1, r2, length float64
	meanRadius     float64
	straight       bool
	// Section variation terms: end areas and area change rates.
	s1, s2, ss, t1, t2 float64
}

// Engine evaluates input impedance for one bore. It is immutable after
// NewEngine and safe for concurrent use.
type Engine struct {
	cfg       Config
	air       Air
	wall      WallLoss
	radiation Radiation
	cells     []cell
	terminal  bore.Terminal
	// Radius of the radiating opening in metres.
	openRadius float64
}

// NewEngine validates b and cfg and precomputes the cell list.
func NewEngine(b *bore.Bore, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	air, err := NewAir(cfg.Temperature)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Len() == 0 {
		return nil, bore.Structuref(0, "bore has no segments")
	}

	segs := b.Segments()
	for i, s := range segs {
		if !(s.FrontRadius > 0) || !(s.BackRadius > 0) || !(s.Length > 0) {
			return nil, bore.Structuref(0, "degenerate segment %d (%g,%g,%g) reached the engine", i, s.FrontRadius, s.BackRadius, s.Length)
		}
	}
	if cfg.SectionVariation {
		if segs, err = subdivide(segs, cfg.SubdivisionStep); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:        cfg,
		air:        air,
		wall:       NewWallLoss(air, cfg.WallLoss),
		radiation:  NewRadiation(air, cfg.Radiation),
		cells:      buildCells(segs),
		terminal:   b.Terminal(),
		openRadius: b.TerminalRadius() * mm,
	}
	return e, nil
}

// Air returns the air properties in use.
func (e *Engine) Air() Air { return e.air }

// Cells returns the number of two-ports cascaded per frequency.
func (e *Engine) Cells() int { return len(e.cells) }

// subdivide splits each taper longer than step into cells of at most step.
// The short remainder is placed at the front, matching slicing from the
// bell end. Radii follow the straight line between the original ends.
func subdivide(segs []bore.Segment, step float64) ([]bore.Segment, error) {
	total := 0.0
	for _, s := range segs {
		if s.IsStraight() || s.Length <= step {
			total++
		} else {
			total += math.Floor(s.Length/step) + 1
		}
	}
	if total > maxCells {
		return nil, bore.Valuef(0, "subdivision step %g mm yields %.0f cells, more than %d", step, total, maxCells)
	}

	out := make([]bore.Segment, 0, int(total))
	for _, s := range segs {
		if s.IsStraight() || s.Length <= step {
			out = append(out, s)
			continue
		}
		slope := (s.BackRadius - s.FrontRadius) / s.Length
		at := func(x float64) float64 { return s.FrontRadius + slope*x }

		n := int(s.Length / step)
		rem := s.Length - float64(n)*step
		pos := 0.0
		if rem > subdivisionEpsilon {
			out = append(out, bore.Segment{FrontRadius: s.FrontRadius, BackRadius: at(rem), Length: rem, Comment: s.Comment})
			pos = rem
		}
		for i := 0; i < n; i++ {
			back := at(pos + step)
			if i == n-1 {
				back = s.BackRadius
			}
			out = append(out, bore.Segment{FrontRadius: at(pos), BackRadius: back, Length: step, Comment: s.Comment})
			pos += step
		}
	}
	return out, nil
}

// areaRate returns dS/dx at both ends of a conical segment, in m.
func areaRate(r1, r2, length float64) (float64, float64) {
	slope := (r2 - r1) / length
	return 2 * math.Pi * r1 * slope, 2 * math.Pi * r2 * slope
}

func buildCells(segs []bore.Segment) []cell {
	cells := make([]cell, len(segs))
	for i, s := range segs {
		c := cell{
			r1:       s.FrontRadius * mm,
			r2:       s.BackRadius * mm,
			length:   s.Length * mm,
			straight: s.IsStraight(),
		}
		c.meanRadius = (c.r1 + c.r2) / 2
		c.s1 = math.Pi * c.r1 * c.r1
		c.s2 = math.Pi * c.r2 * c.r2
		c.ss = math.Sqrt(c.s1 * c.s2)
		cells[i] = c
	}

	// Area change rates at each junction are averaged with the neighbour.
	for i := range cells {
		t1, t2 := areaRate(cells[i].r1, cells[i].r2, cells[i].length)
		if i > 0 {
			_, prev := areaRate(cells[i-1].r1, cells[i-1].r2, cells[i-1].length)
			t1 = (t1 + prev) / 2
		}
		if i < len(cells)-1 {
			next, _ := areaRate(cells[i+1].r1, cells[i+1].r2, cells[i+1].length)
			t2 = (t2 + next) / 2
		}
		cells[i].t1, cells[i].t2 = t1, t2
	}
	return cells
}

// transfer returns the two-port matrix of c at wavenumber k.
func (e *Engine) transfer(c cell, k complex128) (m11, m12, m21, m22 complex128) {
	rc := complex(e.air.CharacteristicImpedance(), 0)
	x := k * complex(c.length, 0)
	sin, cos := cmplx.Sin(x), cmplx.Cos(x)

	switch {
	case e.cfg.SectionVariation:
		s1, s2, ss := complex(c.s1, 0), complex(c.s2, 0), complex(c.ss, 0)
		t1, t2 := complex(c.t1, 0), complex(c.t2, 0)
		m11 = (2*k*s2*cos - t2*sin) / (2 * k * ss)
		m12 = 1i * rc * sin / ss
		m21 = (-2i*k*(s2*t1-s1*t2)*cos + 1i*(4*k*k*s1*s2+t1*t2)*sin) / (4 * rc * k * k * ss)
		m22 = (2*k*s1*cos + t1*sin) / (2 * k * ss)
	case c.straight:
		s := complex(c.s1, 0)
		m11, m22 = cos, cos
		m12 = 1i * rc * sin / s
		m21 = 1i * s * sin / rc
	default:
		r1, r2 := complex(c.r1, 0), complex(c.r2, 0)
		dr := r2 - r1
		l := complex(c.length, 0)
		m11 = (r2*x*cos - dr*sin) / (r1 * x)
		m12 = 1i * rc * sin / (math.Pi * r1 * r2)
		m21 = -1i * math.Pi * (dr*dr*x*cos - (dr*dr+x*x*r1*r2)*sin) / (k * k * l * l * rc)
		m22 = (r1*x*cos + dr*sin) / (r2 * x)
	}
	return m11, m12, m21, m22
}

// InputImpedance returns the acoustic impedance p/U at the input end for
// freq in Hz. The cascade runs from the open end to the input; the state
// is a (p, U) pair so a closed end, whose impedance is infinite, needs no
// special case.
func (e *Engine) InputImpedance(freq float64) (complex128, error) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return 0, bore.Valuef(0, "frequency must be positive and finite, got %g", freq)
	}

	var p, u complex128
	switch {
	case e.terminal == bore.TerminalClosed:
		p, u = 1, 0
	case e.radiation.Mode() == RadiationNone:
		p, u = 0, 1
	default:
		p, u = e.radiation.Impedance(e.openRadius, freq), 1
	}

	for i := len(e.cells) - 1; i >= 0; i-- {
		c := e.cells[i]
		k := e.wall.Wavenumber(c.meanRadius, freq)
		m11, m12, m21, m22 := e.transfer(c, k)
		p, u = m11*p+m12*u, m21*p+m22*u

		// Rescale so long bores cannot overflow; only p/U matters.
		if n := math.Max(cmplx.Abs(p), cmplx.Abs(u)); n > 0 && !math.IsInf(n, 0) {
			p /= complex(n, 0)
			u /= complex(n, 0)
		}
	}

	z := p / u
	if cmplx.IsNaN(z) || cmplx.IsInf(z) {
		return 0, bore.Structuref(0, "input impedance at %g Hz is not finite", freq)
	}
	return z, nil
}
