package sweep

import (
	"math"

	"github.com/specialistvlad/boreimp/internal/bore"
)

// maxPoints bounds the grid so a tiny step cannot exhaust memory.
const maxPoints = 10_000_000

// Frequencies returns the ascending grid for a sweep up to max Hz.
//
// With points > 0 the grid has exactly points entries max*i/points for
// i = 1..points, and step is ignored. Otherwise it is step, 2*step, ...
// through max inclusive. Each entry is computed by multiplication so no
// rounding error accumulates along the grid.
func Frequencies(max, step float64, points int) ([]float64, error) {
	if !(max > 0) || math.IsInf(max, 0) {
		return nil, bore.Valuef(0, "maximum frequency must be positive, got %g", max)
	}
	if points < 0 {
		return nil, bore.Valuef(0, "point count must not be negative, got %d", points)
	}

	if points > 0 {
		if points > maxPoints {
			return nil, bore.Valuef(0, "too many frequency points: %d", points)
		}
		out := make([]float64, points)
		for i := range out {
			out[i] = max * float64(i+1) / float64(points)
		}
		return out, nil
	}

	if !(step > 0) || math.IsInf(step, 0) {
		return nil, bore.Valuef(0, "frequency step must be positive, got %g", step)
	}
	// The epsilon keeps max itself when max/step is integral up to rounding.
	n := math.Floor(max/step + 1e-9)
	if n < 1 {
		return nil, bore.Valuef(0, "frequency step %g exceeds the maximum frequency %g", step, max)
	}
	if n > maxPoints {
		return nil, bore.Valuef(0, "too many frequency points: %.0f", n)
	}
	out := make([]float64, int(n))
	for i := range out {
		out[i] = step * float64(i+1)
	}
	return out, nil
}
