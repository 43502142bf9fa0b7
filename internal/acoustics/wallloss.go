package acoustics

import (
	"math"
	"math/cmplx"
)

// WallLoss corrects the propagation constant for boundary-layer friction
// and heat exchange at the duct wall.
type WallLoss struct {
	air     Air
	enabled bool
}

// NewWallLoss returns the model for air. A disabled model is lossless.
func NewWallLoss(air Air, enabled bool) WallLoss {
	return WallLoss{air: air, enabled: enabled}
}

// Enabled reports whether losses are applied.
func (w WallLoss) Enabled() bool {
	return w.enabled
}

// Attenuation returns the wall attenuation coefficient in 1/m for a duct
// of the given radius in metres.
func (w WallLoss) Attenuation(radius, freq float64) float64 {
	if !w.enabled || radius <= 0 {
		return 0
	}
	omega := 2 * math.Pi * freq
	d := 2 * radius
	return (1 + (w.air.Gamma-1)/math.Sqrt(w.air.Prandtl)) *
		math.Sqrt(2*omega*w.air.KinematicViscosity) / w.air.SoundSpeed / d
}

// Wavenumber returns the complex propagation constant in 1/m.
func (w WallLoss) Wavenumber(radius, freq float64) complex128 {
	k0 := complex(2*math.Pi*freq/w.air.SoundSpeed, 0)
	if !w.enabled {
		return k0
	}
	alpha := complex(w.Attenuation(radius, freq), 0)
	return cmplx.Sqrt(k0 * (k0 - 2*(1i-1)*alpha))
}

// Correction returns the factor applied to the lossless wavenumber. It is
// exactly 1 when losses are disabled.
func (w WallLoss) Correction(radius, freq float64) complex128 {
	if !w.enabled || freq <= 0 {
		return 1
	}
	k0 := complex(2*math.Pi*freq/w.air.SoundSpeed, 0)
	return w.Wavenumber(radius, freq) / k0
}
