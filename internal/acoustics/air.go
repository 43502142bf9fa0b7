package acoustics

import (
	"math"

	"github.com/specialistvlad/boreimp/internal/bore"
)

const (
	zeroCelsius = 273.16
	// Specific heat of air at constant pressure, J/(kg K).
	specificHeat = 1005.0
	// Ratio of specific heats.
	heatRatio = 1.4
)

// Air holds the temperature dependent properties of air.
type Air struct {
	Temperature float64 // °C
	SoundSpeed  float64 // m/s
	Density     float64 // kg/m³
	// Viscosity is the dynamic viscosity in Pa s.
	Viscosity float64
	// KinematicViscosity is Viscosity / Density in m²/s.
	KinematicViscosity  float64
	ThermalConductivity float64 // W/(m K)
	Prandtl             float64
	Gamma               float64
}

// NewAir derives the air properties at temperature tempC.
func NewAir(tempC float64) (Air, error) {
	if math.IsNaN(tempC) || math.IsInf(tempC, 0) || tempC <= -zeroCelsius {
		return Air{}, bore.Valuef(0, "temperature %g °C is out of range", tempC)
	}
	kelvin := tempC + zeroCelsius

	a := Air{
		Temperature: tempC,
		SoundSpeed:  331.45 * math.Sqrt(tempC/zeroCelsius+1),
		Density:     1.2929 * zeroCelsius / kelvin,
		Viscosity:   (18.2 + 0.0456*(tempC-25)) * 1e-6,
		// Power law fit around room temperature.
		ThermalConductivity: 0.02624 * math.Pow(kelvin/300, 0.8646),
		Gamma:               heatRatio,
	}
	a.KinematicViscosity = a.Viscosity / a.Density
	a.Prandtl = a.Viscosity * specificHeat / a.ThermalConductivity
	return a, nil
}

// CharacteristicImpedance returns ρc.
func (a Air) CharacteristicImpedance() float64 {
	return a.Density * a.SoundSpeed
}
