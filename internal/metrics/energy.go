package metrics

import (
	"math"

	"github.com/torozsom/gondola/internal/gondola"
)

// EnergyDrift tracks the largest relative change of the specific energy
// 0.5·v² + 0.5·g·h over a ride. The speed model derives v² = g·(h0 − h), so
// the quantity stays at 0.5·g·h0 and any drift comes from the normal offset
// turning between the reference and the current sample.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, s gondola.Sample) {
	energy := e.Energy(s)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Energy(s gondola.Sample) float64 {
	return 0.5*s.Speed*s.Speed + 0.5*e.gravity*s.Height
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
