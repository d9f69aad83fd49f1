package metrics

import (
	"math"

	"github.com/torozsom/gondola/internal/gondola"
)

// MinForce is the smallest net inward force seen during a ride: how close the
// gondola came to leaving the track. The first sample after a reset is the
// launch sample, which carries no force, and is skipped.
type MinForce struct {
	name    string
	min     float64
	samples int
}

func NewMinForce() *MinForce {
	return &MinForce{
		name: "min_force",
		min:  math.Inf(1),
	}
}

func (m *MinForce) Name() string {
	return m.name
}

func (m *MinForce) Observe(t float64, s gondola.Sample) {
	m.samples++
	if m.samples == 1 {
		return
	}
	m.min = math.Min(m.min, s.Force)
}

func (m *MinForce) Value() float64 {
	if m.samples < 2 {
		return 0
	}
	return m.min
}

func (m *MinForce) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}
