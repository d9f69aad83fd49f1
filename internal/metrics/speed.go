package metrics

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
)

type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(t float64, s gondola.Sample) {
	m.max = math.Max(m.max, s.Speed)
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// Distance is the length of the polyline through the observed body
// positions.
type Distance struct {
	name  string
	total float64
	prev  r2.Point
	seen  bool
}

func NewDistance() *Distance {
	return &Distance{name: "distance"}
}

func (d *Distance) Name() string { return d.name }

func (d *Distance) Observe(t float64, s gondola.Sample) {
	if d.seen {
		d.total += s.Position.Sub(d.prev).Norm()
	}
	d.prev = s.Position
	d.seen = true
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() {
	d.total = 0
	d.prev = r2.Point{}
	d.seen = false
}

// Standard returns a fresh set of the metrics reported for every ride.
func Standard(gravity float64) []sim.Metric {
	return []sim.Metric{
		NewMaxSpeed(),
		NewMinForce(),
		NewDistance(),
		NewEnergyDrift(gravity),
	}
}
