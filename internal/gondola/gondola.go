// Package gondola implements the motion model: a wheel-like car released on a
// Path that rolls under gravity until it falls off or runs out of track.
package gondola

import (
	"math"

	"github.com/golang/geo/r2"
)

// Path is the read-only view of the track the gondola rides on.
type Path interface {
	Evaluate(t float64) r2.Point
	Derivative(t float64) r2.Point
	SecondDerivative(t float64) r2.Point
	// Domain returns the first and last parameter of the path.
	Domain() (float64, float64)
}

type Phase int

const (
	Idle Phase = iota
	Moving
	Departed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Departed:
		return "departed"
	}
	return "unknown"
}

// Reason records which check ended the ride.
type Reason int

const (
	None Reason = iota
	// Fell: the net inward force went negative.
	Fell
	// EndOfTrack: the arc parameter passed the end of the domain.
	EndOfTrack
	// Stalled: the gondola sat above its release height, so the energy
	// balance had no real speed.
	Stalled
)

func (r Reason) String() string {
	switch r {
	case None:
		return "none"
	case Fell:
		return "fell"
	case EndOfTrack:
		return "end_of_track"
	case Stalled:
		return "stalled"
	}
	return "unknown"
}

type Params struct {
	Gravity      float64 `yaml:"gravity" mapstructure:"gravity" json:"gravity"`
	Radius       float64 `yaml:"radius" mapstructure:"radius" json:"radius"`
	StartOffset  float64 `yaml:"start_offset" mapstructure:"start_offset" json:"start_offset"`
	Epsilon      float64 `yaml:"epsilon" mapstructure:"epsilon" json:"epsilon"`
	EnergyOffset float64 `yaml:"energy_offset" mapstructure:"energy_offset" json:"energy_offset"`
}

func DefaultParams() Params {
	return Params{
		Gravity:      40.0,
		Radius:       1.0,
		StartOffset:  0.01,
		Epsilon:      0.001,
		EnergyOffset: 0.5,
	}
}

// Sample is the telemetry of one accepted step.
type Sample struct {
	Arc       float64  `json:"arc"`
	Speed     float64  `json:"speed"`
	Curvature float64  `json:"curvature"`
	Force     float64  `json:"force"`
	Height    float64  `json:"height"`
	Position  r2.Point `json:"position"`
	Heading   float64  `json:"heading"`
}

type Gondola struct {
	path   Path
	params Params

	phase       Phase
	reason      Reason
	arc         float64
	speed       float64
	position    r2.Point
	heading     float64
	startEnergy float64
	last        Sample
	accepted    int
}

func New(path Path, params Params) *Gondola {
	return &Gondola{path: path, params: params, phase: Idle}
}

// Start releases the gondola just past the beginning of the path. It does
// nothing unless the gondola is idle.
func (g *Gondola) Start() {
	if g.phase != Idle {
		return
	}

	tMin, _ := g.path.Domain()
	g.arc = tMin + g.params.StartOffset
	g.speed = 0

	r := g.path.Evaluate(g.arc)
	n := leftNormal(g.path.Derivative(g.arc))

	g.position = r.Add(n.Mul(g.params.Radius))
	g.heading = 0
	g.accepted = 0
	g.startEnergy = g.params.Gravity*r.Y + g.params.EnergyOffset
	g.last = Sample{Arc: g.arc, Height: g.position.Y, Position: g.position}
	g.phase = Moving
}

// Step advances a moving gondola by dt seconds. A zero or negative dt
// changes nothing, not even the departure checks.
func (g *Gondola) Step(dt float64) {
	if g.phase != Moving || dt <= 0 {
		return
	}

	p := g.params
	r := g.path.Evaluate(g.arc)
	tangent := g.path.Derivative(g.arc)
	second := g.path.SecondDerivative(g.arc)
	tangentLen := tangent.Norm()
	if tangentLen < p.Epsilon {
		return
	}

	normal := leftNormal(tangent)
	offset := normal.Mul(p.Radius)

	tMin, tMax := g.path.Domain()
	currentHeight := r.Add(offset).Y
	referenceHeight := g.path.Evaluate(tMin).Add(offset).Y

	drop := p.Gravity * (referenceHeight - currentHeight)
	if drop < 0 {
		g.depart(Stalled)
		return
	}
	g.speed = math.Sqrt(drop)

	curvature := tangent.Cross(second) / math.Pow(tangentLen, 3)
	force := curvature*g.speed*g.speed + p.Gravity*normal.Y
	if force < 0 {
		g.depart(Fell)
		return
	}

	g.arc += (g.speed * dt) / tangentLen
	g.position = r.Add(offset)
	g.heading -= (g.speed / p.Radius) * dt
	g.accepted++
	g.last = Sample{
		Arc:       g.arc,
		Speed:     g.speed,
		Curvature: curvature,
		Force:     force,
		Height:    currentHeight,
		Position:  g.position,
		Heading:   g.heading,
	}

	if g.arc > tMax {
		g.depart(EndOfTrack)
	}
}

// leftNormal rotates the unit tangent a quarter turn counterclockwise.
func leftNormal(tangent r2.Point) r2.Point {
	return tangent.Normalize().Ortho()
}

func (g *Gondola) depart(r Reason) {
	g.phase = Departed
	g.reason = r
}

func (g *Gondola) Phase() Phase       { return g.phase }
func (g *Gondola) Reason() Reason     { return g.reason }
func (g *Gondola) Arc() float64       { return g.arc }
func (g *Gondola) Speed() float64     { return g.speed }
func (g *Gondola) Position() r2.Point { return g.position }
func (g *Gondola) Heading() float64   { return g.heading }
func (g *Gondola) Params() Params     { return g.params }
func (g *Gondola) Last() Sample       { return g.last }

// Accepted counts the steps that produced a new sample since Start. Skipped
// and departing steps do not count, except the step that runs off the end.
func (g *Gondola) Accepted() int { return g.accepted }

// StartEnergy is the release energy computed by Start. The speed model
// measures the drop from the start of the path instead and never reads it.
func (g *Gondola) StartEnergy() float64 { return g.startEnergy }
