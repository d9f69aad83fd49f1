// Package sim drives a gondola along a user-built track. A Simulator owns the
// spline and the gondola riding it, turns wall-clock intervals into fixed
// sub-steps and reports every accepted step to its metrics and observers.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/spline"
)

type Simulator struct {
	cfg    Config
	params gondola.Params
	logger *zap.Logger

	track   *spline.Spline
	gondola *gondola.Gondola
	clock   float64

	metrics   []Metric
	observers []Observer
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func New(params gondola.Params, cfg Config, opts ...Option) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:       cfg,
		params:    params,
		logger:    zap.NewNop(),
		track:     spline.New(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gondola = gondola.New(s.track, params)
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Track() *spline.Spline     { return s.track }
func (s *Simulator) Gondola() *gondola.Gondola { return s.gondola }
func (s *Simulator) Config() Config            { return s.cfg }

// Clock is the simulated time in seconds since the last launch.
func (s *Simulator) Clock() float64 { return s.clock }

// AddPoint appends a control point in world coordinates. Points may be added
// while the gondola rides; the track simply grows ahead of it.
func (s *Simulator) AddPoint(p r2.Point) {
	s.track.AddControlPoint(p)
	s.logger.Debug("control point added",
		zap.Float64("x", p.X),
		zap.Float64("y", p.Y),
		zap.Int("points", s.track.Len()))
}

// Launch releases the gondola at the start of the track.
func (s *Simulator) Launch() error {
	if s.track.Len() < 2 {
		return fmt.Errorf("launch with %d points: %w", s.track.Len(), ErrTrackTooShort)
	}
	if s.gondola.Phase() != gondola.Idle {
		return fmt.Errorf("launch while %s: %w", s.gondola.Phase(), ErrAlreadyLaunched)
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.clock = 0
	s.gondola.Start()
	s.notify(s.gondola.Last())

	pos := s.gondola.Position()
	s.logger.Info("gondola launched",
		zap.Int("points", s.track.Len()),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
		zap.Float64("start_energy", s.gondola.StartEnergy()))
	return nil
}

// Advance moves the simulation forward by elapsed seconds in sub-steps of
// Config.Dt. The last sub-step is shortened so the interval is not
// overshot. It returns the number of sub-steps taken.
func (s *Simulator) Advance(elapsed float64) int {
	if s.gondola.Phase() != gondola.Moving || elapsed <= 0 {
		return 0
	}

	dt := s.cfg.Dt
	n := int(math.Ceil(elapsed/dt - 1e-9))
	steps := 0
	for i := 0; i < n && s.gondola.Phase() == gondola.Moving; i++ {
		s.step(math.Min(dt, elapsed-float64(i)*dt))
		steps++
	}

	s.logger.Debug("advanced",
		zap.Float64("elapsed", elapsed),
		zap.Int("substeps", steps),
		zap.Float64("clock", s.clock))
	return steps
}

// Run launches the gondola if it is still idle and steps it until it departs
// or duration simulated seconds have passed. On cancellation the partial
// result is returned together with the context error.
func (s *Simulator) Run(ctx context.Context, duration float64) (*Result, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f: %w", duration, ErrInvalidConfig)
	}

	if s.gondola.Phase() == gondola.Idle {
		if err := s.Launch(); err != nil {
			return nil, err
		}
	}

	steps := int(math.Ceil(duration / s.cfg.Dt))
	result := &Result{
		Samples: make([]gondola.Sample, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	result.Samples = append(result.Samples, s.gondola.Last())
	result.Times = append(result.Times, s.clock)

	for s.gondola.Phase() == gondola.Moving && s.clock < duration {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if sample, ok := s.step(math.Min(s.cfg.Dt, duration-s.clock)); ok {
			result.Samples = append(result.Samples, sample)
			result.Times = append(result.Times, s.clock)
		}
		result.StepsTaken++
	}

	s.collect(result)
	return result, nil
}

// Reset puts a fresh idle gondola on the current track.
func (s *Simulator) Reset() {
	s.gondola = gondola.New(s.track, s.params)
	s.clock = 0
	for _, m := range s.metrics {
		m.Reset()
	}
	s.logger.Info("gondola reset", zap.Int("points", s.track.Len()))
}

// Clear discards the track and the gondola.
func (s *Simulator) Clear() {
	s.track = spline.New()
	s.Reset()
	s.logger.Info("track cleared")
}

// step advances the gondola once and reports whether the step produced a new
// sample. Steps skipped on a degenerate tangent and steps that end in Fell or
// Stalled leave the last sample in place and notify nobody.
func (s *Simulator) step(dt float64) (gondola.Sample, bool) {
	g := s.gondola
	accepted := g.Accepted()
	g.Step(dt)
	s.clock += dt

	if g.Phase() == gondola.Departed {
		s.logger.Info("gondola departed",
			zap.Stringer("reason", g.Reason()),
			zap.Float64("arc", g.Arc()),
			zap.Float64("speed", g.Speed()),
			zap.Float64("clock", s.clock))
	}
	if g.Accepted() == accepted {
		return gondola.Sample{}, false
	}

	sample := g.Last()
	s.notify(sample)
	return sample, true
}

func (s *Simulator) notify(sample gondola.Sample) {
	for _, m := range s.metrics {
		m.Observe(s.clock, sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.clock, sample)
	}
}

func (s *Simulator) collect(result *Result) {
	result.Phase = s.gondola.Phase()
	result.Reason = s.gondola.Reason()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidConfig)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrInvalidConfig)
	}
	return nil
}
