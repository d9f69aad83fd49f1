package sim

import "github.com/torozsom/gondola/internal/gondola"

const (
	DefaultDt       = 0.01
	DefaultDuration = 30.0
)

type Metric interface {
	Name() string
	Observe(t float64, s gondola.Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(t float64, s gondola.Sample)
}

type Config struct {
	Dt       float64 `yaml:"dt" mapstructure:"dt"`
	Duration float64 `yaml:"duration" mapstructure:"duration"`
}

func DefaultConfig() Config {
	return Config{Dt: DefaultDt, Duration: DefaultDuration}
}

type Result struct {
	Samples    []gondola.Sample
	Times      []float64
	Metrics    map[string]float64
	Phase      gondola.Phase
	Reason     gondola.Reason
	StepsTaken int
}
