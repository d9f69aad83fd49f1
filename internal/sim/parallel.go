package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/gondola"
)

// Ensemble rides several tracks with the same parameters, one goroutine per
// track.
type Ensemble struct {
	params  gondola.Params
	cfg     Config
	logger  *zap.Logger
	metrics func() []Metric
}

// NewEnsemble builds an ensemble. newMetrics, when not nil, is called once per
// track from that track's goroutine and must return fresh metric instances.
func NewEnsemble(params gondola.Params, cfg Config, logger *zap.Logger, newMetrics func() []Metric) *Ensemble {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{params: params, cfg: cfg, logger: logger, metrics: newMetrics}
}

// Run rides every track to completion. The returned map holds the result of
// each track that succeeded; failures are joined in track-name order.
func (e *Ensemble) Run(ctx context.Context, tracks map[string][]r2.Point) (map[string]*Result, error) {
	names := make([]string, 0, len(tracks))
	for name := range tracks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]*Result, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			results[idx], errs[idx] = e.runOne(ctx, name, tracks[name])
		}(i, name)
	}

	wg.Wait()

	out := make(map[string]*Result, len(names))
	var failed []error
	for i, name := range names {
		if errs[i] != nil {
			failed = append(failed, fmt.Errorf("track %q: %w", name, errs[i]))
			continue
		}
		out[name] = results[i]
	}
	return out, errors.Join(failed...)
}

func (e *Ensemble) runOne(ctx context.Context, name string, points []r2.Point) (*Result, error) {
	s, err := New(e.params, e.cfg, WithLogger(e.logger.With(zap.String("track", name))))
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		for _, m := range e.metrics() {
			s.AddMetric(m)
		}
	}
	for _, p := range points {
		s.AddPoint(p)
	}
	return s.Run(ctx, e.cfg.Duration)
}
