package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var sampleHeader = []string{"time", "arc", "speed", "curvature", "force", "height", "x", "y", "heading"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Track     string             `json:"track"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Params    gondola.Params     `json:"params"`
	Points    []r2.Point         `json:"points"`
	Phase     string             `json:"phase"`
	Reason    string             `json:"reason"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// NewRunMetadata describes a finished ride under a fresh run ID.
func NewRunMetadata(track string, points []r2.Point, params gondola.Params, cfg sim.Config, result *sim.Result) RunMetadata {
	return RunMetadata{
		ID:        uuid.NewString(),
		Track:     track,
		Timestamp: time.Now().UTC(),
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Params:    params,
		Points:    points,
		Phase:     result.Phase.String(),
		Reason:    result.Reason.String(),
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
	}
}

// Save writes the run into its own directory: metadata.json plus one CSV row
// per recorded sample.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result); err != nil {
		return "", fmt.Errorf("writing samples: %w", err)
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSamples(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sampleHeader); err != nil {
		return err
	}

	for i, sm := range result.Samples {
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(sm.Arc),
			formatFloat(sm.Speed),
			formatFloat(sm.Curvature),
			formatFloat(sm.Force),
			formatFloat(sm.Height),
			formatFloat(sm.Position.X),
			formatFloat(sm.Position.Y),
			formatFloat(sm.Heading),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads back the samples of a run and their times. Malformed rows
// are skipped.
func (s *Store) LoadSamples(runID string) ([]gondola.Sample, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []gondola.Sample{}, []float64{}, nil
	}

	samples := make([]gondola.Sample, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(sampleHeader) {
			continue
		}

		vals := make([]float64, len(record))
		ok := true
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		times = append(times, vals[0])
		samples = append(samples, gondola.Sample{
			Arc:       vals[1],
			Speed:     vals[2],
			Curvature: vals[3],
			Force:     vals[4],
			Height:    vals[5],
			Position:  r2.Point{X: vals[6], Y: vals[7]},
			Heading:   vals[8],
		})
	}

	return samples, times, nil
}
