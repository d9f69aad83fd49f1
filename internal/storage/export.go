package storage

import (
	"encoding/json"
	"io"

	"github.com/torozsom/gondola/internal/gondola"
)

type ExportData struct {
	RunMetadata
	Times   []float64        `json:"times"`
	Samples []gondola.Sample `json:"samples"`
}

// ExportJSON writes a run and its samples as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, times []float64, samples []gondola.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: meta, Times: times, Samples: samples})
}

// ExportRun loads a saved run and writes it with ExportJSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, times, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, times, samples)
}
