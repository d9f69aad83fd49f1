package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
)

var testPoints = []r2.Point{{X: 0, Y: 10}, {X: 5, Y: 0}, {X: 10, Y: 10}}

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []gondola.Sample{
			{Arc: 0.01, Height: 10.316, Position: r2.Point{X: 0.95, Y: 10.31}},
			{Arc: 0.0155, Speed: 1.0 / 3, Curvature: 0.02, Force: 12.65, Height: 10.2, Position: r2.Point{X: 0.96, Y: 10.3}, Heading: -math.Pi / 300},
		},
		Times:      []float64{0, 0.01},
		Metrics:    map[string]float64{"max_speed": 1.0 / 3},
		Phase:      gondola.Moving,
		StepsTaken: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	result := testResult()
	meta := NewRunMetadata("valley", testPoints, gondola.DefaultParams(), sim.DefaultConfig(), result)

	runID, err := st.Save(meta, result)
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	assert.NoError(t, err, "run id should be a uuid")

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(meta, *loaded); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "moving", loaded.Phase)
	assert.Equal(t, "none", loaded.Reason)

	samples, times, err := st.LoadSamples(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(result.Samples, samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(result.Times, times); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSaveAssignsID(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()

	runID, err := st.Save(RunMetadata{Track: "custom"}, result)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.FileExists(t, filepath.Join(st.baseDir, runID, metadataFile))
	assert.FileExists(t, filepath.Join(st.baseDir, runID, samplesFile))
}

func TestStoreListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, track := range []string{"valley", "hill", "drop"} {
		meta := NewRunMetadata(track, testPoints, gondola.DefaultParams(), sim.DefaultConfig(), result)
		meta.Timestamp = base.Add(time.Duration(i) * time.Minute)
		_, err := st.Save(meta, result)
		require.NoError(t, err)
	}

	// stray entries are ignored
	require.NoError(t, os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "broken"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	got := []string{runs[0].Track, runs[1].Track, runs[2].Track}
	assert.Equal(t, []string{"drop", "hill", "valley"}, got)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nothing-here"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("does-not-exist")
	assert.Error(t, err)

	_, _, err = st.LoadSamples("does-not-exist")
	assert.Error(t, err)
}

func TestLoadSamplesSkipsMalformedRows(t *testing.T) {
	st := New(t.TempDir())
	runDir := filepath.Join(st.baseDir, "manual")
	require.NoError(t, os.MkdirAll(runDir, 0755))

	csv := "time,arc,speed,curvature,force,height,x,y,heading\n" +
		"0,0.01,0,0,0,10,1,10,0\n" +
		"0.01,oops,0,0,0,10,1,10,0\n" +
		"0.02,0.02\n" +
		"0.03,0.03,2,0.1,30,9.5,1.2,9.6,-0.02\n"
	require.NoError(t, os.WriteFile(filepath.Join(runDir, samplesFile), []byte(csv), 0644))

	samples, times, err := st.LoadSamples("manual")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.03}, times)
	require.Len(t, samples, 2)
	assert.Equal(t, r2.Point{X: 1.2, Y: 9.6}, samples[1].Position)
	assert.Equal(t, 30.0, samples[1].Force)
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()
	meta := NewRunMetadata("valley", testPoints, gondola.DefaultParams(), sim.DefaultConfig(), result)

	runID, err := st.Save(meta, result)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportRun(&buf, runID))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.ID)
	assert.Equal(t, "valley", data.Track)
	assert.Len(t, data.Samples, len(result.Samples))
	assert.Equal(t, result.Times, data.Times)
	assert.Equal(t, 40.0, data.Params.Gravity)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, "samples")
	assert.Contains(t, raw, "id")
}
