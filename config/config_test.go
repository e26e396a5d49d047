package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/direction"
	"github.com/swdee/go-linecount/tracker"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadYAML(t *testing.T) {

	path := writeFile(t, "count.yaml", `
border: [[0, 300], [640, 300]]
directions: [bottom, right]
custom_directions:
  down_left:
    x: negative
    y: negative
retain_frames: 10
tracker:
  kind: byte
  frame_rate: 25
detector:
  confidence: 0.4
  class: car
`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []image.Point{{0, 300}, {640, 300}}, f.GetBorder())
	assert.Equal(t, 10, f.GetRetainFrames())
	assert.Equal(t, TrackerBYTE, f.GetTracker().GetKind())
	assert.Equal(t, 25, f.GetTracker().GetFrameRate())
	assert.Equal(t, DefaultTrackBuffer, f.GetTracker().GetTrackBuffer())
	assert.InDelta(t, 0.4, f.GetDetector().GetConfidence(), 1e-9)
	assert.Equal(t, "car", f.GetDetector().GetClass())

	dirs, err := f.DirectionList()
	require.NoError(t, err)
	require.Len(t, dirs, 3)
	assert.Equal(t, "bottom", dirs[0].Key)
	assert.Equal(t, "right", dirs[1].Key)
	assert.Equal(t, direction.Named{
		Key:  "down_left",
		Spec: direction.Spec{X: direction.RequireNegative, Y: direction.RequireNegative},
	}, dirs[2])
}

func TestLoadJSON(t *testing.T) {

	path := writeFile(t, "count.json", `{"border": [[10, 0], [10, 480]], "directions": ["left"]}`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []image.Point{{10, 0}, {10, 480}}, f.GetBorder())
	assert.Equal(t, DefaultRetainFrames, f.GetRetainFrames())
}

func TestLoadErrors(t *testing.T) {

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"extension", "count.txt", "border: [[0, 0], [1, 1]]"},
		{"unknown field", "count.yaml", "borders: [[0, 0], [1, 1]]"},
		{"one point", "count.yaml", "border: [[0, 0]]"},
		{"same points", "count.yaml", "border: [[5, 5], [5, 5]]"},
		{"negative retain", "count.yaml", "retain_frames: -1"},
		{"unknown preset", "count.yaml", "directions: [up]"},
		{"repeated preset", "count.yaml", "directions: [top, top]"},
		{"custom clash", "count.yaml", "directions: [top]\ncustom_directions:\n  top:\n    y: positive"},
		{"bad constraint", "count.yaml", "custom_directions:\n  diag:\n    x: sideways"},
		{"tracker kind", "count.yaml", "tracker:\n  kind: deepsort"},
		{"match thresh", "count.yaml", "tracker:\n  match_thresh: 1.5"},
		{"input size", "count.yaml", "detector:\n  input_size: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadTooLarge(t *testing.T) {

	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, make([]byte, maxFileSize+1), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "too large")
}

func TestDirectionErrorsAreTyped(t *testing.T) {

	_, err := Parse([]byte("directions: [top, top]"))
	assert.True(t, errors.Is(err, counter.ErrDuplicateDirection))

	_, err = Parse([]byte("directions: [diagonal]"))
	assert.True(t, errors.Is(err, counter.ErrInvalidDirection))
}

func TestEmptyUsesDefaults(t *testing.T) {

	f := Empty()
	require.NoError(t, f.Validate())

	d := Default()

	assert.Equal(t, d.GetBorder(), f.GetBorder())
	assert.Equal(t, d.GetRetainFrames(), f.GetRetainFrames())
	assert.Equal(t, d.GetTracker().GetKind(), f.GetTracker().GetKind())
	assert.Equal(t, d.GetDetector().GetClass(), f.GetDetector().GetClass())
	assert.Equal(t, d.GetDetector().GetInputSize(), f.GetDetector().GetInputSize())
}

func TestMarshalRoundTrip(t *testing.T) {

	data, err := Default().Marshal()
	require.NoError(t, err)

	f, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, Default(), f)
}

func TestEngineConfig(t *testing.T) {

	f, err := Parse([]byte("directions: [top]\nretain_frames: 0"))
	require.NoError(t, err)

	cfg, err := f.EngineConfig(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []image.Point{{0, 500}, {1920, 500}}, cfg.Border)
	assert.Equal(t, 0, cfg.RetainFrames)
	require.Len(t, cfg.Directions, 1)
	assert.Equal(t, "top", cfg.Directions[0].Key)

	_, err = counter.New[struct{}](cfg, tracker.NewSORT(tracker.DefaultSORTParams()), nil)
	assert.NoError(t, err)
}

func TestNewTracker(t *testing.T) {

	f, err := Parse([]byte("tracker:\n  kind: sort\n  min_hits: 5"))
	require.NoError(t, err)

	trk, err := f.NewTracker()
	require.NoError(t, err)

	sort, ok := trk.(*tracker.SORT)
	require.True(t, ok)
	assert.Equal(t, 5, sort.Params().MinHits)
	assert.Equal(t, tracker.DefaultSORTMaxAge, sort.Params().MaxAge)

	f, err = Parse([]byte("tracker:\n  kind: BYTE"))
	require.NoError(t, err)

	trk, err = f.NewTracker()
	require.NoError(t, err)

	_, ok = trk.(*tracker.BYTETracker)
	assert.True(t, ok)
}

func TestDetectorParams(t *testing.T) {

	f, err := Parse([]byte("detector:\n  input_size: 320\n  class_num: 3\n  normalized: true"))
	require.NoError(t, err)

	p := f.DetectorParams()

	assert.Equal(t, 320, p.InputWidth)
	assert.Equal(t, 320, p.InputHeight)
	assert.Equal(t, 3, p.ObjectClassNum)
	assert.True(t, p.Normalized)
	assert.True(t, p.AgnosticNMS)
	assert.InDelta(t, DefaultConfidence, p.BoxThreshold, 1e-6)
	assert.NoError(t, p.Validate())
}

func TestClassIndex(t *testing.T) {

	labels := []string{"person", "bicycle", "car"}

	tests := []struct {
		class   string
		want    int
		wantErr bool
	}{
		{"person", 0, false},
		{"Car", 2, false},
		{"1", 1, false},
		{"all", -1, false},
		{"truck", 0, true},
		{"99", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			f := Empty()
			f.GetDetector().Class = ptrString(tt.class)

			got, err := f.ClassIndex(labels)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
