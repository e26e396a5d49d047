package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/direction"
	"github.com/swdee/go-linecount/postprocess"
	"github.com/swdee/go-linecount/tracker"
)

// allClasses is the detector class value that counts every class
const allClasses = "all"

// DirectionList returns the counters to create, preset directions in the
// order given followed by custom directions sorted by key
func (f *File) DirectionList() ([]direction.Named, error) {

	named, err := counter.PresetDirections(f.Directions...)

	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(named))

	for _, n := range named {
		seen[n.Key] = true
	}

	for _, key := range f.customKeys() {
		if key == "" {
			return nil, errors.Wrap(counter.ErrInvalidDirection, "custom direction has empty key")
		}

		if seen[key] {
			return nil, errors.Wrapf(counter.ErrDuplicateDirection, "key %q", key)
		}

		ax := f.CustomDirections[key]

		x, err := direction.ParseConstraint(ax.X)

		if err != nil {
			return nil, errors.Wrapf(counter.ErrInvalidDirection, "key %q x: %v", key, err)
		}

		y, err := direction.ParseConstraint(ax.Y)

		if err != nil {
			return nil, errors.Wrapf(counter.ErrInvalidDirection, "key %q y: %v", key, err)
		}

		seen[key] = true
		named = append(named, direction.Named{Key: key, Spec: direction.Spec{X: x, Y: y}})
	}

	return named, nil
}

// EngineConfig builds the counter.Config described by the file
func (f *File) EngineConfig(notifier counter.Notifier, log logrus.FieldLogger) (counter.Config, error) {

	dirs, err := f.DirectionList()

	if err != nil {
		return counter.Config{}, err
	}

	return counter.Config{
		Border:       f.GetBorder(),
		Directions:   dirs,
		RetainFrames: f.GetRetainFrames(),
		Notifier:     notifier,
		Logger:       log,
	}, nil
}

// NewTracker creates the configured tracker
func (f *File) NewTracker() (tracker.Tracker, error) {

	t := f.GetTracker()

	switch t.GetKind() {
	case TrackerSORT:
		return tracker.NewSORT(tracker.SORTParams{
			MaxAge:       t.GetMaxAge(),
			MinHits:      t.GetMinHits(),
			IoUThreshold: float32(t.GetIoUThreshold()),
		}), nil

	case TrackerBYTE:
		return tracker.NewBYTETracker(t.GetFrameRate(), t.GetTrackBuffer(),
			float32(t.GetTrackThresh()), float32(t.GetHighThresh()),
			float32(t.GetMatchThresh())), nil
	}

	return nil, errors.Errorf("unknown tracker kind %q", t.GetKind())
}

// DetectorParams builds the YOLOv5 decoding parameters
func (f *File) DetectorParams() postprocess.YOLOv5Params {

	d := f.GetDetector()

	p := postprocess.YOLOv5DefaultParams()
	p.ObjectClassNum = d.GetClassNum()
	p.BoxThreshold = float32(d.GetConfidence())
	p.NMSThreshold = float32(d.GetIoUThreshold())
	p.MaxObjectNumber = d.GetMaxObjects()
	p.Normalized = d.GetNormalized()
	p.InputWidth = d.GetInputSize()
	p.InputHeight = d.GetInputSize()

	return p
}

// ClassIndex resolves the configured class against the model labels.  The
// class may be a label name or a numeric index, "all" returns -1.
func (f *File) ClassIndex(labels []string) (int, error) {

	class := strings.TrimSpace(f.GetDetector().GetClass())

	if strings.EqualFold(class, allClasses) {
		return -1, nil
	}

	if idx, err := strconv.Atoi(class); err == nil {
		if idx < 0 || idx >= f.GetDetector().GetClassNum() {
			return 0, errors.Errorf("class index %d out of range [0, %d)",
				idx, f.GetDetector().GetClassNum())
		}
		return idx, nil
	}

	for i, l := range labels {
		if strings.EqualFold(l, class) {
			return i, nil
		}
	}

	return 0, errors.Errorf("class %q not found in labels", class)
}
