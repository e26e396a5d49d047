package tracker

import (
	"fmt"

	hg "github.com/charles-haynes/munkres"
)

// SORT default parameters
const (
	DefaultSORTMaxAge       = 1
	DefaultSORTMinHits      = 3
	DefaultSORTIoUThreshold = 0.3
)

// SORTParams configures the SORT tracker
type SORTParams struct {
	// MaxAge is the number of frames a track is kept without a matching
	// detection
	MaxAge int
	// MinHits is the number of consecutive matches before a track is output.
	// Tracks are output immediately during the first MinHits frames.
	MinHits int
	// IoUThreshold is the minimum overlap for a detection to match a track
	IoUThreshold float32
}

// DefaultSORTParams returns the standard SORT parameters
func DefaultSORTParams() SORTParams {
	return SORTParams{
		MaxAge:       DefaultSORTMaxAge,
		MinHits:      DefaultSORTMinHits,
		IoUThreshold: DefaultSORTIoUThreshold,
	}
}

// sortTrack is a Kalman track with the SORT hit bookkeeping
type sortTrack struct {
	*STrack
	hits            int
	hitStreak       int
	timeSinceUpdate int
}

func (t *sortTrack) predict() {
	t.Predict()

	if t.timeSinceUpdate > 0 {
		t.hitStreak = 0
	}

	t.timeSinceUpdate++
}

func (t *sortTrack) update(det *STrack, frameID int) error {
	if err := t.Update(det, frameID); err != nil {
		return err
	}

	t.timeSinceUpdate = 0
	t.hits++
	t.hitStreak++

	return nil
}

// predictedRect returns the bounding box of the predicted state
func (t *sortTrack) predictedRect() Rect {
	return GenerateRectByXyah(Xyah(t.mean[:4]))
}

// SORT is the Simple Online and Realtime Tracker.  Each frame the existing
// tracks are predicted forward and matched one to one to detections with the
// Hungarian algorithm over IoU.
type SORT struct {
	params     SORTParams
	frameCount int
	lastID     int
	tracks     []*sortTrack
}

// NewSORT returns a SORT tracker, zero valued params fields take their
// default
func NewSORT(params SORTParams) *SORT {

	def := DefaultSORTParams()

	if params.MaxAge <= 0 {
		params.MaxAge = def.MaxAge
	}

	if params.MinHits <= 0 {
		params.MinHits = def.MinHits
	}

	if params.IoUThreshold <= 0 {
		params.IoUThreshold = def.IoUThreshold
	}

	return &SORT{params: params}
}

// Params returns the parameters in use
func (s *SORT) Params() SORTParams {
	return s.params
}

// Reset clears all tracks.  IDs keep counting up from the last one issued
func (s *SORT) Reset() {
	s.frameCount = 0
	s.tracks = nil
}

// Update advances the tracker one frame with the given detections.  It must
// be called once per frame even when there are no detections.
func (s *SORT) Update(objects []Object) ([]Track, error) {

	s.frameCount++

	for _, t := range s.tracks {
		t.predict()
	}

	dets := make([]*STrack, 0, len(objects))

	for _, obj := range objects {
		dets = append(dets, newSTrackFromObject(obj))
	}

	matches, err := s.associate(dets)

	if err != nil {
		return nil, fmt.Errorf("error associating detections: %w", err)
	}

	matched := make([]bool, len(dets))

	for ti, di := range matches {
		if di < 0 {
			continue
		}

		if err := s.tracks[ti].update(dets[di], s.frameCount); err != nil {
			return nil, fmt.Errorf("error updating track %d: %w",
				s.tracks[ti].GetTrackID(), err)
		}

		matched[di] = true
	}

	for di, det := range dets {
		if matched[di] {
			continue
		}

		s.lastID++
		det.Activate(s.frameCount, s.lastID)

		s.tracks = append(s.tracks, &sortTrack{
			STrack:    det,
			hits:      1,
			hitStreak: 1,
		})
	}

	var out []Track
	alive := s.tracks[:0]

	for _, t := range s.tracks {
		if t.timeSinceUpdate < 1 &&
			(t.hitStreak >= s.params.MinHits || s.frameCount <= s.params.MinHits) {
			out = append(out, t.Track())
		}

		if t.timeSinceUpdate > s.params.MaxAge {
			t.MarkAsRemoved()
			continue
		}

		alive = append(alive, t)
	}

	s.tracks = alive

	return out, nil
}

// associate returns for each existing track the index of its matched
// detection or -1
func (s *SORT) associate(dets []*STrack) ([]int, error) {

	matches := make([]int, len(s.tracks))

	for i := range matches {
		matches[i] = -1
	}

	if len(s.tracks) == 0 || len(dets) == 0 {
		return matches, nil
	}

	// munkres minimises so overlap is negated
	mtx := make([][]float64, len(s.tracks))

	for i, t := range s.tracks {
		pred := t.predictedRect()
		row := make([]float64, len(dets))

		for j, d := range dets {
			row[j] = -float64(pred.CalcIoU(*d.GetRect()))
		}

		mtx[i] = row
	}

	ha, err := hg.NewHungarianAlgorithm(mtx)

	if err != nil {
		return nil, err
	}

	for i, j := range ha.Execute() {
		if i >= len(matches) || j < 0 || j >= len(dets) {
			continue
		}

		if -mtx[i][j] < float64(s.params.IoUThreshold) {
			continue
		}

		matches[i] = j
	}

	return matches, nil
}
