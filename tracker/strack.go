package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// STrackState represents the lifecycle state of a tracked object
type STrackState int

const (
	// New object that has not been activated yet
	New STrackState = 0
	// Tracked object currently matched to detections
	Tracked STrackState = 1
	// Lost object that missed its most recent detections
	Lost STrackState = 2
	// Removed object that will no longer be matched
	Removed STrackState = 3
)

// String returns the name of the state
func (s STrackState) String() string {
	switch s {
	case New:
		return "new"
	case Tracked:
		return "tracked"
	case Lost:
		return "lost"
	case Removed:
		return "removed"
	}

	return fmt.Sprintf("STrackState(%d)", int(s))
}

// STrack holds the Kalman state of a single tracked object
type STrack struct {
	kalmanFilter *KalmanFilter
	mean         StateMean
	covariance   StateCov
	// rect is the bounding box derived from the state mean
	rect  Rect
	state STrackState
	// isActivated is false until the track has been confirmed by a second
	// detection, except for tracks created on the first frame
	isActivated  bool
	score        float32
	trackID      int
	frameID      int
	startFrameID int
	trackletLen  int
	detectionID  int64
	label        int
}

// NewSTrack creates a new STrack from a detection
func NewSTrack(rect Rect, score float32, detectionID int64, label int) *STrack {
	return &STrack{
		kalmanFilter: NewKalmanFilter(1.0/20, 1.0/160),
		mean:         make(StateMean, 8),
		covariance:   StateCov{mat.NewDense(8, 8, nil)},
		rect:         rect.Clone(),
		state:        New,
		score:        score,
		detectionID:  detectionID,
		label:        label,
	}
}

// newSTrackFromObject creates an STrack from a detected Object
func newSTrackFromObject(obj Object) *STrack {
	return NewSTrack(obj.Rect, obj.Prob, obj.ID, obj.Label)
}

// GetRect returns the bounding box of the tracked object
func (s *STrack) GetRect() *Rect {
	return &s.rect
}

// GetSTrackState returns the current state of the track
func (s *STrack) GetSTrackState() STrackState {
	return s.state
}

// IsActivated returns whether the track is activated
func (s *STrack) IsActivated() bool {
	return s.isActivated
}

// GetScore returns the detection score
func (s *STrack) GetScore() float32 {
	return s.score
}

// GetTrackID returns the unique ID for the track
func (s *STrack) GetTrackID() int {
	return s.trackID
}

// GetFrameID returns the frame the track was last updated on
func (s *STrack) GetFrameID() int {
	return s.frameID
}

// GetDetectionID returns the ID of the last detection matched
func (s *STrack) GetDetectionID() int64 {
	return s.detectionID
}

// GetLabel returns the object class label
func (s *STrack) GetLabel() int {
	return s.label
}

// GetStartFrameID returns the frame ID when the track started
func (s *STrack) GetStartFrameID() int {
	return s.startFrameID
}

// GetTrackletLength returns the number of consecutive updates
func (s *STrack) GetTrackletLength() int {
	return s.trackletLen
}

// Track returns a snapshot of the track that is safe to hold onto after the
// tracker moves on to the next frame
func (s *STrack) Track() Track {
	return Track{
		ID:          s.trackID,
		Rect:        s.rect.Clone(),
		Label:       s.label,
		Score:       s.score,
		DetectionID: s.detectionID,
	}
}

// Activate initializes the Kalman state and assigns the track ID
func (s *STrack) Activate(frameID, trackID int) {

	s.kalmanFilter.Initiate(s.mean, &s.covariance, DetectBox(s.rect.GetXyah()))
	s.updateRect()

	s.state = Tracked

	if frameID == 1 {
		s.isActivated = true
	}

	s.trackID = trackID
	s.frameID = frameID
	s.startFrameID = frameID
	s.trackletLen = 0
}

// ReActivate brings a lost track back with a new detection.  A negative
// newTrackID keeps the current ID.
func (s *STrack) ReActivate(newTrack *STrack, frameID, newTrackID int) error {

	if err := s.correct(newTrack); err != nil {
		return err
	}

	if newTrackID >= 0 {
		s.trackID = newTrackID
	}

	s.frameID = frameID
	s.trackletLen = 0

	return nil
}

// Predict advances the Kalman state one frame
func (s *STrack) Predict() {
	if s.state != Tracked {
		s.mean[7] = 0
	}

	s.kalmanFilter.Predict(s.mean, &s.covariance)
}

// Update corrects the track with a matched detection
func (s *STrack) Update(newTrack *STrack, frameID int) error {

	if err := s.correct(newTrack); err != nil {
		return err
	}

	s.frameID = frameID
	s.trackletLen++

	return nil
}

// correct applies the Kalman measurement update for a matched detection
func (s *STrack) correct(det *STrack) error {

	err := s.kalmanFilter.Update(s.mean, &s.covariance,
		DetectBox(det.GetRect().GetXyah()))

	if err != nil {
		return fmt.Errorf("error updating: %w", err)
	}

	s.updateRect()

	s.state = Tracked
	s.isActivated = true
	s.score = det.GetScore()
	s.detectionID = det.GetDetectionID()

	return nil
}

// MarkAsLost marks the track as lost
func (s *STrack) MarkAsLost() {
	s.state = Lost
}

// MarkAsRemoved marks the track as removed
func (s *STrack) MarkAsRemoved() {
	s.state = Removed
}

// updateRect sets the bounding box from the state mean
func (s *STrack) updateRect() {
	s.rect.SetWidth(s.mean[2] * s.mean[3])
	s.rect.SetHeight(s.mean[3])
	s.rect.SetX(s.mean[0] - s.rect.Width()/2)
	s.rect.SetY(s.mean[1] - s.rect.Height()/2)
}
