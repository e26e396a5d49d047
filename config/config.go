// Package config loads the run configuration of the line counter from a YAML
// or JSON file.  Optional values are pointers, the Get* accessors return the
// default for any value that was not set.
package config

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// maxFileSize is the largest configuration file accepted
const maxFileSize = 1 * 1024 * 1024

// Tracker kinds
const (
	TrackerSORT = "sort"
	TrackerBYTE = "byte"
)

// Defaults
const (
	DefaultRetainFrames = 30
	DefaultTrackerKind  = TrackerSORT
	DefaultFrameRate    = 30
	DefaultTrackBuffer  = 30
	DefaultTrackThresh  = 0.5
	DefaultHighThresh   = 0.6
	DefaultMatchThresh  = 0.8
	DefaultConfidence   = 0.2
	DefaultNMSIoU       = 0.2
	DefaultClass        = "person"
	DefaultInputSize    = 640
	DefaultClassNum     = 80
	DefaultMaxObjects   = 64
)

// DefaultBorder is the counting line used when none is configured, a
// horizontal line across a 1080p frame
var DefaultBorder = [][2]int{{0, 500}, {1920, 500}}

// File is the root of the configuration file
type File struct {
	// Border holds the two [x, y] points of the counting line
	Border [][2]int `json:"border,omitempty"`
	// Directions are preset direction keys, one counter each
	Directions []string `json:"directions,omitempty"`
	// CustomDirections define additional counters by axis constraint, they
	// are added after Directions in key order
	CustomDirections map[string]AxisConstraints `json:"custom_directions,omitempty"`
	RetainFrames     *int                       `json:"retain_frames,omitempty"`
	Tracker          *Tracker                   `json:"tracker,omitempty"`
	Detector         *Detector                  `json:"detector,omitempty"`
}

// AxisConstraints is a direction given as constraint names per axis, each
// one of "any", "positive" or "negative"
type AxisConstraints struct {
	X string `json:"x,omitempty"`
	Y string `json:"y,omitempty"`
}

// Tracker configures the tracking strategy
type Tracker struct {
	// Kind is "sort" or "byte"
	Kind *string `json:"kind,omitempty"`

	// BYTETracker params
	FrameRate   *int     `json:"frame_rate,omitempty"`
	TrackBuffer *int     `json:"track_buffer,omitempty"`
	TrackThresh *float64 `json:"track_thresh,omitempty"`
	HighThresh  *float64 `json:"high_thresh,omitempty"`
	MatchThresh *float64 `json:"match_thresh,omitempty"`

	// SORT params
	MaxAge       *int     `json:"max_age,omitempty"`
	MinHits      *int     `json:"min_hits,omitempty"`
	IoUThreshold *float64 `json:"iou_threshold,omitempty"`
}

// Detector configures YOLOv5 output decoding
type Detector struct {
	Confidence   *float64 `json:"confidence,omitempty"`
	IoUThreshold *float64 `json:"iou_threshold,omitempty"`
	// Class is the label name or index of the objects to count, "all"
	// counts every class
	Class      *string `json:"class,omitempty"`
	InputSize  *int    `json:"input_size,omitempty"`
	ClassNum   *int    `json:"class_num,omitempty"`
	MaxObjects *int    `json:"max_objects,omitempty"`
	// Normalized is set for models that output box coordinates as fractions
	// of the input size
	Normalized *bool `json:"normalized,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrBool(v bool) *bool          { return &v }

// Empty returns a File with nothing set
func Empty() *File {
	return &File{}
}

// Default returns a File with every value set to its default
func Default() *File {
	return &File{
		Border:       [][2]int{DefaultBorder[0], DefaultBorder[1]},
		RetainFrames: ptrInt(DefaultRetainFrames),
		Tracker: &Tracker{
			Kind:         ptrString(DefaultTrackerKind),
			FrameRate:    ptrInt(DefaultFrameRate),
			TrackBuffer:  ptrInt(DefaultTrackBuffer),
			TrackThresh:  ptrFloat64(DefaultTrackThresh),
			HighThresh:   ptrFloat64(DefaultHighThresh),
			MatchThresh:  ptrFloat64(DefaultMatchThresh),
			MaxAge:       ptrInt(1),
			MinHits:      ptrInt(3),
			IoUThreshold: ptrFloat64(0.3),
		},
		Detector: &Detector{
			Confidence:   ptrFloat64(DefaultConfidence),
			IoUThreshold: ptrFloat64(DefaultNMSIoU),
			Class:        ptrString(DefaultClass),
			InputSize:    ptrInt(DefaultInputSize),
			ClassNum:     ptrInt(DefaultClassNum),
			MaxObjects:   ptrInt(DefaultMaxObjects),
			Normalized:   ptrBool(false),
		},
	}
}

// Load reads a .yaml, .yml or .json configuration file.  Unknown fields are
// an error.
func Load(path string) (*File, error) {

	cleanPath := filepath.Clean(path)

	switch ext := strings.ToLower(filepath.Ext(cleanPath)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, errors.Errorf("config file must have .yaml, .yml or .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)

	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}

	if info.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return Parse(data)
}

// Parse decodes YAML or JSON configuration data and validates it
func Parse(data []byte) (*File, error) {

	f := Empty()

	if err := yaml.UnmarshalStrict(data, f); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return f, nil
}

// Marshal encodes the configuration as YAML
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Validate checks every value that is set
func (f *File) Validate() error {

	if f.Border != nil {
		if len(f.Border) != 2 {
			return errors.Errorf("border must have 2 points, got %d", len(f.Border))
		}

		if f.Border[0] == f.Border[1] {
			return errors.Errorf("border points must differ, got %v twice", f.Border[0])
		}
	}

	if f.RetainFrames != nil && *f.RetainFrames < 0 {
		return errors.Errorf("retain_frames must be non-negative, got %d", *f.RetainFrames)
	}

	if _, err := f.DirectionList(); err != nil {
		return err
	}

	if f.Tracker != nil {
		if err := f.Tracker.validate(); err != nil {
			return errors.Wrap(err, "tracker")
		}
	}

	if f.Detector != nil {
		if err := f.Detector.validate(); err != nil {
			return errors.Wrap(err, "detector")
		}
	}

	return nil
}

// GetBorder returns the border points
func (f *File) GetBorder() []image.Point {

	b := f.Border

	if b == nil {
		b = DefaultBorder
	}

	pts := make([]image.Point, len(b))

	for i, p := range b {
		pts[i] = image.Pt(p[0], p[1])
	}

	return pts
}

// GetRetainFrames returns the position memory retention
func (f *File) GetRetainFrames() int {
	if f.RetainFrames == nil {
		return DefaultRetainFrames
	}
	return *f.RetainFrames
}

// GetTracker returns the tracker section, never nil
func (f *File) GetTracker() *Tracker {
	if f.Tracker == nil {
		f.Tracker = &Tracker{}
	}
	return f.Tracker
}

// GetDetector returns the detector section, never nil
func (f *File) GetDetector() *Detector {
	if f.Detector == nil {
		f.Detector = &Detector{}
	}
	return f.Detector
}

// customKeys returns the custom direction keys in sorted order
func (f *File) customKeys() []string {

	keys := make([]string, 0, len(f.CustomDirections))

	for k := range f.CustomDirections {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

func (t *Tracker) validate() error {

	switch k := t.GetKind(); k {
	case TrackerSORT, TrackerBYTE:
	default:
		return errors.Errorf("unknown kind %q, expected %q or %q", k, TrackerSORT, TrackerBYTE)
	}

	for name, v := range map[string]*int{
		"frame_rate":   t.FrameRate,
		"track_buffer": t.TrackBuffer,
		"max_age":      t.MaxAge,
		"min_hits":     t.MinHits,
	} {
		if v != nil && *v <= 0 {
			return errors.Errorf("%s must be positive, got %d", name, *v)
		}
	}

	for name, v := range map[string]*float64{
		"track_thresh":  t.TrackThresh,
		"high_thresh":   t.HighThresh,
		"match_thresh":  t.MatchThresh,
		"iou_threshold": t.IoUThreshold,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return errors.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	return nil
}

// GetKind returns the tracker kind
func (t *Tracker) GetKind() string {
	if t.Kind == nil {
		return DefaultTrackerKind
	}
	return strings.ToLower(*t.Kind)
}

// GetFrameRate returns the video frame rate used to scale the BYTETracker
// lost track buffer
func (t *Tracker) GetFrameRate() int {
	if t.FrameRate == nil {
		return DefaultFrameRate
	}
	return *t.FrameRate
}

// GetTrackBuffer returns the number of frames at 30 FPS a lost BYTETracker
// track is kept
func (t *Tracker) GetTrackBuffer() int {
	if t.TrackBuffer == nil {
		return DefaultTrackBuffer
	}
	return *t.TrackBuffer
}

// GetTrackThresh returns the BYTETracker high/low detection split
func (t *Tracker) GetTrackThresh() float64 {
	if t.TrackThresh == nil {
		return DefaultTrackThresh
	}
	return *t.TrackThresh
}

// GetHighThresh returns the BYTETracker new track threshold
func (t *Tracker) GetHighThresh() float64 {
	if t.HighThresh == nil {
		return DefaultHighThresh
	}
	return *t.HighThresh
}

// GetMatchThresh returns the BYTETracker first stage match threshold
func (t *Tracker) GetMatchThresh() float64 {
	if t.MatchThresh == nil {
		return DefaultMatchThresh
	}
	return *t.MatchThresh
}

// GetMaxAge returns the SORT max age, zero means the tracker default
func (t *Tracker) GetMaxAge() int {
	if t.MaxAge == nil {
		return 0
	}
	return *t.MaxAge
}

// GetMinHits returns the SORT min hits, zero means the tracker default
func (t *Tracker) GetMinHits() int {
	if t.MinHits == nil {
		return 0
	}
	return *t.MinHits
}

// GetIoUThreshold returns the SORT IoU threshold, zero means the tracker
// default
func (t *Tracker) GetIoUThreshold() float64 {
	if t.IoUThreshold == nil {
		return 0
	}
	return *t.IoUThreshold
}

func (d *Detector) validate() error {

	for name, v := range map[string]*float64{
		"confidence":    d.Confidence,
		"iou_threshold": d.IoUThreshold,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return errors.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	for name, v := range map[string]*int{
		"input_size":  d.InputSize,
		"class_num":   d.ClassNum,
		"max_objects": d.MaxObjects,
	} {
		if v != nil && *v <= 0 {
			return errors.Errorf("%s must be positive, got %d", name, *v)
		}
	}

	return nil
}

// GetConfidence returns the objectness threshold
func (d *Detector) GetConfidence() float64 {
	if d.Confidence == nil {
		return DefaultConfidence
	}
	return *d.Confidence
}

// GetIoUThreshold returns the NMS IoU threshold
func (d *Detector) GetIoUThreshold() float64 {
	if d.IoUThreshold == nil {
		return DefaultNMSIoU
	}
	return *d.IoUThreshold
}

// GetClass returns the class to count
func (d *Detector) GetClass() string {
	if d.Class == nil {
		return DefaultClass
	}
	return *d.Class
}

// GetInputSize returns the square model input size in pixels
func (d *Detector) GetInputSize() int {
	if d.InputSize == nil {
		return DefaultInputSize
	}
	return *d.InputSize
}

// GetClassNum returns the number of classes the model was trained on
func (d *Detector) GetClassNum() int {
	if d.ClassNum == nil {
		return DefaultClassNum
	}
	return *d.ClassNum
}

// GetMaxObjects returns the maximum detections kept per frame
func (d *Detector) GetMaxObjects() int {
	if d.MaxObjects == nil {
		return DefaultMaxObjects
	}
	return *d.MaxObjects
}

// GetNormalized returns true if the model outputs normalized coordinates
func (d *Detector) GetNormalized() bool {
	if d.Normalized == nil {
		return false
	}
	return *d.Normalized
}
