// Package options holds the command line flags of linecount and merges them
// over the configuration file.
package options

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/swdee/go-linecount/config"
)

// codecs maps the output video format to its FourCC codec
var codecs = map[string]string{
	"mp4": "MP4V",
	"avi": "MJPG",
}

// Renderers draw the annotations onto output frames
const (
	// RendererGoCV draws with OpenCV directly on the frame
	RendererGoCV = "gocv"
	// RendererCanvas draws with the pure Go rasterizer on an image copy of
	// the frame
	RendererCanvas = "canvas"
)

// Options is the main context object for the linecount command
type Options struct {
	Src          string
	Dest         string
	Model        string
	Labels       string
	VideoFormat  string
	Renderer     string
	Confidence   float64
	IoUThreshold float64
	Directions   []string
	ConfigFile   string
	Tracker      string
	Class        string
	RetainFrames int
	MaxFrames    int
	FPS          float64
	LogLevel     string
	LogJSON      bool
	PrintConfig  bool
}

// NewOptions creates a new Options with default values
func NewOptions() *Options {
	return &Options{
		Src:          "./data/TownCentreXVID.mp4",
		Dest:         "./outputs/",
		Model:        "./models/yolov5n.onnx",
		VideoFormat:  "mp4",
		Renderer:     RendererGoCV,
		Confidence:   config.DefaultConfidence,
		IoUThreshold: config.DefaultNMSIoU,
		Tracker:      config.DefaultTrackerKind,
		Class:        config.DefaultClass,
		RetainFrames: config.DefaultRetainFrames,
		FPS:          30,
		LogLevel:     logrus.InfoLevel.String(),
	}
}

// Flags returns flags for the linecount command
func (o *Options) Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("linecount", pflag.ExitOnError)

	fs.StringVar(&o.Src, "src", o.Src, "Path to video source.")
	fs.StringVar(&o.Dest, "dest", o.Dest, "Path to output directory.")
	fs.StringVar(&o.Model, "model", o.Model, "Path to YOLOv5 ONNX model file.")
	fs.StringVar(&o.Labels, "labels", o.Labels, "Path to class labels file, one per line. Defaults to COCO labels.")
	fs.StringVar(&o.VideoFormat, "video-fmt", o.VideoFormat, "Format of output video file, mp4 or avi.")
	fs.StringVar(&o.Renderer, "renderer", o.Renderer, "Annotation renderer, gocv or canvas.")
	fs.Float64Var(&o.Confidence, "confidence", o.Confidence, "Confidence threshold.")
	fs.Float64Var(&o.IoUThreshold, "iou-threshold", o.IoUThreshold, "IoU threshold for NMS.")
	fs.StringSliceVar(&o.Directions, "direction", o.Directions, "Count crossings in the given direction, one of bottom, left, right, top. Repeatable.")
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "Path to YAML or JSON configuration file. Flags override file values.")
	fs.StringVar(&o.Tracker, "tracker", o.Tracker, "Tracker to use, sort or byte.")
	fs.StringVar(&o.Class, "class", o.Class, "Label name or index of the objects to count, or all.")
	fs.IntVar(&o.RetainFrames, "retain-frames", o.RetainFrames, "Frames a track may be missing before its position is forgotten, 0 keeps forever.")
	fs.IntVar(&o.MaxFrames, "max-frames", o.MaxFrames, "Stop after this many frames, 0 processes the whole video.")
	fs.Float64Var(&o.FPS, "fps", o.FPS, "Frame rate of the output video.")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: trace, debug, info, warn, error.")
	fs.BoolVar(&o.LogJSON, "log-json", o.LogJSON, "Log in JSON format.")
	fs.BoolVar(&o.PrintConfig, "print-config", o.PrintConfig, "Print the effective configuration as YAML and exit.")

	return fs
}

// Validate checks the flag values that are not part of the configuration
// file
func (o *Options) Validate() error {

	if _, ok := codecs[strings.ToLower(o.VideoFormat)]; !ok {
		return errors.Errorf("unknown video format %q, expected mp4 or avi", o.VideoFormat)
	}

	switch o.Renderer {
	case RendererGoCV, RendererCanvas:
	default:
		return errors.Errorf("unknown renderer %q, expected %s or %s", o.Renderer,
			RendererGoCV, RendererCanvas)
	}

	if o.MaxFrames < 0 {
		return errors.Errorf("max-frames must be non-negative, got %d", o.MaxFrames)
	}

	if o.FPS <= 0 {
		return errors.Errorf("fps must be positive, got %f", o.FPS)
	}

	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return errors.Wrap(err, "log-level")
	}

	return nil
}

// Config returns the run configuration, loaded from ConfigFile when set,
// with every flag changed on the command line applied over it
func (o *Options) Config(fs *pflag.FlagSet) (*config.File, error) {

	f := config.Default()

	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)

		if err != nil {
			return nil, err
		}

		f = loaded
	}

	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	if changed("direction") {
		f.Directions = o.Directions
	}

	if changed("retain-frames") {
		f.RetainFrames = &o.RetainFrames
	}

	if changed("tracker") {
		f.GetTracker().Kind = &o.Tracker
	}

	if changed("confidence") {
		f.GetDetector().Confidence = &o.Confidence
	}

	if changed("iou-threshold") {
		f.GetDetector().IoUThreshold = &o.IoUThreshold
	}

	if changed("class") {
		f.GetDetector().Class = &o.Class
	}

	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return f, nil
}

// Logger configures a logger from the log flags with every entry tagged
// with a run ID
func (o *Options) Logger() (*logrus.Entry, error) {

	level, err := logrus.ParseLevel(o.LogLevel)

	if err != nil {
		return nil, errors.Wrap(err, "log-level")
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)

	if o.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log.WithField("run_id", uuid.NewString()), nil
}

// Codec returns the FourCC codec of the output video format
func (o *Options) Codec() string {
	return codecs[strings.ToLower(o.VideoFormat)]
}

// OutputPaths returns the output video and snapshot image paths, named
// after the source video and model
func (o *Options) OutputPaths() (video string, snapshot string) {

	base := stem(o.Src) + "_" + stem(o.Model)

	video = filepath.Join(o.Dest, base+"."+strings.ToLower(o.VideoFormat))
	snapshot = filepath.Join(o.Dest, base+".jpg")

	return video, snapshot
}

// stem returns the file name up to its first dot
func stem(path string) string {
	name := filepath.Base(path)

	if i := strings.Index(name, "."); i > 0 {
		return name[:i]
	}

	return name
}
