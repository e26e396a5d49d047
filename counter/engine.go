package counter

import (
	"image"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/swdee/go-linecount/direction"
	"github.com/swdee/go-linecount/geometry"
	"github.com/swdee/go-linecount/tracker"
)

// Tracker turns per-frame detections into identity tracks
type Tracker interface {
	Update(objects []tracker.Object) ([]tracker.Track, error)
}

// counter is a named counter and the direction a crossing must take to
// increment it
type counter struct {
	key   string
	spec  direction.Spec
	value int
}

// Engine counts tracked objects crossing a border line.  Frames are of type
// F and are passed untouched to the Annotator, which may be nil.
//
// Engine is not safe for concurrent use, callers must serialise calls to
// Update.
type Engine[F any] struct {
	border    geometry.Segment
	counters  []*counter
	tracker   Tracker
	annotator Annotator[F]
	notifier  Notifier
	log       logrus.FieldLogger
	retain    uint64
	mem       *memory
	// frames is the number of successful Update calls
	frames uint64
	// clock is the number of frames that produced at least one track and
	// drives position retention
	clock uint64
}

// New returns an Engine counting crossings of cfg.Border by the tracks
// produced by trk.  Invalid configuration is reported with ErrInvalidBorder,
// ErrDuplicateDirection, ErrInvalidDirection, ErrInvalidRetention or
// ErrNoTracker.
func New[F any](cfg Config, trk Tracker, ann Annotator[F]) (*Engine[F], error) {

	if trk == nil {
		return nil, ErrNoTracker
	}

	border, err := cfg.border()

	if err != nil {
		return nil, err
	}

	dirs, err := cfg.directions()

	if err != nil {
		return nil, err
	}

	if cfg.RetainFrames < 0 {
		return nil, errors.Wrapf(ErrInvalidRetention, "retain frames %d is negative",
			cfg.RetainFrames)
	}

	log := cfg.Logger

	if log == nil {
		log = logrus.StandardLogger()
	}

	e := &Engine[F]{
		border:    border,
		tracker:   trk,
		annotator: ann,
		notifier:  cfg.Notifier,
		log:       log,
		retain:    uint64(cfg.RetainFrames),
		mem:       newMemory(),
	}

	for _, d := range dirs {
		e.counters = append(e.counters, &counter{key: d.Key, spec: d.Spec})
	}

	return e, nil
}

// Update runs one frame through the tracker, counts border crossings of the
// tracks seen on the previous processed frame and annotates the frame.  A
// frame without tracks is returned unchanged and leaves all state as it was.
// A tracker error is returned with the frame and state untouched.
func (e *Engine[F]) Update(frame F, objects []tracker.Object) (F, error) {

	tracks, err := e.tracker.Update(objects)

	if err != nil {
		return frame, errors.Wrap(err, "tracker update failed")
	}

	e.frames++

	if len(tracks) == 0 {
		return frame, nil
	}

	e.clock++

	previous := e.mem.snapshot()

	for _, t := range tracks {
		e.mem.put(t.ID, t.Box(), e.clock)
	}

	changed := false

	for _, t := range tracks {
		prevBox, ok := previous[t.ID]

		if !ok {
			continue
		}

		if e.count(t.ID, geometry.Center(prevBox), geometry.Center(t.Box())) {
			changed = true
		}
	}

	if n := e.mem.evict(e.clock, e.retain); n > 0 {
		e.log.WithFields(logrus.Fields{
			"frame":   e.frames,
			"evicted": n,
		}).Debug("forgot stale track positions")
	}

	if changed && e.notifier != nil {
		e.notifier.Notify(e.Counts())
	}

	e.annotate(frame, tracks, previous)

	return frame, nil
}

// count increments every counter whose direction is satisfied by a motion
// from prev to curr that crosses the border, returning true if any counter
// changed
func (e *Engine[F]) count(id int, prev, curr image.Point) bool {

	if !geometry.Intersects(curr, prev, e.border.A, e.border.B) {
		return false
	}

	changed := false

	for _, c := range e.counters {
		if !c.spec.Evaluate(prev, curr) {
			continue
		}

		c.value++
		changed = true

		e.log.WithFields(logrus.Fields{
			"id":    id,
			"key":   c.key,
			"count": c.value,
			"frame": e.frames,
		}).Debug("border crossed")
	}

	return changed
}

func (e *Engine[F]) annotate(frame F, tracks []tracker.Track,
	previous map[int]image.Rectangle) {

	if e.annotator == nil {
		return
	}

	for _, t := range tracks {
		e.annotator.Track(frame, t)

		if prevBox, ok := previous[t.ID]; ok {
			e.annotator.Motion(frame, t.ID, geometry.Center(prevBox),
				geometry.Center(t.Box()))
		}
	}

	e.annotator.Border(frame, e.border)
	e.annotator.Counters(frame, e.Counts())
}

// Counts returns the current value of every counter in configuration order
func (e *Engine[F]) Counts() Snapshot {

	s := Snapshot{
		Frame:  e.frames,
		Counts: make([]Counter, 0, len(e.counters)),
	}

	for _, c := range e.counters {
		s.Counts = append(s.Counts, Counter{Key: c.key, Value: c.value})
	}

	return s
}

// Count returns the value of the counter with the given key
func (e *Engine[F]) Count(key string) (int, bool) {
	for _, c := range e.counters {
		if c.key == key {
			return c.value, true
		}
	}

	return 0, false
}

// Border returns the counting line
func (e *Engine[F]) Border() geometry.Segment {
	return e.border
}

// Remembered returns the number of identities in position memory
func (e *Engine[F]) Remembered() int {
	return e.mem.len()
}

// Position returns the last known box of an identity
func (e *Engine[F]) Position(id int) (image.Rectangle, bool) {
	return e.mem.get(id)
}

// Frames returns the number of frames passed through Update
func (e *Engine[F]) Frames() uint64 {
	return e.frames
}

// Reset zeroes all counters and forgets every position, keeping the
// configuration.  The tracker is not reset.
func (e *Engine[F]) Reset() {
	for _, c := range e.counters {
		c.value = 0
	}

	e.mem.reset()
	e.frames = 0
	e.clock = 0
}
