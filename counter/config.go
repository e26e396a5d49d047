package counter

import (
	"image"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/swdee/go-linecount/direction"
	"github.com/swdee/go-linecount/geometry"
)

// Construction errors, test with errors.Is
var (
	ErrInvalidBorder      = errors.New("invalid border")
	ErrDuplicateDirection = errors.New("duplicate direction key")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidRetention   = errors.New("invalid retention")
	ErrNoTracker          = errors.New("tracker is required")
)

// Config holds the construction parameters of an Engine
type Config struct {
	// Border is the counting line, exactly two distinct points
	Border []image.Point
	// Directions lists the counters in display order.  When empty a single
	// unnamed counter with no direction constraint is used.
	Directions []direction.Named
	// RetainFrames is the number of processed frames an identity may be
	// absent before its last position is forgotten.  Zero keeps positions
	// for the lifetime of the engine.
	RetainFrames int
	// Notifier is optional
	Notifier Notifier
	// Logger defaults to the logrus standard logger
	Logger logrus.FieldLogger
}

// border validates and returns the border segment
func (c Config) border() (geometry.Segment, error) {

	if len(c.Border) != 2 {
		return geometry.Segment{}, errors.Wrapf(ErrInvalidBorder,
			"need exactly 2 points, got %d", len(c.Border))
	}

	seg := geometry.NewSegment(c.Border[0], c.Border[1])

	if seg.Degenerate() {
		return geometry.Segment{}, errors.Wrapf(ErrInvalidBorder,
			"points are identical %v", c.Border[0])
	}

	return seg, nil
}

// directions validates the direction list and returns the counters to
// create
func (c Config) directions() ([]direction.Named, error) {

	if len(c.Directions) == 0 {
		return []direction.Named{{Key: "", Spec: direction.Spec{}}}, nil
	}

	seen := make(map[string]bool, len(c.Directions))

	for _, d := range c.Directions {
		if d.Key == "" && len(c.Directions) > 1 {
			return nil, errors.Wrap(ErrInvalidDirection,
				"empty key only allowed for a single counter")
		}

		if err := d.Spec.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidDirection, "key %q: %v", d.Key, err)
		}

		if seen[d.Key] {
			return nil, errors.Wrapf(ErrDuplicateDirection, "key %q", d.Key)
		}

		seen[d.Key] = true
	}

	out := make([]direction.Named, len(c.Directions))
	copy(out, c.Directions)

	return out, nil
}

// PresetDirections resolves preset direction keys, such as "bottom", into a
// direction list for Config.  Unknown or repeated keys are reported as
// ErrInvalidDirection or ErrDuplicateDirection.
func PresetDirections(keys ...string) ([]direction.Named, error) {

	seen := make(map[string]bool, len(keys))

	for _, k := range keys {
		if _, ok := direction.Preset(k); !ok {
			return nil, errors.Wrapf(ErrInvalidDirection, "unknown key %q, expected one of %v",
				k, direction.PresetKeys())
		}

		if seen[k] {
			return nil, errors.Wrapf(ErrDuplicateDirection, "key %q", k)
		}

		seen[k] = true
	}

	named, err := direction.Lookup(keys...)

	if err != nil {
		return nil, errors.Wrap(ErrInvalidDirection, err.Error())
	}

	return named, nil
}
