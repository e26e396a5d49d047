package counter

import (
	"image"

	"github.com/swdee/go-linecount/geometry"
	"github.com/swdee/go-linecount/tracker"
)

// Annotator draws the engine state onto a frame of type F.  For each
// processed frame Track and Motion are called per track, then Border, then
// Counters.
type Annotator[F any] interface {
	// Track draws the box and identity of a track
	Track(frame F, t tracker.Track)
	// Motion draws the movement of an identity since the previous frame
	Motion(frame F, id int, from, to image.Point)
	// Border draws the counting line
	Border(frame F, border geometry.Segment)
	// Counters draws the current counter values
	Counters(frame F, s Snapshot)
}
