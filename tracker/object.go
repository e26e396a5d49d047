package tracker

import "image"

// Object represents a single detection handed to a tracker for the current
// frame
type Object struct {
	// Rect is the bounding box of the detected object
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Prob is the confidence/probability of the object detected
	Prob float32
	// ID is a unique ID for the detection which is carried through to the
	// Track it gets assigned to
	ID int64
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label int, prob float32, id int64) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
		ID:    id,
	}
}

// NewObjectFromBox creates an Object from a corner form bounding box
func NewObjectFromBox(box image.Rectangle, label int, prob float32, id int64) Object {
	return NewObject(RectFromBox(box), label, prob, id)
}

// Track is a tracker result for the current frame.  The ID is stable for the
// same physical object for the lifetime of the tracker instance.
type Track struct {
	// ID is the identity assigned by the tracker
	ID int
	// Rect is the tracked bounding box
	Rect Rect
	// Label is the class label of the object
	Label int
	// Score is the confidence of the last detection matched to the track
	Score float32
	// DetectionID is the ID of the last Object matched to the track
	DetectionID int64
}

// Box returns the tracked bounding box in corner form with whole pixel
// coordinates
func (t Track) Box() image.Rectangle {
	return t.Rect.Box()
}
