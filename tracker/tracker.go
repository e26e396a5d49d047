/*
Package tracker assigns stable identities to per-frame object detections.

Two strategies are provided.  BYTETracker performs a two stage IoU
association solved with LAPJV and keeps lost tracks for a buffer period.  SORT
performs a single Hungarian assignment on IoU between Kalman predicted tracks
and detections.  Both use the same constant velocity Kalman filter.
*/
package tracker

// Tracker is the contract shared by the tracking strategies.  Update is
// called once per frame with that frame's detections and returns the
// confirmed tracks.  An ID is never reused for a different object within the
// lifetime of a Tracker, including across Reset.
type Tracker interface {
	Update(objects []Object) ([]Track, error)
	Reset()
}

var (
	_ Tracker = (*BYTETracker)(nil)
	_ Tracker = (*SORT)(nil)
)
