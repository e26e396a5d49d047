package postprocess

import "github.com/swdee/go-linecount/tracker"

// DetectionsToObjects converts detection results into tracker objects
func DetectionsToObjects(dets []DetectResult) []tracker.Object {

	objs := make([]tracker.Object, 0, len(dets))

	for _, det := range dets {
		objs = append(objs, tracker.NewObjectFromBox(det.Box.Rectangle(),
			det.Class, det.Probability, det.ID))
	}

	return objs
}
