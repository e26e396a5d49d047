package tracker

import (
	"fmt"
)

// BYTETracker associates detections to tracks in two stages, first the high
// confidence detections and then the low confidence ones against whatever
// tracks remain unmatched
type BYTETracker struct {
	// trackThresh splits detections into the high and low confidence sets
	trackThresh float32
	// highThresh is the minimum score for an unmatched detection to start a
	// new track
	highThresh float32
	// matchThresh is the maximum IoU distance accepted in the first stage
	matchThresh float32
	// maxTimeLost is the number of frames a lost track is kept before removal
	maxTimeLost int
	frameID     int
	// trackIDCount is the last issued track ID
	trackIDCount   int
	trackedStracks []*STrack
	lostStracks    []*STrack
	removedStracks []*STrack
}

// Second stage and unconfirmed track IoU distance limits
const (
	lowScoreMatchThresh    = 0.5
	unconfirmedMatchThresh = 0.7
	duplicateIoUDistance   = 0.15
)

// NewBYTETracker initializes and returns a new BYTETracker.  The lost track
// buffer is trackBuffer frames at 30 FPS scaled to the given frameRate.
func NewBYTETracker(frameRate int, trackBuffer int, trackThresh float32,
	highThresh float32, matchThresh float32) *BYTETracker {

	return &BYTETracker{
		trackThresh: trackThresh,
		highThresh:  highThresh,
		matchThresh: matchThresh,
		maxTimeLost: int(float32(frameRate) / 30.0 * float32(trackBuffer)),
	}
}

// Reset clears all track state.  ID numbering continues so tracks created
// after a reset never reuse an earlier ID
func (bt *BYTETracker) Reset() {
	bt.frameID = 0
	bt.trackedStracks = make([]*STrack, 0)
	bt.lostStracks = make([]*STrack, 0)
	bt.removedStracks = make([]*STrack, 0)
}

// Update advances the tracker one frame with the given detections and returns
// the activated tracks
func (bt *BYTETracker) Update(objects []Object) ([]Track, error) {

	bt.frameID++

	// split detections by confidence
	var detStracks, detLowStracks []*STrack

	for _, object := range objects {

		strack := newSTrackFromObject(object)

		if object.Prob >= bt.trackThresh {
			detStracks = append(detStracks, strack)
		} else {
			detLowStracks = append(detLowStracks, strack)
		}
	}

	var activeStracks, unconfirmedStracks []*STrack

	for _, strack := range bt.trackedStracks {
		if strack.IsActivated() {
			activeStracks = append(activeStracks, strack)
		} else {
			unconfirmedStracks = append(unconfirmedStracks, strack)
		}
	}

	strackPool := jointStracks(activeStracks, bt.lostStracks)

	for _, strack := range strackPool {
		strack.Predict()
	}

	// first association with high score detections
	var currentTracked, refound []*STrack

	matches, unmatchedTracks, unmatchedDets, err := linearAssignment(
		iouDistance(strackPool, detStracks),
		len(strackPool), len(detStracks), bt.matchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("first association failed: %w", err)
	}

	currentTracked, refound, err = bt.applyMatches(matches, strackPool,
		detStracks, currentTracked, refound)

	if err != nil {
		return nil, fmt.Errorf("first association update failed: %w", err)
	}

	remainDets := make([]*STrack, 0, len(unmatchedDets))

	for _, idx := range unmatchedDets {
		remainDets = append(remainDets, detStracks[idx])
	}

	var remainTracked []*STrack

	for _, idx := range unmatchedTracks {
		if strackPool[idx].GetSTrackState() == Tracked {
			remainTracked = append(remainTracked, strackPool[idx])
		}
	}

	// second association with the low score detections
	matches, unmatchedTracks, _, err = linearAssignment(
		iouDistance(remainTracked, detLowStracks),
		len(remainTracked), len(detLowStracks), lowScoreMatchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("second association failed: %w", err)
	}

	currentTracked, refound, err = bt.applyMatches(matches, remainTracked,
		detLowStracks, currentTracked, refound)

	if err != nil {
		return nil, fmt.Errorf("second association update failed: %w", err)
	}

	var currentLost []*STrack

	for _, idx := range unmatchedTracks {
		track := remainTracked[idx]

		if track.GetSTrackState() != Lost {
			track.MarkAsLost()
			currentLost = append(currentLost, track)
		}
	}

	// unconfirmed tracks get one chance to match the remaining detections
	var currentRemoved []*STrack

	matches, unmatchedUnconfirmed, unmatchedDets, err := linearAssignment(
		iouDistance(unconfirmedStracks, remainDets),
		len(unconfirmedStracks), len(remainDets), unconfirmedMatchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("unconfirmed association failed: %w", err)
	}

	for _, m := range matches {
		track := unconfirmedStracks[m[0]]

		if err := track.Update(remainDets[m[1]], bt.frameID); err != nil {
			return nil, fmt.Errorf("unconfirmed track update failed: %w", err)
		}

		currentTracked = append(currentTracked, track)
	}

	for _, idx := range unmatchedUnconfirmed {
		track := unconfirmedStracks[idx]
		track.MarkAsRemoved()
		currentRemoved = append(currentRemoved, track)
	}

	// start new tracks
	for _, idx := range unmatchedDets {
		track := remainDets[idx]

		if track.GetScore() < bt.highThresh {
			continue
		}

		bt.trackIDCount++
		track.Activate(bt.frameID, bt.trackIDCount)
		currentTracked = append(currentTracked, track)
	}

	for _, lost := range bt.lostStracks {
		if bt.frameID-lost.GetFrameID() > bt.maxTimeLost {
			lost.MarkAsRemoved()
			currentRemoved = append(currentRemoved, lost)
		}
	}

	bt.trackedStracks = jointStracks(currentTracked, refound)
	bt.lostStracks = subStracks(jointStracks(subStracks(bt.lostStracks,
		bt.trackedStracks), currentLost), bt.removedStracks)
	bt.removedStracks = jointStracks(bt.removedStracks, currentRemoved)
	bt.trackedStracks, bt.lostStracks = removeDuplicateStracks(bt.trackedStracks,
		bt.lostStracks)

	var out []Track

	for _, track := range bt.trackedStracks {
		if track.IsActivated() {
			out = append(out, track.Track())
		}
	}

	return out, nil
}

// applyMatches updates tracked tracks with their matched detection and
// reactivates lost ones
func (bt *BYTETracker) applyMatches(matches [][2]int, tracks, dets []*STrack,
	tracked, refound []*STrack) ([]*STrack, []*STrack, error) {

	for _, m := range matches {
		track := tracks[m[0]]
		det := dets[m[1]]

		if track.GetSTrackState() == Tracked {
			if err := track.Update(det, bt.frameID); err != nil {
				return nil, nil, err
			}

			tracked = append(tracked, track)
			continue
		}

		if err := track.ReActivate(det, bt.frameID, -1); err != nil {
			return nil, nil, err
		}

		refound = append(refound, track)
	}

	return tracked, refound, nil
}

// jointStracks combines two lists of tracks keeping the first occurrence of
// each track ID
func jointStracks(a, b []*STrack) []*STrack {

	exists := make(map[int]bool, len(a)+len(b))
	res := make([]*STrack, 0, len(a)+len(b))

	for _, track := range a {
		exists[track.GetTrackID()] = true
		res = append(res, track)
	}

	for _, track := range b {
		if tid := track.GetTrackID(); !exists[tid] {
			exists[tid] = true
			res = append(res, track)
		}
	}

	return res
}

// subStracks returns the tracks in a whose ID is not in b, keeping the order
// of a
func subStracks(a, b []*STrack) []*STrack {

	drop := make(map[int]bool, len(b))

	for _, track := range b {
		drop[track.GetTrackID()] = true
	}

	res := make([]*STrack, 0, len(a))

	for _, track := range a {
		if !drop[track.GetTrackID()] {
			res = append(res, track)
		}
	}

	return res
}

// removeDuplicateStracks drops tracks that overlap between the two lists,
// keeping whichever of each pair has been tracked the longest
func removeDuplicateStracks(a, b []*STrack) ([]*STrack, []*STrack) {

	dist := iouDistance(a, b)
	dupA := make([]bool, len(a))
	dupB := make([]bool, len(b))

	for i := range dist {
		for j := range dist[i] {
			if dist[i][j] >= duplicateIoUDistance {
				continue
			}

			timeP := a[i].GetFrameID() - a[i].GetStartFrameID()
			timeQ := b[j].GetFrameID() - b[j].GetStartFrameID()

			if timeP > timeQ {
				dupB[j] = true
			} else {
				dupA[i] = true
			}
		}
	}

	return keepUnflagged(a, dupA), keepUnflagged(b, dupB)
}

func keepUnflagged(tracks []*STrack, flagged []bool) []*STrack {
	var res []*STrack

	for i, f := range flagged {
		if !f {
			res = append(res, tracks[i])
		}
	}

	return res
}

// calcIous returns the IoU between every pair of rectangles, indexed [a][b].
// The result is nil when either side is empty.
func calcIous(aRects, bRects []Rect) [][]float32 {

	if len(aRects) == 0 || len(bRects) == 0 {
		return nil
	}

	ious := make([][]float32, len(aRects))

	for ai := range aRects {
		ious[ai] = make([]float32, len(bRects))

		for bi := range bRects {
			ious[ai][bi] = bRects[bi].CalcIoU(aRects[ai])
		}
	}

	return ious
}

// iouDistance returns the 1-IoU cost matrix between two sets of tracks
func iouDistance(aTracks, bTracks []*STrack) [][]float32 {

	aRects := make([]Rect, 0, len(aTracks))
	bRects := make([]Rect, 0, len(bTracks))

	for _, track := range aTracks {
		aRects = append(aRects, *track.GetRect())
	}

	for _, track := range bTracks {
		bRects = append(bRects, *track.GetRect())
	}

	cost := calcIous(aRects, bRects)

	for i := range cost {
		for j := range cost[i] {
			cost[i][j] = 1 - cost[i][j]
		}
	}

	return cost
}
