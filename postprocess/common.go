package postprocess

import (
	"math"
)

// allClasses disables class filtering in nms and DetectObjects
const allClasses = -1

// clamp restricts val to the range min and max
func clamp(val float32, min, max int) float32 {

	if val > float32(min) {

		if val < float32(max) {
			return val
		}

		return float32(max)
	}

	return float32(min)
}

// quickSortIndiceInverse sorts input in descending order and applies the
// same reordering to indices
func quickSortIndiceInverse(input []float32, left int, right int, indices []int) int {

	var key float32
	var keyIndex int

	low := left
	high := right

	if left < right {
		keyIndex = indices[left]
		key = input[left]

		for low < high {
			for low < high && input[high] <= key {
				high--
			}

			input[low] = input[high]
			indices[low] = indices[high]

			for low < high && input[low] >= key {
				low++
			}

			input[high] = input[low]
			indices[high] = indices[low]
		}

		input[low] = key
		indices[low] = keyIndex

		quickSortIndiceInverse(input, left, low-1, indices)
		quickSortIndiceInverse(input, low+1, right, indices)
	}

	return low
}

// nms runs Non-Maximum Suppression over boxes held as consecutive
// (left, top, width, height) quads in locations.  order holds box indices
// sorted by descending score; suppressed entries are set to -1.  Only boxes
// of class filterID are compared unless it is allClasses.
func nms(validCount int, locations []float32, classIDs, order []int,
	filterID int, threshold float32) {

	for i := 0; i < validCount; i++ {

		n := order[i]

		if n == -1 || (filterID != allClasses && classIDs[n] != filterID) {
			continue
		}

		for j := i + 1; j < validCount; j++ {
			m := order[j]

			if m == -1 || (filterID != allClasses && classIDs[m] != filterID) {
				continue
			}

			xmin0 := locations[n*4+0]
			ymin0 := locations[n*4+1]
			xmax0 := xmin0 + locations[n*4+2]
			ymax0 := ymin0 + locations[n*4+3]

			xmin1 := locations[m*4+0]
			ymin1 := locations[m*4+1]
			xmax1 := xmin1 + locations[m*4+2]
			ymax1 := ymin1 + locations[m*4+3]

			iou := calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1, xmax1, ymax1)

			if iou > threshold {
				order[j] = -1
			}
		}
	}
}

// calculateOverlap works out the Intersection over Union (IoU) of two boxes
// using inclusive pixel dimensions
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1))+1.0)
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1))+1.0)
	intersection := float32(w * h)

	area0 := (xmax0 - xmin0 + 1) * (ymax0 - ymin0 + 1)
	area1 := (xmax1 - xmin1 + 1) * (ymax1 - ymin1 + 1)

	union := area0 + area1 - intersection

	if union <= 0 {
		return 0.0
	}

	return intersection / union
}
