package postprocess

import (
	"fmt"

	"github.com/swdee/go-linecount/postprocess/result"
)

// boxAttrs is the number of values preceding the class scores in each YOLOv5
// output row: center x, center y, width, height and objectness
const boxAttrs = 5

// YOLOv5 decodes the raw (1, N, 5+classes) output tensor of an exported
// YOLOv5 model into object detections
type YOLOv5 struct {
	// Params are the Model configuration parameters
	Params YOLOv5Params
	// idGen issues the detection IDs carried through to the tracker
	idGen *result.IDGenerator
	pool  *floatPool
}

// YOLOv5Params defines the YOLOv5 post processing parameters
type YOLOv5Params struct {
	// ObjectClassNum is the number of different object classes the Model has
	// been trained with
	ObjectClassNum int
	// BoxThreshold is the objectness score a row must exceed to be kept
	BoxThreshold float32
	// NMSThreshold is the maximum Intersection over Union (IoU) allowed
	// between two kept boxes
	NMSThreshold float32
	// MaxObjectNumber is the maximum number of objects returned per frame
	MaxObjectNumber int
	// AgnosticNMS suppresses overlapping boxes regardless of their class
	AgnosticNMS bool
	// Normalized is set when box coordinates are fractions of the input
	// image, otherwise they are pixels of the InputWidth x InputHeight model
	// input
	Normalized bool
	// InputWidth and InputHeight are the model input dimensions
	InputWidth  int
	InputHeight int
}

// YOLOv5DefaultParams returns parameters for a COCO trained YOLOv5 model
// with a 640x640 pixel input featuring:
// - Object Classes: 80
// - Box Threshold: 0.2
// - NMS Threshold: 0.2
// - Class agnostic NMS
// - Maximum Object Number: 64
func YOLOv5DefaultParams() YOLOv5Params {
	return YOLOv5Params{
		ObjectClassNum:  80,
		BoxThreshold:    0.2,
		NMSThreshold:    0.2,
		MaxObjectNumber: 64,
		AgnosticNMS:     true,
		InputWidth:      640,
		InputHeight:     640,
	}
}

// Validate checks the parameters can be used for decoding
func (p YOLOv5Params) Validate() error {

	if p.ObjectClassNum <= 0 {
		return fmt.Errorf("object class number must be positive, got %d", p.ObjectClassNum)
	}

	if p.MaxObjectNumber <= 0 {
		return fmt.Errorf("max object number must be positive, got %d", p.MaxObjectNumber)
	}

	if !p.Normalized && (p.InputWidth <= 0 || p.InputHeight <= 0) {
		return fmt.Errorf("input size must be positive, got %dx%d", p.InputWidth, p.InputHeight)
	}

	return nil
}

// RowSize returns the number of values in each output row
func (p YOLOv5Params) RowSize() int {
	return boxAttrs + p.ObjectClassNum
}

// CenterBox is a bounding box given by its center and size
type CenterBox struct {
	X, Y, W, H float32
}

// CornerBox is a bounding box given by its top left and bottom right corners
type CornerBox struct {
	X1, Y1, X2, Y2 float32
}

// Corner converts the box to corner form
func (c CenterBox) Corner() CornerBox {
	return CornerBox{
		X1: c.X - c.W/2,
		Y1: c.Y - c.H/2,
		X2: c.X + c.W/2,
		Y2: c.Y + c.H/2,
	}
}

// ToCornerForm converts center form boxes to corner form
func ToCornerForm(boxes []CenterBox) []CornerBox {

	out := make([]CornerBox, len(boxes))

	for i, b := range boxes {
		out[i] = b.Corner()
	}

	return out
}

// NewYOLOv5 returns an instance of the YOLOv5 post processor
func NewYOLOv5(p YOLOv5Params) *YOLOv5 {
	return &YOLOv5{
		Params: p,
		idGen:  result.NewIDGenerator(),
		pool:   newFloatPool(),
	}
}

// Decode splits the raw output into rows and returns the center form box,
// objectness score and argmax class of every row whose objectness exceeds
// BoxThreshold
func (y *YOLOv5) Decode(raw []float32) ([]CenterBox, []float32, []int, error) {

	rowSize := y.Params.RowSize()

	if y.Params.ObjectClassNum <= 0 {
		return nil, nil, nil, fmt.Errorf("invalid object class number %d", y.Params.ObjectClassNum)
	}

	if len(raw)%rowSize != 0 {
		return nil, nil, nil, fmt.Errorf("output length %d is not a multiple of row size %d",
			len(raw), rowSize)
	}

	var (
		boxes   []CenterBox
		scores  []float32
		classes []int
	)

	for off := 0; off < len(raw); off += rowSize {
		row := raw[off : off+rowSize]
		conf := row[4]

		if !(conf > y.Params.BoxThreshold) {
			continue
		}

		classID := 0
		best := row[boxAttrs]

		for k := 1; k < y.Params.ObjectClassNum; k++ {
			if row[boxAttrs+k] > best {
				best = row[boxAttrs+k]
				classID = k
			}
		}

		boxes = append(boxes, CenterBox{X: row[0], Y: row[1], W: row[2], H: row[3]})
		scores = append(scores, conf)
		classes = append(classes, classID)
	}

	return boxes, scores, classes, nil
}

// DecodeFloat16 is Decode for models with half precision output
func (y *YOLOv5) DecodeFloat16(raw []uint16) ([]CenterBox, []float32, []int, error) {

	buf := y.pool.Get(len(raw))
	defer y.pool.Put(buf)

	widenFloat16(buf, raw)

	return y.Decode(buf)
}

// DetectObjects decodes the raw output and returns the objects of
// targetClass found in a frame of the given size, or every class when
// targetClass is negative.  Boxes are scaled to frame pixels and clamped to
// the frame before Non-Maximum Suppression.
func (y *YOLOv5) DetectObjects(raw []float32, frameW, frameH int,
	targetClass int) ([]DetectResult, error) {

	boxes, scores, classes, err := y.Decode(raw)

	if err != nil {
		return nil, err
	}

	return y.collect(boxes, scores, classes, frameW, frameH, targetClass), nil
}

// DetectObjectsFloat16 is DetectObjects for models with half precision output
func (y *YOLOv5) DetectObjectsFloat16(raw []uint16, frameW, frameH int,
	targetClass int) ([]DetectResult, error) {

	boxes, scores, classes, err := y.DecodeFloat16(raw)

	if err != nil {
		return nil, err
	}

	return y.collect(boxes, scores, classes, frameW, frameH, targetClass), nil
}

// Tensor is a raw model output in either single or half precision.  Exactly
// one of F32 and F16 is set
type Tensor struct {
	F32 []float32
	F16 []uint16
}

// Float16 returns true when the tensor holds half precision values
func (t Tensor) Float16() bool {
	return t.F16 != nil
}

// DetectTensor runs DetectObjects or DetectObjectsFloat16 depending on the
// precision of the model output
func (y *YOLOv5) DetectTensor(t Tensor, frameW, frameH int,
	targetClass int) ([]DetectResult, error) {

	switch {
	case t.F16 != nil && t.F32 != nil:
		return nil, fmt.Errorf("tensor holds both float32 and float16 data")
	case t.Float16():
		return y.DetectObjectsFloat16(t.F16, frameW, frameH, targetClass)
	}

	return y.DetectObjects(t.F32, frameW, frameH, targetClass)
}

// collect scales, suppresses, filters and caps the decoded boxes
func (y *YOLOv5) collect(boxes []CenterBox, scores []float32, classes []int,
	frameW, frameH int, targetClass int) []DetectResult {

	validCount := len(boxes)

	if validCount == 0 {
		return nil
	}

	sx, sy := float32(frameW), float32(frameH)

	if !y.Params.Normalized {
		sx /= float32(y.Params.InputWidth)
		sy /= float32(y.Params.InputHeight)
	}

	// left, top, width, height quads in frame pixels for nms
	filterBoxes := make([]float32, 0, validCount*4)

	for _, b := range boxes {
		c := b.Corner()
		x1 := clamp(c.X1*sx, 0, frameW)
		y1 := clamp(c.Y1*sy, 0, frameH)
		x2 := clamp(c.X2*sx, 0, frameW)
		y2 := clamp(c.Y2*sy, 0, frameH)
		filterBoxes = append(filterBoxes, x1, y1, x2-x1, y2-y1)
	}

	indexArray := make([]int, validCount)

	for i := range indexArray {
		indexArray[i] = i
	}

	// sort a copy so scores stays indexed by box
	sorted := make([]float32, validCount)
	copy(sorted, scores)
	quickSortIndiceInverse(sorted, 0, validCount-1, indexArray)

	if y.Params.AgnosticNMS {
		nms(validCount, filterBoxes, classes, indexArray, allClasses, y.Params.NMSThreshold)

	} else {
		classSet := make(map[int]bool)

		for _, id := range classes {
			classSet[id] = true
		}

		for c := range classSet {
			nms(validCount, filterBoxes, classes, indexArray, c, y.Params.NMSThreshold)
		}
	}

	group := make([]DetectResult, 0)

	for i := 0; i < validCount; i++ {
		if len(group) >= y.Params.MaxObjectNumber {
			break
		}

		n := indexArray[i]

		if n == -1 {
			continue
		}

		if targetClass >= 0 && classes[n] != targetClass {
			continue
		}

		x1 := filterBoxes[n*4+0]
		y1 := filterBoxes[n*4+1]

		group = append(group, DetectResult{
			Class: classes[n],
			Box: BoxRect{
				Left:   int(x1),
				Top:    int(y1),
				Right:  int(x1 + filterBoxes[n*4+2]),
				Bottom: int(y1 + filterBoxes[n*4+3]),
			},
			Probability: scores[n],
			ID:          y.idGen.GetNext(),
		})
	}

	return group
}
