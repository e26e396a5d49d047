package postprocess

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// row builds one output row for a 3 class model
func row(cx, cy, w, h, conf float32, classScores ...float32) []float32 {
	return append([]float32{cx, cy, w, h, conf}, classScores...)
}

func testParams() YOLOv5Params {
	p := YOLOv5DefaultParams()
	p.ObjectClassNum = 3
	p.Normalized = true
	return p
}

func TestToCornerForm(t *testing.T) {
	got := ToCornerForm([]CenterBox{{X: 100, Y: 100, W: 200, H: 200}})
	want := []CornerBox{{X1: 0, Y1: 0, X2: 200, Y2: 200}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToCornerForm mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode(t *testing.T) {
	y := NewYOLOv5(testParams())

	var raw []float32
	raw = append(raw, row(0.5, 0.5, 0.1, 0.2, 0.9, 0.1, 0.7, 0.2)...)
	// at the threshold is not kept
	raw = append(raw, row(0.2, 0.2, 0.1, 0.1, 0.2, 0.9, 0.0, 0.0)...)
	raw = append(raw, row(0.8, 0.1, 0.1, 0.1, 0.3, 0.0, 0.1, 0.8)...)

	boxes, scores, classes, err := y.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, []CenterBox{{0.5, 0.5, 0.1, 0.2}, {0.8, 0.1, 0.1, 0.1}}, boxes)
	assert.Equal(t, []float32{0.9, 0.3}, scores)
	assert.Equal(t, []int{1, 2}, classes)
}

func TestDecodeLengthMismatch(t *testing.T) {
	y := NewYOLOv5(testParams())

	_, _, _, err := y.Decode(make([]float32, 9))
	assert.Error(t, err)
}

func TestDecodeFloat16(t *testing.T) {
	y := NewYOLOv5(testParams())

	src := row(0.5, 0.25, 0.125, 0.25, 0.75, 0, 0, 1)
	raw := make([]uint16, len(src))

	for i, v := range src {
		raw[i] = float16.Fromfloat32(v).Bits()
	}

	// run twice so the pooled buffer is reused
	for i := 0; i < 2; i++ {
		boxes, scores, classes, err := y.DecodeFloat16(raw)
		require.NoError(t, err)

		assert.Equal(t, []CenterBox{{0.5, 0.25, 0.125, 0.25}}, boxes)
		assert.Equal(t, []float32{0.75}, scores)
		assert.Equal(t, []int{2}, classes)
	}
}

func TestDetectObjects(t *testing.T) {
	p := testParams()
	p.Normalized = false
	p.InputWidth = 100
	p.InputHeight = 100
	y := NewYOLOv5(p)

	var raw []float32
	// two overlapping people, the weaker one is suppressed
	raw = append(raw, row(50, 50, 10, 40, 0.9, 0.9, 0.1, 0)...)
	raw = append(raw, row(51, 50, 10, 40, 0.8, 0.9, 0.1, 0)...)
	// a separate person
	raw = append(raw, row(20, 50, 10, 40, 0.6, 0.9, 0.1, 0)...)
	// another class filtered out
	raw = append(raw, row(80, 80, 10, 10, 0.7, 0, 0.9, 0)...)

	// frame is scaled 10x horizontally and 5x vertically from the input
	dets, err := y.DetectObjects(raw, 1000, 500, 0)
	require.NoError(t, err)
	require.Len(t, dets, 2)

	assert.Equal(t, BoxRect{Left: 450, Top: 150, Right: 550, Bottom: 350}, dets[0].Box)
	assert.Equal(t, float32(0.9), dets[0].Probability)
	assert.Equal(t, 0, dets[0].Class)

	assert.Equal(t, BoxRect{Left: 150, Top: 150, Right: 250, Bottom: 350}, dets[1].Box)
	assert.NotEqual(t, dets[0].ID, dets[1].ID)
	assert.Equal(t, y.idGen.Last(), dets[1].ID)

	// all classes
	dets, err = y.DetectObjects(raw, 1000, 500, -1)
	require.NoError(t, err)
	assert.Len(t, dets, 3)
}

func TestDetectTensor(t *testing.T) {
	p := testParams()
	p.Normalized = false
	p.InputWidth = 100
	p.InputHeight = 100

	var src []float32
	src = append(src, row(50, 50, 10, 40, 0.75, 1, 0, 0)...)
	src = append(src, row(20, 50, 10, 40, 0.5, 1, 0, 0)...)

	half := make([]uint16, len(src))

	for i, v := range src {
		half[i] = float16.Fromfloat32(v).Bits()
	}

	assert.False(t, Tensor{F32: src}.Float16())
	assert.True(t, Tensor{F16: half}.Float16())

	want, err := NewYOLOv5(p).DetectObjects(src, 1000, 500, 0)
	require.NoError(t, err)
	require.Len(t, want, 2)

	for _, tensor := range []Tensor{{F32: src}, {F16: half}} {
		got, err := NewYOLOv5(p).DetectTensor(tensor, 1000, 500, 0)
		require.NoError(t, err)

		// values are exact in half precision so both paths agree
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("float16=%v mismatch (-want +got):\n%s", tensor.Float16(), diff)
		}
	}

	_, err = NewYOLOv5(p).DetectTensor(Tensor{F32: src, F16: half}, 1000, 500, 0)
	assert.Error(t, err)

	// a half precision tensor of the wrong length is rejected like float32
	_, err = NewYOLOv5(p).DetectTensor(Tensor{F16: half[:7]}, 1000, 500, 0)
	assert.Error(t, err)
}

func TestDetectObjectsPixelInputAndClamp(t *testing.T) {
	p := YOLOv5DefaultParams()
	p.ObjectClassNum = 1
	p.InputWidth = 320
	p.InputHeight = 320
	y := NewYOLOv5(p)

	// box hanging off the left edge of the input
	raw := row(10, 160, 40, 40, 0.9, 1)

	dets, err := y.DetectObjects(raw, 640, 640, 0)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.Equal(t, image.Rect(0, 280, 60, 360), dets[0].Box.Rectangle())
}

func TestDetectObjectsMaxObjects(t *testing.T) {
	p := testParams()
	p.MaxObjectNumber = 2
	y := NewYOLOv5(p)

	var raw []float32

	for i := 0; i < 5; i++ {
		raw = append(raw, row(0.1+0.2*float32(i), 0.5, 0.05, 0.05, 0.5+0.1*float32(i), 1, 0, 0)...)
	}

	dets, err := y.DetectObjects(raw, 100, 100, -1)
	require.NoError(t, err)
	require.Len(t, dets, 2)

	// highest scores first
	assert.InDelta(t, 0.9, dets[0].Probability, 1e-6)
	assert.InDelta(t, 0.8, dets[1].Probability, 1e-6)
}

func TestDetectObjectsClassAwareNMS(t *testing.T) {
	p := testParams()
	p.AgnosticNMS = false
	y := NewYOLOv5(p)

	var raw []float32
	raw = append(raw, row(0.5, 0.5, 0.2, 0.2, 0.9, 1, 0, 0)...)
	raw = append(raw, row(0.5, 0.5, 0.2, 0.2, 0.8, 0, 1, 0)...)

	dets, err := y.DetectObjects(raw, 100, 100, -1)
	require.NoError(t, err)
	assert.Len(t, dets, 2)

	p.AgnosticNMS = true
	y = NewYOLOv5(p)

	dets, err = y.DetectObjects(raw, 100, 100, -1)
	require.NoError(t, err)
	assert.Len(t, dets, 1)
}

func TestDetectionsToObjects(t *testing.T) {
	dets := []DetectResult{
		{Class: 0, Box: BoxRect{Left: 10, Top: 20, Right: 50, Bottom: 100}, Probability: 0.8, ID: 7},
	}

	objs := DetectionsToObjects(dets)
	require.Len(t, objs, 1)

	assert.Equal(t, image.Rect(10, 20, 50, 100), objs[0].Rect.Box())
	assert.Equal(t, int64(7), objs[0].ID)
	assert.Equal(t, float32(0.8), objs[0].Prob)
	assert.Equal(t, 0, objs[0].Label)
}

func TestCalculateOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, calculateOverlap(0, 0, 9, 9, 0, 0, 9, 9), 1e-6)
	assert.Equal(t, float32(0), calculateOverlap(0, 0, 9, 9, 20, 20, 29, 29))
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, YOLOv5DefaultParams().Validate())

	p := YOLOv5DefaultParams()
	p.ObjectClassNum = 0
	assert.Error(t, p.Validate())

	p = YOLOv5DefaultParams()
	p.InputWidth = 0
	assert.Error(t, p.Validate())

	p.Normalized = true
	assert.NoError(t, p.Validate())
}
