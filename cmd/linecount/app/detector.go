package app

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/swdee/go-linecount/postprocess"
)

// detector runs a YOLOv5 ONNX model with the OpenCV dnn module
type detector struct {
	net  gocv.Net
	size image.Point
	blob gocv.Mat
}

// newDetector loads the model for an input of width x height pixels
func newDetector(model string, width, height int) (*detector, error) {

	net := gocv.ReadNet(model, "")

	if net.Empty() {
		return nil, errors.Errorf("failed to read model %s", model)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "failed to set dnn backend")
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, errors.Wrap(err, "failed to set dnn target")
	}

	return &detector{
		net:  net,
		size: image.Pt(width, height),
		blob: gocv.NewMat(),
	}, nil
}

// Close frees the network and blob
func (d *detector) Close() error {
	if err := d.blob.Close(); err != nil {
		return err
	}

	return d.net.Close()
}

// Forward resizes the BGR frame to the model input, runs inference and
// returns a copy of the first output tensor.  Half precision outputs are
// returned undecoded for the float16 path of the decoder
func (d *detector) Forward(frame gocv.Mat) (postprocess.Tensor, error) {

	d.blob.Close()
	d.blob = gocv.BlobFromImage(frame, 1.0/255.0, d.size, gocv.NewScalar(0, 0, 0, 0),
		true, false)

	d.net.SetInput(d.blob, "")

	out := d.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return postprocess.Tensor{}, errors.New("model returned no output")
	}

	if out.Type() == gocv.MatTypeCV16F {
		data, err := out.DataPtrUint16()

		if err != nil {
			return postprocess.Tensor{}, errors.Wrap(err, "failed to read float16 model output")
		}

		raw := make([]uint16, len(data))
		copy(raw, data)

		return postprocess.Tensor{F16: raw}, nil
	}

	data, err := out.DataPtrFloat32()

	if err != nil {
		return postprocess.Tensor{}, errors.Wrap(err, "failed to read model output")
	}

	raw := make([]float32, len(data))
	copy(raw, data)

	return postprocess.Tensor{F32: raw}, nil
}
