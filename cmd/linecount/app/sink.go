package app

import (
	"image/draw"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/swdee/go-linecount/cmd/linecount/app/options"
	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/geometry"
	"github.com/swdee/go-linecount/render"
	"github.com/swdee/go-linecount/render/canvas"
	"github.com/swdee/go-linecount/tracker"
)

// frameSink counts the objects of a frame and annotates the frame in place
type frameSink interface {
	Update(frame *gocv.Mat, objects []tracker.Object) error
	Border() geometry.Segment
	Frames() uint64
	Counts() counter.Snapshot
}

// newFrameSink returns the counting engine drawing with the named renderer
func newFrameSink(renderer string, cfg counter.Config, trk counter.Tracker,
	labels []string) (frameSink, error) {

	switch renderer {
	case options.RendererCanvas:
		e, err := counter.New[draw.Image](cfg, trk, canvas.New(labels))

		if err != nil {
			return nil, err
		}

		return canvasSink{e}, nil

	case options.RendererGoCV, "":
		e, err := counter.New[*gocv.Mat](cfg, trk, render.NewAnnotator(labels))

		if err != nil {
			return nil, err
		}

		return matSink{e}, nil
	}

	return nil, errors.Errorf("unknown renderer %q", renderer)
}

// matSink draws on the frame with OpenCV
type matSink struct {
	*counter.Engine[*gocv.Mat]
}

func (s matSink) Update(frame *gocv.Mat, objects []tracker.Object) error {
	_, err := s.Engine.Update(frame, objects)
	return err
}

// canvasSink draws on an RGBA copy of the frame which is then copied back
type canvasSink struct {
	*counter.Engine[draw.Image]
}

func (s canvasSink) Update(frame *gocv.Mat, objects []tracker.Object) error {

	img, err := frame.ToImage()

	if err != nil {
		return errors.Wrap(err, "failed to convert frame to image")
	}

	dst, ok := img.(draw.Image)

	if !ok {
		return errors.Errorf("frame image %T is not drawable", img)
	}

	if _, err := s.Engine.Update(dst, objects); err != nil {
		return err
	}

	mat, err := gocv.ImageToMatRGB(dst)

	if err != nil {
		return errors.Wrap(err, "failed to convert image to frame")
	}

	defer mat.Close()

	mat.CopyTo(frame)

	return nil
}
