package app

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	linecount "github.com/swdee/go-linecount"
	"github.com/swdee/go-linecount/cmd/linecount/app/options"
	"github.com/swdee/go-linecount/config"
	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/postprocess"
)

// Run counts line crossings in the source video until it ends, MaxFrames is
// reached or ctx is cancelled
func Run(ctx context.Context, o *options.Options, cfg *config.File,
	log *logrus.Entry) error {

	labels := linecount.COCOLabels()

	if o.Labels != "" {
		var err error
		labels, err = linecount.LoadLabels(o.Labels)

		if err != nil {
			return errors.Wrap(err, "failed to load labels")
		}
	}

	class, err := cfg.ClassIndex(labels)

	if err != nil {
		return err
	}

	params := cfg.DetectorParams()

	if err := params.Validate(); err != nil {
		return errors.Wrap(err, "invalid detector parameters")
	}

	decoder := postprocess.NewYOLOv5(params)

	trk, err := cfg.NewTracker()

	if err != nil {
		return err
	}

	notifier := counter.NotifierFunc(func(s counter.Snapshot) {
		log.WithFields(logrus.Fields{
			"frame":  s.Frame,
			"counts": s.String(),
		}).Info("count changed")
	})

	engCfg, err := cfg.EngineConfig(notifier, log)

	if err != nil {
		return err
	}

	engine, err := newFrameSink(o.Renderer, engCfg, trk, labels)

	if err != nil {
		return errors.Wrap(err, "failed to create counting engine")
	}

	if err := os.MkdirAll(o.Dest, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	capture, err := gocv.VideoCaptureFile(o.Src)

	if err != nil {
		return errors.Wrapf(err, "failed to open video %s", o.Src)
	}

	defer capture.Close()

	totalFrames := int(capture.Get(gocv.VideoCaptureFrameCount))

	log.WithFields(logrus.Fields{
		"src":      o.Src,
		"model":    o.Model,
		"frames":   totalFrames,
		"tracker":  cfg.GetTracker().GetKind(),
		"renderer": o.Renderer,
		"border":   engine.Border(),
	}).Info("starting")

	det, err := newDetector(o.Model, params.InputWidth, params.InputHeight)

	if err != nil {
		return err
	}

	defer det.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	videoPath, snapshotPath := o.OutputPaths()

	var writer *gocv.VideoWriter

	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	for n := 0; o.MaxFrames == 0 || n < o.MaxFrames; n++ {

		if err := ctx.Err(); err != nil {
			log.WithField("frame", n).Warn("interrupted")
			break
		}

		if ok := capture.Read(&frame); !ok || frame.Empty() {
			break
		}

		start := time.Now()

		out, err := det.Forward(frame)

		if err != nil {
			return errors.Wrapf(err, "inference failed on frame %d", n)
		}

		dets, err := decoder.DetectTensor(out, frame.Cols(), frame.Rows(), class)

		if err != nil {
			return errors.Wrapf(err, "decoding failed on frame %d", n)
		}

		elapsed := time.Since(start)

		if err := engine.Update(&frame, postprocess.DetectionsToObjects(dets)); err != nil {
			return errors.Wrapf(err, "counting failed on frame %d", n)
		}

		if writer == nil {
			writer, err = gocv.VideoWriterFile(videoPath, o.Codec(), o.FPS,
				frame.Cols(), frame.Rows(), true)

			if err != nil {
				return errors.Wrapf(err, "failed to open video writer %s", videoPath)
			}

			log.WithFields(logrus.Fields{
				"per_frame": elapsed.String(),
				"float16":   out.Float16(),
				"estimated": (elapsed * time.Duration(totalFrames)).String(),
			}).Info("computation time")
		}

		if ok := gocv.IMWrite(snapshotPath, frame); !ok {
			return errors.Errorf("failed to write snapshot %s", snapshotPath)
		}

		if err := writer.Write(frame); err != nil {
			return errors.Wrapf(err, "failed to write frame %d", n)
		}

		log.WithFields(logrus.Fields{
			"frame":      n,
			"detections": len(dets),
			"elapsed":    elapsed.String(),
		}).Trace("frame processed")
	}

	log.WithFields(logrus.Fields{
		"frames": engine.Frames(),
		"counts": engine.Counts().String(),
		"video":  videoPath,
	}).Info("done")

	return nil
}
