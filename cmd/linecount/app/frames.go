package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

// framesOptions are the flags of the frames subcommand
type framesOptions struct {
	video   string
	saveDir string
	limit   int
}

// newFramesCommand returns the command that extracts the leading frames of
// a video as numbered JPEG images, used to pick border coordinates
func newFramesCommand() *cobra.Command {
	o := &framesOptions{limit: 100}

	cmd := &cobra.Command{
		Use:          "frames",
		Short:        "Save the first frames of a video as JPEG images",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := extractFrames(o)

			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d frames to %s\n", n, o.saveDir)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.video, "video", o.video, "Path to video file.")
	fs.StringVar(&o.saveDir, "save-dir", "./frames/", "Directory to save images.")
	fs.IntVar(&o.limit, "limit", o.limit, "Maximum number of frames to save.")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

func extractFrames(o *framesOptions) (int, error) {

	if _, err := os.Stat(o.video); err != nil {
		return 0, errors.Wrap(err, "video file not found")
	}

	if err := os.MkdirAll(o.saveDir, 0o755); err != nil {
		return 0, errors.Wrap(err, "failed to create save directory")
	}

	capture, err := gocv.VideoCaptureFile(o.video)

	if err != nil {
		return 0, errors.Wrapf(err, "failed to open video %s", o.video)
	}

	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()

	count := 0

	for count < o.limit && capture.Read(&img) && !img.Empty() {
		path := filepath.Join(o.saveDir, fmt.Sprintf("frame%05d.jpg", count))

		if ok := gocv.IMWrite(path, img); !ok {
			return count, errors.Errorf("failed to write %s", path)
		}

		count++
	}

	return count, nil
}
