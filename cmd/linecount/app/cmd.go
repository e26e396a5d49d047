package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swdee/go-linecount/cmd/linecount/app/options"
)

// NewCommand creates the linecount *cobra.Command with default parameters
func NewCommand() *cobra.Command {
	s := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "linecount",
		Short: "Count objects crossing a line in a video",
		Long: `Detect objects in every frame of a video with a YOLOv5 ONNX model, track
them and count the tracks crossing a border line, writing an annotated video
and a snapshot of the latest frame to the output directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Validate(); err != nil {
				return err
			}

			cfg, err := s.Config(cmd.Flags())

			if err != nil {
				return err
			}

			if s.PrintConfig {
				out, err := cfg.Marshal()

				if err != nil {
					return err
				}

				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}

			log, err := s.Logger()

			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Run(ctx, s, cfg, log)
		},
	}

	cmd.Flags().AddFlagSet(s.Flags())
	cmd.AddCommand(newFramesCommand())

	return cmd
}
