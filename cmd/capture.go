package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/detector"
	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/andresmejia3/facerec/internal/utils"
	"github.com/spf13/cobra"
)

var captureMax int

var captureCmd = &cobra.Command{
	Use:   "capture [name]",
	Short: "Capture face images from the webcam into the dataset",
	Long:  "Saves every detected face as the next numbered image in <dataset>/<name>/. Press 'q' in the preview window to stop.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runCapture(cmd.Context(), name, bufio.NewReader(os.Stdin))
	},
}

func init() {
	captureCmd.Flags().IntVarP(&captureMax, "max", "m", 0, "Stop after saving this many images (0 = until stopped)")
	rootCmd.AddCommand(captureCmd)
}

// runCapture asks for the person name when none is given, then runs one capture
// session.
func runCapture(ctx context.Context, name string, in *bufio.Reader) error {
	if name == "" {
		var err error
		name, err = utils.Prompt(in, os.Stdout, "Enter your name: ")
		if err != nil {
			return fail("No name given", err)
		}
	}
	if err := dataset.ValidateName(name); err != nil {
		return fail("Invalid name", err)
	}
	if captureMax < 0 {
		return fail("Invalid --max", fmt.Errorf("must be >= 0, got %d", captureMax))
	}

	det, err := detector.NewPigo(Cfg.Detector)
	if err != nil {
		return fail("Failed to load face detector", err)
	}
	cam, err := camera.OpenWebcam(Cfg.Camera.Device)
	if err != nil {
		det.Close()
		return fail("Could not access camera", err)
	}

	rep, err := pipeline.Capture(ctx, pipeline.CaptureOptions{
		Person:    name,
		Dataset:   currentDataset(),
		Source:    cam,
		Detector:  det,
		Display:   openDisplay("Capturing Faces"),
		MaxImages: captureMax,
		Mirror:    Cfg.Camera.Mirror,
		Log:       os.Stderr,
	})
	if err != nil {
		return fail("Capture failed", err)
	}

	fmt.Printf("Saved %d new images to %s (%d frames, stopped: %s)\n", rep.Saved, rep.Dir, rep.Frames, rep.StopReason)
	return nil
}
