package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/detector"
	"github.com/andresmejia3/facerec/internal/types"
	"gocv.io/x/gocv"
)

// CaptureOptions configures one capture session. Capture owns Source, Detector and
// Display and closes them before returning.
type CaptureOptions struct {
	Person    string
	Dataset   *dataset.Dataset
	Source    camera.Source
	Detector  detector.Detector
	Display   camera.Display
	MaxImages int // 0 means until stopped
	Mirror    bool
	Log       io.Writer
}

// CaptureReport summarises a capture session.
type CaptureReport struct {
	Person     string
	Dir        string
	Existing   int
	Saved      int
	Frames     int
	StopReason types.StopReason
}

// Capture reads frames until stopped and saves every detected face crop as the next
// numbered image of the person.
func Capture(ctx context.Context, opts CaptureOptions) (rep CaptureReport, err error) {
	defer guard("capture", &err)
	defer release(opts.Source, opts.Detector, opts.Display)

	log := logger(opts.Log)
	rep.Person = opts.Person

	seq, err := opts.Dataset.OpenSequence(opts.Person)
	if err != nil {
		return rep, err
	}
	rep.Dir = seq.Dir()
	rep.Existing = seq.Existing()

	fmt.Fprintf(log, "📸 Capturing faces for %q into %s (%d existing). Press 'q' to stop.\n", opts.Person, rep.Dir, rep.Existing)

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if ctx.Err() != nil {
			rep.StopReason = types.StopCanceled
			break
		}
		if !opts.Source.Read(&frame) {
			fmt.Fprintf(log, "⚠️  Failed to read from camera\n")
			rep.StopReason = types.StopCameraFail
			break
		}
		rep.Frames++
		if opts.Mirror {
			if err := gocv.Flip(frame, &frame, 1); err != nil {
				fmt.Fprintf(log, "⚠️  Mirroring failed on frame %d: %v\n", rep.Frames, err)
			}
		}

		sets, derr := opts.Detector.Detect(frame)
		if derr != nil {
			fmt.Fprintf(log, "⚠️  Detection failed on frame %d: %v\n", rep.Frames, derr)
		}
		boxes := faceBoxes(sets, frame.Cols(), frame.Rows())

		// Crops are written before any overlay is drawn on the frame.
		for _, box := range boxes {
			if opts.MaxImages > 0 && rep.Saved >= opts.MaxImages {
				break
			}
			path, nerr := seq.Next()
			if nerr != nil {
				return rep, nerr
			}
			region := frame.Region(box.Rect())
			ok := !region.Empty() && gocv.IMWrite(path, region)
			region.Close()
			if !ok {
				seq.Rewind()
				fmt.Fprintf(log, "⚠️  Failed to write %s\n", path)
				continue
			}
			rep.Saved++
		}
		for _, box := range boxes {
			drawBox(&frame, box)
		}

		opts.Display.Show(frame)
		if opts.MaxImages > 0 && rep.Saved >= opts.MaxImages {
			rep.StopReason = types.StopLimit
			break
		}
		if opts.Display.StopRequested() {
			rep.StopReason = types.StopUser
			break
		}
	}

	fmt.Fprintf(log, "✅ Saved %d new images to %s\n", rep.Saved, rep.Dir)
	return rep, nil
}
