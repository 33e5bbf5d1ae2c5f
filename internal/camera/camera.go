// Package camera holds the frame source, on-screen display and video recorder used
// by the frame loops.
package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the capture device cannot be opened.
var ErrUnavailable = errors.New("could not access the camera")

// Source delivers frames. Read returns false when no frame could be read.
type Source interface {
	Read(dst *gocv.Mat) bool
	Size() (width, height int)
	Close() error
}

// Webcam is a Source backed by a local capture device.
type Webcam struct {
	device int
	vc     *gocv.VideoCapture
}

// OpenWebcam opens the capture device with the given index.
func OpenWebcam(device int) (*Webcam, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w (device %d): %v", ErrUnavailable, device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w (device %d)", ErrUnavailable, device)
	}
	return &Webcam{device: device, vc: vc}, nil
}

func (w *Webcam) Read(dst *gocv.Mat) bool {
	return w.vc.Read(dst) && !dst.Empty()
}

// Size is the frame size the device reports.
func (w *Webcam) Size() (int, int) {
	return int(w.vc.Get(gocv.VideoCaptureFrameWidth)), int(w.vc.Get(gocv.VideoCaptureFrameHeight))
}

func (w *Webcam) Close() error {
	return w.vc.Close()
}
