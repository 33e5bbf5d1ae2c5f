package camera

import "gocv.io/x/gocv"

// Key codes that stop a frame loop.
const (
	keyQ     = 'q'
	keyUpper = 'Q'
	keyEsc   = 27
)

// Display shows processed frames and reports whether the user asked to stop.
type Display interface {
	Show(frame gocv.Mat)
	// StopRequested polls the keyboard once; it must be called once per frame.
	StopRequested() bool
	Close() error
}

// Window is a Display backed by an OpenCV highgui window.
type Window struct {
	w *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

func (w *Window) Show(frame gocv.Mat) {
	w.w.IMShow(frame)
}

func (w *Window) StopRequested() bool {
	return isStopKey(w.w.WaitKey(1))
}

func (w *Window) Close() error {
	return w.w.Close()
}

// Headless is a Display for machines without a screen. Frames are dropped and the
// loop is stopped through context cancellation only.
type Headless struct{}

func (Headless) Show(gocv.Mat)       {}
func (Headless) StopRequested() bool { return false }
func (Headless) Close() error        { return nil }

func isStopKey(key int) bool {
	k := key & 0xFF
	return key >= 0 && (k == keyQ || k == keyUpper || k == keyEsc)
}
