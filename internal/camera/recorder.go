package camera

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

// Sink receives every processed frame of a recording session.
type Sink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// Recorder muxes frames into a video file. Close is safe to call more than once;
// only the first call flushes the file.
type Recorder struct {
	Path   string
	vw     *gocv.VideoWriter
	once   sync.Once
	err    error
	frames int
}

// NewRecorder creates the output directory and opens a writer for frames of the
// given size.
func NewRecorder(path, codec string, fps float64, width, height int) (*Recorder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid recording size %dx%d", width, height)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	vw, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open video writer %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("failed to open video writer %s", path)
	}
	return &Recorder{Path: path, vw: vw}, nil
}

func (r *Recorder) Write(frame gocv.Mat) error {
	if err := r.vw.Write(frame); err != nil {
		return err
	}
	r.frames++
	return nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.err = r.vw.Close()
	})
	return r.err
}
