// Package pipeline runs the capture, training, recognition and evaluation stages on
// top of the camera, detector, classifier and dataset packages.
package pipeline

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/geometry"
	"gocv.io/x/gocv"
)

var (
	// ErrDatasetMissing is returned when the dataset root does not exist.
	ErrDatasetMissing = dataset.ErrMissing
	// ErrNoImages is returned when training found no readable image.
	ErrNoImages = errors.New("no valid training images found")
	// ErrModelMissing is returned when the trained model file does not exist.
	ErrModelMissing = errors.New("model file not found, train the model first")
	// ErrLabelMapMissing is returned when the label map file does not exist.
	ErrLabelMapMissing = errors.New("label map not found, train the model first")
)

var overlayColor = color.RGBA{G: 255}

// guard turns a panic escaping an operation into its returned error. It must be the
// first deferred call so releases deferred after it have already run.
func guard(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: unexpected failure: %v", op, r)
	}
}

// faceBoxes converts landmark sets to pixel boxes, dropping degenerate ones.
func faceBoxes(sets []geometry.LandmarkSet, width, height int) []geometry.Box {
	boxes := make([]geometry.Box, 0, len(sets))
	for _, set := range sets {
		if box, ok := geometry.FromLandmarks(set, width, height); ok {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

func drawBox(frame *gocv.Mat, box geometry.Box) {
	gocv.Rectangle(frame, box.Rect(), overlayColor, 2)
}

func drawLabel(frame *gocv.Mat, box geometry.Box, text string) {
	gocv.PutText(frame, text, box.LabelAnchor(), gocv.FontHersheySimplex, 0.8, overlayColor, 2)
}

func logger(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

type closer interface {
	Close() error
}

// release closes every non-nil resource, ignoring errors.
func release(cs ...closer) {
	for _, c := range cs {
		if c != nil {
			c.Close()
		}
	}
}
