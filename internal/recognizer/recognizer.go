// Package recognizer wraps the trainable face classifier.
package recognizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facerec/internal/config"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

var (
	// ErrNotTrained is returned by Predict and Save before Train or Load succeeded.
	ErrNotTrained = errors.New("model is not trained")
	// ErrEmptyImage is returned for empty Mats.
	ErrEmptyImage = errors.New("empty image")
	// ErrClosed is returned by Train and Load after Close.
	ErrClosed = errors.New("recognizer is closed")
)

// Classifier is a trainable single-image face classifier.
type Classifier interface {
	// Train fits the model on grayscale images; labels[i] belongs to images[i].
	Train(images []gocv.Mat, labels []int) error
	// Predict returns the closest label and its distance (lower is closer).
	Predict(img gocv.Mat) (label int, distance float64, err error)
	Save(path string) error
	Load(path string) error
	Close() error
}

// Factory creates an untrained classifier.
type Factory func() Classifier

// LBPH is a local binary pattern histogram classifier backed by OpenCV contrib.
type LBPH struct {
	fr        *contrib.LBPHFaceRecognizer
	threshold float64
	ready     bool
	closed    bool
}

// NewLBPH creates an untrained LBPH classifier.
func NewLBPH(cfg config.ModelConfig) *LBPH {
	fr := contrib.NewLBPHFaceRecognizer()
	fr.SetRadius(cfg.Radius)
	fr.SetNeighbors(cfg.Neighbors)
	l := &LBPH{fr: fr, threshold: cfg.Threshold}
	l.applyThreshold()
	return l
}

// LBPHFactory returns a Factory producing classifiers configured by cfg.
func LBPHFactory(cfg config.ModelConfig) Factory {
	return func() Classifier { return NewLBPH(cfg) }
}

// applyThreshold makes the model answer -1 for faces farther than the threshold.
// Zero keeps OpenCV's default, which never rejects.
func (l *LBPH) applyThreshold() {
	if l.threshold > 0 {
		l.fr.SetThreshold(float32(l.threshold))
	}
}

func (l *LBPH) Train(images []gocv.Mat, labels []int) error {
	if l.closed {
		return ErrClosed
	}
	if err := validateTrainingSet(images, labels); err != nil {
		return err
	}
	l.ready = false
	if err := l.fr.Train(images, labels); err != nil {
		return fmt.Errorf("lbph train: %w", err)
	}
	if l.fr.Empty() {
		return errors.New("lbph train: model is empty after training")
	}
	l.ready = true
	return nil
}

func (l *LBPH) Predict(img gocv.Mat) (int, float64, error) {
	if !l.ready {
		return 0, 0, ErrNotTrained
	}
	if img.Empty() {
		return 0, 0, ErrEmptyImage
	}
	resp := l.fr.PredictExtendedResponse(img)
	return int(resp.Label), float64(resp.Confidence), nil
}

// Save serializes the model in OpenCV's XML format. The model is written next to
// path first and moved into place, so an existing model survives a failed save.
func (l *LBPH) Save(path string) error {
	if !l.ready {
		return ErrNotTrained
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// OpenCV picks the storage format from the extension, so keep it.
	tmp, err := os.CreateTemp(dir, ".model-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if err := l.fr.SaveFile(tmpName); err != nil {
		return fmt.Errorf("failed to write model to %s: %w", path, err)
	}
	info, err := os.Stat(tmpName)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("failed to write model to %s", path)
	}
	return os.Rename(tmpName, path)
}

func (l *LBPH) Load(path string) error {
	if l.closed {
		return ErrClosed
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	l.ready = false
	if err := l.fr.LoadFile(path); err != nil {
		return fmt.Errorf("failed to load model %s: %w", path, err)
	}
	if l.fr.Empty() {
		return fmt.Errorf("failed to load model %s: %w", path, ErrNotTrained)
	}
	// The file carries its own threshold; a configured one takes precedence.
	l.applyThreshold()
	l.ready = true
	return nil
}

// Close releases the native recognizer. Later calls to Predict or Save return
// ErrNotTrained.
func (l *LBPH) Close() error {
	l.ready = false
	if l.closed {
		return nil
	}
	l.closed = true
	return l.fr.Close()
}

func validateTrainingSet(images []gocv.Mat, labels []int) error {
	if len(images) == 0 {
		return errors.New("no training images")
	}
	if len(images) != len(labels) {
		return fmt.Errorf("got %d images but %d labels", len(images), len(labels))
	}
	for i, img := range images {
		if img.Empty() {
			return fmt.Errorf("training image %d: %w", i, ErrEmptyImage)
		}
		if img.Channels() != 1 {
			return fmt.Errorf("training image %d has %d channels, want grayscale", i, img.Channels())
		}
	}
	return nil
}
