package types

import (
	"fmt"

	"github.com/andresmejia3/facerec/internal/geometry"
)

// UnknownName is rendered for any face that could not be matched to a person.
const UnknownName = "Unknown"

// PredictionStatus tells apart why a face was or was not identified.
type PredictionStatus int

const (
	// Recognized means the classifier label was found in the label map.
	Recognized PredictionStatus = iota
	// UnknownLabel means the classifier returned a label the map does not know
	// (stale map, or the classifier rejected the face).
	UnknownLabel
	// Failed means inference itself returned an error.
	Failed
)

func (s PredictionStatus) String() string {
	switch s {
	case Recognized:
		return "recognized"
	case UnknownLabel:
		return "unknown_label"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Prediction is the outcome of classifying one face crop.
type Prediction struct {
	Status   PredictionStatus
	Label    int
	Name     string
	Distance float64
	Box      geometry.Box
	Err      error
}

// Text is the overlay caption: "<name> (<distance>)" or "Unknown".
// The distance is truncated, not rounded.
func (p Prediction) Text() string {
	if p.Status != Recognized {
		return UnknownName
	}
	return fmt.Sprintf("%s (%d)", p.Name, int(p.Distance))
}

// StopReason records why a frame loop ended.
type StopReason string

const (
	StopUser       StopReason = "user"
	StopCanceled   StopReason = "canceled"
	StopCameraFail StopReason = "camera"
	StopLimit      StopReason = "limit"
)
