package geometry

import "image"

// labelOffset is how far above the box the overlay text baseline sits.
const labelOffset = 10

// Landmark is a single face landmark in normalized (0-1) frame coordinates.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet holds every landmark the detector returned for one face.
type LandmarkSet []Landmark

// Box is a pixel-space bounding box [XMin, YMin, XMax, YMax].
// XMax and YMax are exclusive when used as a crop region.
type Box struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// FromLandmarks derives the tight axis-aligned box around all landmarks of one face.
// Each normalized coordinate is scaled to pixels first, then min/max is taken across
// the set. The result is clamped to the frame. ok is false when there is nothing to
// crop: no landmarks, an invalid frame size, or a zero-area box after clamping.
func FromLandmarks(set LandmarkSet, width, height int) (Box, bool) {
	if len(set) == 0 || width <= 0 || height <= 0 {
		return Box{}, false
	}

	first := true
	var b Box
	for _, lm := range set {
		x := int(lm.X * float64(width))
		y := int(lm.Y * float64(height))
		if first {
			b = Box{XMin: x, YMin: y, XMax: x, YMax: y}
			first = false
			continue
		}
		b.XMin = min(b.XMin, x)
		b.YMin = min(b.YMin, y)
		b.XMax = max(b.XMax, x)
		b.YMax = max(b.YMax, y)
	}

	b = b.Clamp(width, height)
	if b.Empty() {
		return Box{}, false
	}
	return b, true
}

// Clamp restricts the box to [0,width]x[0,height].
func (b Box) Clamp(width, height int) Box {
	return Box{
		XMin: clamp(b.XMin, 0, width),
		YMin: clamp(b.YMin, 0, height),
		XMax: clamp(b.XMax, 0, width),
		YMax: clamp(b.YMax, 0, height),
	}
}

func (b Box) Width() int  { return b.XMax - b.XMin }
func (b Box) Height() int { return b.YMax - b.YMin }

// Empty reports whether the box has no pixels to crop.
func (b Box) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Rect converts the box to an image.Rectangle usable as a Mat region.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// LabelAnchor returns where overlay text for this box should start. The text sits
// just above the box unless that would leave the frame, in which case it moves
// inside the top edge.
func (b Box) LabelAnchor() image.Point {
	y := b.YMin - labelOffset
	if y < labelOffset {
		y = b.YMin + 2*labelOffset
	}
	return image.Pt(b.XMin, y)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
