package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLandmarks(t *testing.T) {
	tests := []struct {
		name   string
		set    LandmarkSet
		width  int
		height int
		want   Box
		wantOK bool
	}{
		{
			name:   "tight bound of all points",
			set:    LandmarkSet{{0.25, 0.5}, {0.5, 0.25}, {0.75, 0.75}},
			width:  100,
			height: 200,
			want:   Box{XMin: 25, YMin: 50, XMax: 75, YMax: 150},
			wantOK: true,
		},
		{
			name:   "coordinates truncate toward zero",
			set:    LandmarkSet{{0.111, 0.119}, {0.559, 0.551}},
			width:  100,
			height: 100,
			want:   Box{XMin: 11, YMin: 11, XMax: 55, YMax: 55},
			wantOK: true,
		},
		{
			name:   "points outside the frame are clamped",
			set:    LandmarkSet{{-0.2, -0.1}, {1.3, 0.5}},
			width:  640,
			height: 480,
			want:   Box{XMin: 0, YMin: 0, XMax: 640, YMax: 240},
			wantOK: true,
		},
		{
			name:   "single point is degenerate",
			set:    LandmarkSet{{0.5, 0.5}},
			width:  640,
			height: 480,
			wantOK: false,
		},
		{
			name:   "collinear points have zero height",
			set:    LandmarkSet{{0.1, 0.5}, {0.9, 0.5}},
			width:  640,
			height: 480,
			wantOK: false,
		},
		{
			name:   "box entirely left of frame collapses after clamping",
			set:    LandmarkSet{{-0.5, 0.1}, {-0.1, 0.9}},
			width:  640,
			height: 480,
			wantOK: false,
		},
		{
			name:   "empty set",
			set:    nil,
			width:  640,
			height: 480,
			wantOK: false,
		},
		{
			name:   "invalid frame size",
			set:    LandmarkSet{{0.1, 0.1}, {0.9, 0.9}},
			width:  0,
			height: 480,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromLandmarks(tt.set, tt.width, tt.height)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, Box{}, got)
			}
		})
	}
}

// inside reports whether the pixel (x, y) lies in the closed box.
func inside(b Box, x, y int) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

func TestFromLandmarksContainsEveryPointAndIsMinimal(t *testing.T) {
	sets := []LandmarkSet{
		{{0.31, 0.22}, {0.64, 0.18}, {0.48, 0.77}, {0.35, 0.61}},
		{{0.01, 0.99}, {0.99, 0.01}},
		{{0.5, 0.4}, {0.52, 0.41}, {0.55, 0.47}, {0.49, 0.43}, {0.6, 0.45}},
	}
	const w, h = 1280, 720

	for i, set := range sets {
		box, ok := FromLandmarks(set, w, h)
		require.True(t, ok, "set %d", i)

		touches := map[string]bool{}
		for _, lm := range set {
			x, y := int(lm.X*w), int(lm.Y*h)
			assert.True(t, inside(box, x, y), "set %d: point (%d,%d) outside %+v", i, x, y, box)
			touches["xmin"] = touches["xmin"] || x == box.XMin
			touches["xmax"] = touches["xmax"] || x == box.XMax
			touches["ymin"] = touches["ymin"] || y == box.YMin
			touches["ymax"] = touches["ymax"] || y == box.YMax
		}
		// Minimal: every edge is touched by at least one landmark.
		for _, edge := range []string{"xmin", "xmax", "ymin", "ymax"} {
			assert.True(t, touches[edge], "set %d: edge %s not touched", i, edge)
		}
	}
}

func TestFromLandmarksDeterministic(t *testing.T) {
	set := LandmarkSet{{0.3, 0.3}, {0.7, 0.8}}
	a, okA := FromLandmarks(set, 640, 480)
	b, okB := FromLandmarks(set, 640, 480)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestBoxHelpers(t *testing.T) {
	b := Box{XMin: 10, YMin: 20, XMax: 110, YMax: 70}
	assert.Equal(t, 100, b.Width())
	assert.Equal(t, 50, b.Height())
	assert.False(t, b.Empty())
	assert.Equal(t, image.Rect(10, 20, 110, 70), b.Rect())

	inverted := Box{XMin: 10, YMin: 10, XMax: 5, YMax: 20}
	assert.True(t, inverted.Empty())
}

func TestLabelAnchor(t *testing.T) {
	assert.Equal(t, image.Pt(40, 90), Box{XMin: 40, YMin: 100, XMax: 80, YMax: 150}.LabelAnchor())
	// Near the top edge the label moves inside the box.
	assert.Equal(t, image.Pt(40, 25), Box{XMin: 40, YMin: 5, XMax: 80, YMax: 150}.LabelAnchor())
}
