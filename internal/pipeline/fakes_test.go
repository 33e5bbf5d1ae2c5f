package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/andresmejia3/facerec/internal/geometry"
	"gocv.io/x/gocv"
)

// fakeSource serves copies of one frame a fixed number of times.
type fakeSource struct {
	frame  gocv.Mat
	left   int
	closed int
}

func newFakeSource(frame gocv.Mat, frames int) *fakeSource {
	return &fakeSource{frame: frame, left: frames}
}

func (s *fakeSource) Read(dst *gocv.Mat) bool {
	if s.left <= 0 {
		return false
	}
	s.left--
	s.frame.CopyTo(dst)
	return true
}

func (s *fakeSource) Size() (int, int) { return s.frame.Cols(), s.frame.Rows() }

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

// fakeDetector returns the same landmark sets for every frame.
type fakeDetector struct {
	sets   []geometry.LandmarkSet
	calls  int
	closed int
}

func (d *fakeDetector) Detect(gocv.Mat) ([]geometry.LandmarkSet, error) {
	d.calls++
	return d.sets, nil
}

func (d *fakeDetector) Close() error {
	d.closed++
	return nil
}

// fakeDisplay asks to stop after stopAfter frames; zero never stops.
type fakeDisplay struct {
	stopAfter int
	shown     int
	closed    int
}

func (d *fakeDisplay) Show(gocv.Mat) { d.shown++ }

func (d *fakeDisplay) StopRequested() bool {
	return d.stopAfter > 0 && d.shown >= d.stopAfter
}

func (d *fakeDisplay) Close() error {
	d.closed++
	return nil
}

// fakeClassifier answers every prediction with a fixed label, error or panic.
type fakeClassifier struct {
	label    int
	distance float64
	err      error
	panicMsg string
	saveErr  error
	loadErr  error
	loaded   string
	closed   int
}

func (c *fakeClassifier) Train([]gocv.Mat, []int) error { return nil }

func (c *fakeClassifier) Predict(img gocv.Mat) (int, float64, error) {
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	if img.Empty() {
		return 0, 0, errors.New("empty crop")
	}
	return c.label, c.distance, c.err
}

// Save writes a placeholder model file unless saveErr is set.
func (c *fakeClassifier) Save(path string) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("<opencv_storage/>"), 0644)
}

func (c *fakeClassifier) Load(path string) error {
	if c.loadErr != nil {
		return c.loadErr
	}
	c.loaded = path
	return nil
}

func (c *fakeClassifier) Close() error {
	c.closed++
	return nil
}

// fakeSink counts written frames and close calls.
type fakeSink struct {
	frames int
	closed int
}

func (s *fakeSink) Write(gocv.Mat) error {
	s.frames++
	return nil
}

func (s *fakeSink) Close() error {
	s.closed++
	return nil
}

// solidFrame is a BGR frame filled with one color.
func solidFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 150, 0), height, width, gocv.MatTypeCV8UC3)
}

// patternMat builds a 64x64 grayscale image whose pixel values come from fn.
func patternMat(fn func(x, y int) uint8) gocv.Mat {
	m := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8U)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			m.SetUCharAt(y, x, fn(x, y))
		}
	}
	return m
}

func stripes(x, _ int) uint8 {
	if (x/4)%2 == 0 {
		return 230
	}
	return 20
}

func checker(x, y int) uint8 {
	if ((x/8)+(y/8))%2 == 0 {
		return 200
	}
	return 40
}

// writePattern saves n copies of a pattern as numbered PNGs of one person.
func writePattern(t *testing.T, root, person string, n int, fn func(x, y int) uint8) {
	t.Helper()
	dir := filepath.Join(root, person)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	img := patternMat(fn)
	defer img.Close()
	for i := 0; i < n; i++ {
		if !gocv.IMWrite(filepath.Join(dir, strconv.Itoa(i)+".png"), img) {
			t.Fatalf("failed to write %s/%d.png", dir, i)
		}
	}
}

// touch creates an empty file.
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

// wholeFrame is a landmark set spanning the full frame.
var wholeFrame = geometry.LandmarkSet{{X: 0, Y: 0}, {X: 1, Y: 1}}
