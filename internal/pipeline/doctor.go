package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/config"
	"github.com/andresmejia3/facerec/internal/detector"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"gocv.io/x/gocv"
)

// Check is one environment check result. Err is nil when the check passed.
type Check struct {
	Name   string
	Detail string
	Err    error
}

// Doctor verifies the OpenCV build, the classifier, the cascade files and, unless
// skipCamera is set, the configured camera.
func Doctor(cfg *config.Config, skipCamera bool) []Check {
	checks := []Check{{
		Name:   "opencv",
		Detail: fmt.Sprintf("gocv %s, OpenCV %s", gocv.Version(), gocv.OpenCVVersion()),
	}}

	checks = append(checks, safeCheck("lbph recognizer", func() (string, error) {
		clf := recognizer.NewLBPH(cfg.Model)
		return "contrib face module available", clf.Close()
	}))

	checks = append(checks, safeCheck("cascades", func() (string, error) {
		d, err := detector.NewPigo(cfg.Detector)
		if err != nil {
			return "", err
		}
		return "loaded from " + cfg.Detector.CascadeDir, d.Close()
	}))

	checks = append(checks, safeCheck("landmark cascades", func() (string, error) {
		dir := filepath.Join(cfg.Detector.CascadeDir, detector.LandmarkDir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d files in %s", len(entries), dir), nil
	}))

	if skipCamera {
		checks = append(checks, Check{Name: "camera", Detail: "skipped"})
		return checks
	}
	checks = append(checks, safeCheck("camera", func() (string, error) {
		cam, err := camera.OpenWebcam(cfg.Camera.Device)
		if err != nil {
			return "", err
		}
		w, h := cam.Size()
		return fmt.Sprintf("device %d, %dx%d", cfg.Camera.Device, w, h), cam.Close()
	}))
	return checks
}

// Problems returns the failed checks.
func Problems(checks []Check) []Check {
	var failed []Check
	for _, c := range checks {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

func safeCheck(name string, fn func() (string, error)) (c Check) {
	c.Name = name
	defer guard(name, &c.Err)
	c.Detail, c.Err = fn()
	return c
}
