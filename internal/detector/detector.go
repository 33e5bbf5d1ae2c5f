// Package detector finds faces in a frame and returns their landmarks in
// normalized coordinates.
package detector

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/andresmejia3/facerec/internal/config"
	"github.com/andresmejia3/facerec/internal/geometry"
	pigo "github.com/esimov/pigo/core"
	"gocv.io/x/gocv"
)

// Cascade file names inside the cascade directory.
const (
	FaceCascade   = "facefinder"
	PuplocCascade = "puploc"
	LandmarkDir   = "lps"
)

// perturb is the number of random perturbations pigo runs per landmark estimate.
const perturb = 63

var (
	eyeCascades   = []string{"lp46", "lp44", "lp42", "lp38", "lp312"}
	mouthCascades = []string{"lp93", "lp84", "lp82", "lp81"}
)

// Detector returns one landmark set per detected face.
type Detector interface {
	Detect(frame gocv.Mat) ([]geometry.LandmarkSet, error)
	Close() error
}

// Pigo detects faces with the pigo pixel-intensity cascade, then localises pupils
// and facial landmark points inside each face.
type Pigo struct {
	cfg    config.DetectorConfig
	face   *pigo.Pigo
	pupils *pigo.PuplocCascade
	flps   map[string][]*pigo.FlpCascade
	gray   gocv.Mat
}

// NewPigo loads the cascades from cfg.CascadeDir. The landmark directory is
// optional; without it only the face outline and pupils are reported.
func NewPigo(cfg config.DetectorConfig) (*Pigo, error) {
	faceData, err := os.ReadFile(filepath.Join(cfg.CascadeDir, FaceCascade))
	if err != nil {
		return nil, fmt.Errorf("failed to read face cascade: %w", err)
	}
	face, err := pigo.NewPigo().Unpack(faceData)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face cascade: %w", err)
	}

	pupData, err := os.ReadFile(filepath.Join(cfg.CascadeDir, PuplocCascade))
	if err != nil {
		return nil, fmt.Errorf("failed to read pupil cascade: %w", err)
	}
	plc := pigo.NewPuplocCascade()
	pupils, err := plc.UnpackCascade(pupData)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack pupil cascade: %w", err)
	}

	var flps map[string][]*pigo.FlpCascade
	lpsDir := filepath.Join(cfg.CascadeDir, LandmarkDir)
	if info, err := os.Stat(lpsDir); err == nil && info.IsDir() {
		flps, err = pupils.ReadCascadeDir(lpsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read landmark cascades: %w", err)
		}
	}

	return &Pigo{
		cfg:    cfg,
		face:   face,
		pupils: pupils,
		flps:   flps,
		gray:   gocv.NewMat(),
	}, nil
}

// Detect runs the cascades on frame (BGR) and returns the landmark sets of the best
// scoring faces, highest quality first.
func (p *Pigo) Detect(frame gocv.Mat) ([]geometry.LandmarkSet, error) {
	if frame.Empty() {
		return nil, errors.New("empty frame")
	}
	gocv.CvtColor(frame, &p.gray, gocv.ColorBGRToGray)
	rows, cols := p.gray.Rows(), p.gray.Cols()

	img := pigo.ImageParams{
		Pixels: p.gray.ToBytes(),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	params := pigo.CascadeParams{
		MinSize:     p.cfg.MinFaceSize,
		MaxSize:     p.cfg.MaxFaceSize,
		ShiftFactor: p.cfg.ShiftFactor,
		ScaleFactor: p.cfg.ScaleFactor,
		ImageParams: img,
	}

	dets := p.face.RunCascade(params, 0.0)
	dets = p.face.ClusterDetections(dets, p.cfg.IoUThreshold)
	dets = selectDetections(dets, float32(p.cfg.MinQuality), p.cfg.MaxFaces)

	sets := make([]geometry.LandmarkSet, 0, len(dets))
	for _, det := range dets {
		points := faceOutline(det)
		points = append(points, p.facePoints(det, img)...)
		sets = append(sets, normalize(points, cols, rows))
	}
	return sets, nil
}

// facePoints localises both pupils and, when landmark cascades are loaded, the eye
// corners, nose and mouth points.
func (p *Pigo) facePoints(det pigo.Detection, img pigo.ImageParams) []image.Point {
	var points []image.Point
	add := func(pl *pigo.Puploc) {
		if pl != nil && pl.Row > 0 && pl.Col > 0 {
			points = append(points, image.Pt(pl.Col, pl.Row))
		}
	}

	scale := float32(det.Scale)
	leftEye := p.pupils.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col - int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: perturb,
	}, img, 0.0, false)
	rightEye := p.pupils.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col + int(0.185*scale),
		Scale:    scale * 0.25,
		Perturbs: perturb,
	}, img, 0.0, false)
	add(leftEye)
	add(rightEye)

	if p.flps == nil || leftEye == nil || rightEye == nil {
		return points
	}
	for _, eye := range eyeCascades {
		for _, flpc := range p.flps[eye] {
			add(flpc.GetLandmarkPoint(leftEye, rightEye, img, perturb, false))
			add(flpc.GetLandmarkPoint(leftEye, rightEye, img, perturb, true))
		}
	}
	for _, mouth := range mouthCascades {
		for _, flpc := range p.flps[mouth] {
			add(flpc.GetLandmarkPoint(leftEye, rightEye, img, perturb, false))
		}
	}
	if lp84 := p.flps["lp84"]; len(lp84) > 0 {
		add(lp84[0].GetLandmarkPoint(leftEye, rightEye, img, perturb, true))
	}
	return points
}

// Close releases the scratch Mat.
func (p *Pigo) Close() error {
	return p.gray.Close()
}

// selectDetections drops low quality detections and keeps at most limit, best first.
func selectDetections(dets []pigo.Detection, minQuality float32, limit int) []pigo.Detection {
	kept := make([]pigo.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Q >= minQuality {
			kept = append(kept, d)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Q > kept[j].Q })
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// faceOutline returns the corners of the detection square. Pigo reports a face as a
// centre and a side length; the corners bound the forehead and chin that the inner
// landmarks do not reach.
func faceOutline(det pigo.Detection) []image.Point {
	half := det.Scale / 2
	return []image.Point{
		image.Pt(det.Col-half, det.Row-half),
		image.Pt(det.Col+half, det.Row-half),
		image.Pt(det.Col-half, det.Row+half),
		image.Pt(det.Col+half, det.Row+half),
	}
}

// normalize converts pixel points to frame-relative landmarks.
func normalize(points []image.Point, cols, rows int) geometry.LandmarkSet {
	set := make(geometry.LandmarkSet, 0, len(points))
	if cols <= 0 || rows <= 0 {
		return set
	}
	for _, pt := range points {
		set = append(set, geometry.Landmark{
			X: float64(pt.X) / float64(cols),
			Y: float64(pt.Y) / float64(rows),
		})
	}
	return set
}
