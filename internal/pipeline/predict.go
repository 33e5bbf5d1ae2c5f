package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/detector"
	"github.com/andresmejia3/facerec/internal/geometry"
	"github.com/andresmejia3/facerec/internal/labelmap"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/andresmejia3/facerec/internal/types"
	"gocv.io/x/gocv"
)

// PredictOptions configures a recognition session. Predict owns Classifier, Source,
// Detector, Display and Recorder and closes each of them exactly once.
type PredictOptions struct {
	ModelPath    string
	LabelMapPath string
	Classifier   recognizer.Classifier
	Source       camera.Source
	Detector     detector.Detector
	Display      camera.Display
	// Recorder, when set, receives every processed frame.
	Recorder camera.Sink
	// OnPrediction, when set, is called for every classified face.
	OnPrediction func(frame int, p types.Prediction)
	Mirror       bool
	Log          io.Writer
}

// PredictReport summarises a recognition session.
type PredictReport struct {
	Frames     int
	Faces      int
	Recognized int
	Unknown    int
	Failed     int
	StopReason types.StopReason
	Recording  string
}

// CheckModelFiles reports ErrModelMissing or ErrLabelMapMissing, naming the path,
// when either trained artifact is absent.
func CheckModelFiles(modelPath, labelMapPath string) error {
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("%w: %s", ErrModelMissing, modelPath)
	}
	if _, err := os.Stat(labelMapPath); err != nil {
		return fmt.Errorf("%w: %s", ErrLabelMapMissing, labelMapPath)
	}
	return nil
}

// LoadModel checks both artifacts exist, loads the model into clf and returns the
// label map.
func LoadModel(clf recognizer.Classifier, modelPath, labelMapPath string) (labelmap.LabelMap, error) {
	if err := CheckModelFiles(modelPath, labelMapPath); err != nil {
		return nil, err
	}
	if err := clf.Load(modelPath); err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}
	labels, err := labelmap.Load(labelMapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load label map %s: %w", labelMapPath, err)
	}
	return labels, nil
}

// Predict recognises faces frame by frame until stopped. A face that cannot be
// classified is shown as Unknown and never ends the session.
func Predict(ctx context.Context, opts PredictOptions) (rep PredictReport, err error) {
	defer guard("predict", &err)
	defer release(opts.Recorder, opts.Classifier, opts.Source, opts.Detector, opts.Display)

	log := logger(opts.Log)

	labels, err := LoadModel(opts.Classifier, opts.ModelPath, opts.LabelMapPath)
	if err != nil {
		return rep, err
	}
	if r, ok := opts.Recorder.(*camera.Recorder); ok {
		rep.Recording = r.Path
	}

	fmt.Fprintf(log, "🔍 Recognizing %d known people. Press 'q' to stop.\n", len(labels))

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if ctx.Err() != nil {
			rep.StopReason = types.StopCanceled
			break
		}
		if !opts.Source.Read(&frame) {
			fmt.Fprintf(log, "⚠️  Failed to read from camera\n")
			rep.StopReason = types.StopCameraFail
			break
		}
		rep.Frames++
		if opts.Mirror {
			if err := gocv.Flip(frame, &frame, 1); err != nil {
				fmt.Fprintf(log, "⚠️  Mirroring failed on frame %d: %v\n", rep.Frames, err)
			}
		}

		sets, derr := opts.Detector.Detect(frame)
		if derr != nil {
			fmt.Fprintf(log, "⚠️  Detection failed on frame %d: %v\n", rep.Frames, derr)
		}
		boxes := faceBoxes(sets, frame.Cols(), frame.Rows())

		// Classify every face before drawing so overlays never leak into a crop.
		preds := make([]types.Prediction, 0, len(boxes))
		for _, box := range boxes {
			p := classify(opts.Classifier, labels, frame, box)
			switch p.Status {
			case types.Recognized:
				rep.Recognized++
			case types.UnknownLabel:
				rep.Unknown++
			case types.Failed:
				rep.Failed++
				fmt.Fprintf(log, "⚠️  Prediction error: %v\n", p.Err)
			}
			rep.Faces++
			preds = append(preds, p)
			if opts.OnPrediction != nil {
				opts.OnPrediction(rep.Frames, p)
			}
		}
		for _, p := range preds {
			drawBox(&frame, p.Box)
			drawLabel(&frame, p.Box, p.Text())
		}

		if opts.Recorder != nil {
			if werr := opts.Recorder.Write(frame); werr != nil {
				fmt.Fprintf(log, "⚠️  Failed to record frame %d: %v\n", rep.Frames, werr)
			}
		}

		opts.Display.Show(frame)
		if opts.Display.StopRequested() {
			rep.StopReason = types.StopUser
			break
		}
	}

	fmt.Fprintf(log, "🏁 Processed %d frames, %d faces (%d recognized, %d unknown, %d failed)\n",
		rep.Frames, rep.Faces, rep.Recognized, rep.Unknown, rep.Failed)
	if rep.Recording != "" {
		fmt.Fprintf(log, "🎞️  Video saved as %s\n", rep.Recording)
	}
	return rep, nil
}

// classify crops one face, converts it to grayscale and looks the classifier label
// up in the label map. A panic inside the classifier becomes a Failed prediction.
func classify(clf recognizer.Classifier, labels labelmap.LabelMap, frame gocv.Mat, box geometry.Box) (p types.Prediction) {
	p = types.Prediction{Box: box, Label: -1}
	defer func() {
		if r := recover(); r != nil {
			p.Status = types.Failed
			p.Err = fmt.Errorf("classifier panic: %v", r)
		}
	}()

	region := frame.Region(box.Rect())
	defer region.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	if region.Channels() == 1 {
		region.CopyTo(&gray)
	} else {
		gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)
	}

	label, dist, err := clf.Predict(gray)
	if err != nil {
		p.Status = types.Failed
		p.Err = err
		return p
	}
	p.Label = label
	p.Distance = dist
	name, ok := labels.Lookup(label)
	if !ok {
		p.Status = types.UnknownLabel
		return p
	}
	p.Status = types.Recognized
	p.Name = name
	return p
}
