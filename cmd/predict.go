package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facerec/internal/camera"
	"github.com/andresmejia3/facerec/internal/detector"
	"github.com/andresmejia3/facerec/internal/pipeline"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/andresmejia3/facerec/internal/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	predictRecord    bool
	predictOutput    string
	predictThreshold float64
)

var predictCmd = &cobra.Command{
	Use:     "predict",
	Aliases: []string{"recognize"},
	Short:   "Recognize faces live from the webcam and record the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runPredict(cmd.Context(), predictFlags(cmd))
	},
}

func init() {
	predictCmd.Flags().BoolVarP(&predictRecord, "record", "r", true, "Record the annotated session to a video file")
	predictCmd.Flags().StringVarP(&predictOutput, "output", "o", "", "Recording path (default from config: recogn/face_recognition_output.mp4)")
	predictCmd.Flags().Float64VarP(&predictThreshold, "threshold", "t", 0, "LBPH distance above which a face is Unknown (0 = never reject)")
	rootCmd.AddCommand(predictCmd)
}

// predictSettings are the per-run overrides of the configuration.
type predictSettings struct {
	record    bool
	output    string
	threshold float64
}

func predictFlags(cmd *cobra.Command) predictSettings {
	s := defaultPredictSettings()
	s.record = predictRecord
	if cmd.Flags().Changed("output") {
		s.output = predictOutput
	}
	if cmd.Flags().Changed("threshold") {
		s.threshold = predictThreshold
	}
	return s
}

func defaultPredictSettings() predictSettings {
	return predictSettings{
		record:    true,
		output:    Cfg.Recording.Path,
		threshold: Cfg.Model.Threshold,
	}
}

func runPredict(ctx context.Context, s predictSettings) error {
	if s.threshold < 0 {
		return fail("Invalid --threshold", fmt.Errorf("must be >= 0, got %v", s.threshold))
	}
	modelPath, labelMapPath := Cfg.Model.ModelPath(), Cfg.Model.LabelMapPath()
	// Fail before touching the camera.
	if err := pipeline.CheckModelFiles(modelPath, labelMapPath); err != nil {
		return fail("Model is not trained", err)
	}

	modelCfg := Cfg.Model
	modelCfg.Threshold = s.threshold

	det, err := detector.NewPigo(Cfg.Detector)
	if err != nil {
		return fail("Failed to load face detector", err)
	}
	cam, err := camera.OpenWebcam(Cfg.Camera.Device)
	if err != nil {
		det.Close()
		return fail("Could not access camera", err)
	}

	var rec camera.Sink
	var recorder *camera.Recorder
	recording := ""
	if s.record {
		w, h := cam.Size()
		r, err := camera.NewRecorder(s.output, Cfg.Recording.Codec, Cfg.Recording.FPS, w, h)
		if err != nil {
			cam.Close()
			det.Close()
			return fail("Failed to start recording", err)
		}
		rec, recorder = r, r
		recording = r.Path
	}

	var onPrediction func(int, types.Prediction)
	var sessionID uuid.UUID
	if DB != nil {
		sessionID, err = DB.StartSession(ctx, recording)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to start history session: %v\n", err)
		} else {
			onPrediction = func(_ int, p types.Prediction) {
				if err := DB.InsertEvent(ctx, sessionID, p); err != nil && ctx.Err() == nil {
					fmt.Fprintf(os.Stderr, "⚠️  Failed to log recognition event: %v\n", err)
				}
			}
		}
	}

	rep, err := pipeline.Predict(ctx, pipeline.PredictOptions{
		ModelPath:    modelPath,
		LabelMapPath: labelMapPath,
		Classifier:   recognizer.NewLBPH(modelCfg),
		Source:       cam,
		Detector:     det,
		Display:      openDisplay("Face Recognition"),
		Recorder:     rec,
		OnPrediction: onPrediction,
		Mirror:       Cfg.Camera.Mirror,
		Log:          os.Stderr,
	})

	if onPrediction != nil {
		// Background: the command context is usually cancelled by now.
		if err := DB.EndSession(context.Background(), sessionID, rep.Frames); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to close history session: %v\n", err)
		}
	}
	if err != nil {
		return fail("Recognition failed", err)
	}

	fmt.Printf("Recognition stopped (%s): %d frames, %d faces, %d recognized, %d unknown\n",
		rep.StopReason, rep.Frames, rep.Faces, rep.Recognized, rep.Unknown+rep.Failed)
	if recorder != nil {
		fmt.Printf("🎥 Recorded %d frames to %s\n", recorder.Frames(), recorder.Path)
	}
	return nil
}
