package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"gonum.org/v1/gonum/stat"
)

// DefaultHoldoutEvery sends every fifth image of each person to the test split.
const DefaultHoldoutEvery = 5

// EvaluateOptions configures a hold-out evaluation. The classifier is created fresh
// and closed before Evaluate returns; the saved model is never touched.
type EvaluateOptions struct {
	Dataset       *dataset.Dataset
	NewClassifier recognizer.Factory
	HoldoutEvery  int
	Log           io.Writer
}

// PersonScore is the test result for one person.
type PersonScore struct {
	Name     string
	Tested   int
	Correct  int
	Accuracy float64
}

// DistanceStats describes the distances of a group of predictions.
type DistanceStats struct {
	N      int
	Mean   float64
	StdDev float64
}

// EvaluateReport summarises a hold-out evaluation.
type EvaluateReport struct {
	TrainImages int
	TestImages  int
	Correct     int
	Accuracy    float64
	Skipped     int
	PerPerson   []PersonScore
	// Distances of correct and incorrect predictions.
	CorrectDistances DistanceStats
	WrongDistances   DistanceStats
}

// isHoldout reports whether image index i (0-based, in sorted order) belongs to
// the test split.
func isHoldout(i, every int) bool {
	return (i+1)%every == 0
}

// Evaluate splits each person's images deterministically, fits a fresh classifier on
// the training split and scores it on the rest.
func Evaluate(opts EvaluateOptions) (rep EvaluateReport, err error) {
	defer guard("evaluate", &err)
	log := logger(opts.Log)

	every := opts.HoldoutEvery
	if every == 0 {
		every = DefaultHoldoutEvery
	}
	if every < 2 {
		return rep, fmt.Errorf("holdout interval must be at least 2, got %d", every)
	}

	people, err := opts.Dataset.Scan()
	if err != nil {
		return rep, err
	}
	if len(people) == 0 {
		return rep, fmt.Errorf("%w in %s", ErrNoImages, opts.Dataset.Root)
	}

	train := loadFaces(people, func(_, i int) bool { return !isHoldout(i, every) }, log, "🧠 Loading training split")
	defer train.close()
	test := loadFaces(people, func(_, i int) bool { return isHoldout(i, every) }, log, "🧪 Loading test split")
	defer test.close()

	for _, p := range people {
		if train.perPerson[p.Name] == 0 {
			return rep, fmt.Errorf("%s has no training images after the holdout split", p.Name)
		}
	}
	if len(test.images) == 0 {
		return rep, errors.New("no test images, add more images or lower the holdout interval")
	}

	rep.TrainImages = len(train.images)
	rep.TestImages = len(test.images)
	rep.Skipped = train.skipped + test.skipped

	clf := opts.NewClassifier()
	defer clf.Close()
	if err := clf.Train(train.images, train.labels); err != nil {
		return rep, fmt.Errorf("training failed: %w", err)
	}

	tested := make([]int, len(people))
	correct := make([]int, len(people))
	var hits, misses []float64
	for i, img := range test.images {
		want := test.labels[i]
		tested[want]++
		label, dist, perr := clf.Predict(img)
		if perr != nil {
			fmt.Fprintf(log, "⚠️  Prediction error: %v\n", perr)
			continue
		}
		if label == want {
			correct[want]++
			hits = append(hits, dist)
		} else {
			misses = append(misses, dist)
		}
	}

	for i, p := range people {
		score := PersonScore{Name: p.Name, Tested: tested[i], Correct: correct[i]}
		if score.Tested > 0 {
			score.Accuracy = float64(score.Correct) / float64(score.Tested)
		}
		rep.Correct += score.Correct
		rep.PerPerson = append(rep.PerPerson, score)
	}
	rep.Accuracy = float64(rep.Correct) / float64(rep.TestImages)
	rep.CorrectDistances = describe(hits)
	rep.WrongDistances = describe(misses)

	fmt.Fprintf(log, "📊 Accuracy %.1f%% (%d/%d)\n", rep.Accuracy*100, rep.Correct, rep.TestImages)
	return rep, nil
}

func describe(xs []float64) DistanceStats {
	s := DistanceStats{N: len(xs)}
	switch len(xs) {
	case 0:
	case 1:
		s.Mean = xs[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	}
	return s
}
