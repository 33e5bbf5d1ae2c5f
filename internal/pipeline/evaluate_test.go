package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/andresmejia3/facerec/internal/config"
	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHoldout(t *testing.T) {
	var test []int
	for i := 0; i < 12; i++ {
		if isHoldout(i, 5) {
			test = append(test, i)
		}
	}
	assert.Equal(t, []int{4, 9}, test)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, DistanceStats{}, describe(nil))
	assert.Equal(t, DistanceStats{N: 1, Mean: 3}, describe([]float64{3}))

	s := describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5, s.Mean, 1e-9)
	// Sample standard deviation.
	assert.InDelta(t, 2.138, s.StdDev, 1e-3)
}

func TestEvaluateSeparatesTwoPeople(t *testing.T) {
	root := t.TempDir()
	writePattern(t, root, "alice", 5, stripes)
	writePattern(t, root, "bob", 5, checker)

	rep, err := Evaluate(EvaluateOptions{
		Dataset:       dataset.New(root),
		NewClassifier: recognizer.LBPHFactory(config.Default().Model),
	})
	require.NoError(t, err)

	assert.Equal(t, 8, rep.TrainImages)
	assert.Equal(t, 2, rep.TestImages)
	assert.Equal(t, 2, rep.Correct)
	assert.InDelta(t, 1.0, rep.Accuracy, 1e-9)
	require.Len(t, rep.PerPerson, 2)
	assert.Equal(t, "alice", rep.PerPerson[0].Name)
	assert.Equal(t, 1, rep.PerPerson[0].Tested)
	assert.Equal(t, 2, rep.CorrectDistances.N)
	assert.Zero(t, rep.WrongDistances.N)
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	factory := recognizer.LBPHFactory(config.Default().Model)

	_, err := Evaluate(EvaluateOptions{
		Dataset:       dataset.New(filepath.Join(t.TempDir(), "missing")),
		NewClassifier: factory,
	})
	assert.ErrorIs(t, err, ErrDatasetMissing)

	root := t.TempDir()
	writePattern(t, root, "alice", 2, stripes)
	_, err = Evaluate(EvaluateOptions{Dataset: dataset.New(root), NewClassifier: factory, HoldoutEvery: 1})
	assert.Error(t, err)

	// Two images per person never reach the fifth position.
	_, err = Evaluate(EvaluateOptions{Dataset: dataset.New(root), NewClassifier: factory})
	assert.Error(t, err)
}
