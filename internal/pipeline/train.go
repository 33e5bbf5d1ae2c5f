package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/labelmap"
	"github.com/andresmejia3/facerec/internal/recognizer"
	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
)

// TrainOptions configures a training run. The classifier is not closed by Train.
type TrainOptions struct {
	Dataset      *dataset.Dataset
	Classifier   recognizer.Classifier
	ModelPath    string
	LabelMapPath string
	Log          io.Writer
}

// TrainReport summarises a training run.
type TrainReport struct {
	People       int
	Images       int
	Skipped      int
	PerPerson    map[string]int
	Labels       labelmap.LabelMap
	ModelPath    string
	LabelMapPath string
}

// Train fits the classifier on the whole dataset and writes the model and label map.
// Labels follow the sorted person order; every person folder gets a label even if
// none of its images could be read.
func Train(opts TrainOptions) (rep TrainReport, err error) {
	defer guard("train", &err)
	log := logger(opts.Log)

	people, err := opts.Dataset.Scan()
	if err != nil {
		return rep, err
	}

	set := loadFaces(people, nil, log, "🧠 Loading faces")
	defer set.close()

	rep.People = len(people)
	rep.Images = len(set.images)
	rep.Skipped = set.skipped
	rep.PerPerson = set.perPerson
	if len(set.images) == 0 {
		return rep, fmt.Errorf("%w in %s", ErrNoImages, opts.Dataset.Root)
	}

	fmt.Fprintf(log, "⚙️  Training on %d images of %d people...\n", rep.Images, rep.People)
	if err := opts.Classifier.Train(set.images, set.labels); err != nil {
		return rep, fmt.Errorf("training failed: %w", err)
	}
	if err := commitModel(opts.Classifier, set.names, opts.ModelPath, opts.LabelMapPath); err != nil {
		return rep, err
	}
	rep.Labels = set.names
	rep.ModelPath = opts.ModelPath
	rep.LabelMapPath = opts.LabelMapPath

	fmt.Fprintf(log, "✅ Model saved to %s, label map saved to %s\n", opts.ModelPath, opts.LabelMapPath)
	return rep, nil
}

// commitModel writes the model and label map as staged siblings and only moves them
// into place once both were written, so a failed save keeps the previous pair.
func commitModel(clf recognizer.Classifier, names labelmap.LabelMap, modelPath, labelMapPath string) error {
	stagedModel, stagedLabels := stagedPath(modelPath), stagedPath(labelMapPath)
	defer os.Remove(stagedModel)
	defer os.Remove(stagedLabels)

	if err := clf.Save(stagedModel); err != nil {
		return fmt.Errorf("failed to save model to %s: %w", modelPath, err)
	}
	if err := labelmap.Save(stagedLabels, names); err != nil {
		return fmt.Errorf("failed to save label map to %s: %w", labelMapPath, err)
	}
	if err := os.Rename(stagedLabels, labelMapPath); err != nil {
		return fmt.Errorf("failed to save label map to %s: %w", labelMapPath, err)
	}
	if err := os.Rename(stagedModel, modelPath); err != nil {
		return fmt.Errorf("failed to save model to %s: %w", modelPath, err)
	}
	return nil
}

// stagedPath keeps the extension, which OpenCV uses to pick the storage format.
func stagedPath(path string) string {
	return filepath.Join(filepath.Dir(path), ".staged-"+filepath.Base(path))
}

// faceSet is a labelled collection of grayscale images loaded from the dataset.
type faceSet struct {
	images    []gocv.Mat
	labels    []int
	names     labelmap.LabelMap
	perPerson map[string]int
	skipped   int
}

func (s *faceSet) close() {
	for i := range s.images {
		s.images[i].Close()
	}
	s.images = nil
}

// loadFaces reads the images of every person as grayscale, labelling people in the
// given order. When keep is non-nil only paths it accepts are loaded. Unreadable
// files are counted and skipped.
func loadFaces(people []dataset.Person, keep func(person, index int) bool, log io.Writer, desc string) *faceSet {
	total := 0
	names := make([]string, len(people))
	for i, p := range people {
		total += len(p.Images)
		names[i] = p.Name
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(log),
		progressbar.OptionShowCount(),
	)

	set := &faceSet{names: labelmap.FromNames(names), perPerson: map[string]int{}}
	for label, p := range people {
		set.perPerson[p.Name] = 0
		for i, path := range p.Images {
			bar.Add(1)
			if keep != nil && !keep(label, i) {
				continue
			}
			img := gocv.IMRead(path, gocv.IMReadGrayScale)
			if img.Empty() {
				img.Close()
				set.skipped++
				continue
			}
			set.images = append(set.images, img)
			set.labels = append(set.labels, label)
			set.perPerson[p.Name]++
		}
	}
	bar.Finish()
	fmt.Fprintln(log)
	if set.skipped > 0 {
		fmt.Fprintf(log, "⚠️  Skipped %d unreadable images\n", set.skipped)
	}
	return set
}
