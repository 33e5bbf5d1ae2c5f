package pipeline

import (
	"errors"
	"os"
	"sort"
	"time"

	"github.com/andresmejia3/facerec/internal/dataset"
	"github.com/andresmejia3/facerec/internal/labelmap"
)

// ModelInfo describes the trained artifacts and whether they still match the
// dataset.
type ModelInfo struct {
	Exists       bool
	People       []string
	Count        int
	ModelModTime time.Time
	// Stale is set when the label map names differ from the dataset people.
	Stale bool
	// Added are dataset people the model does not know; Removed are known people
	// whose folder is gone.
	Added   []string
	Removed []string
}

// InspectModel reads the label map and compares it with the dataset people. A
// missing model or label map yields Exists=false without an error.
func InspectModel(modelPath, labelMapPath string, ds *dataset.Dataset) (ModelInfo, error) {
	var info ModelInfo
	if err := CheckModelFiles(modelPath, labelMapPath); err != nil {
		return info, nil
	}
	st, err := os.Stat(modelPath)
	if err != nil {
		return info, err
	}
	labels, err := labelmap.Load(labelMapPath)
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.ModelModTime = st.ModTime()
	info.People = labels.Names()
	info.Count = len(labels)

	people, err := ds.People()
	if err != nil && !errors.Is(err, dataset.ErrMissing) {
		return info, err
	}
	info.Added, info.Removed = diffNames(people, info.People)
	info.Stale = len(info.Added) > 0 || len(info.Removed) > 0
	return info, nil
}

// diffNames returns the names only in current and the names only in known.
func diffNames(current, known []string) (added, removed []string) {
	seen := make(map[string]bool, len(known))
	for _, n := range known {
		seen[n] = true
	}
	for _, n := range current {
		if !seen[n] {
			added = append(added, n)
		}
		delete(seen, n)
	}
	for n := range seen {
		removed = append(removed, n)
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
