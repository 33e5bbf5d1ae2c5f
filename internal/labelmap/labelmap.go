// Package labelmap persists the mapping from classifier labels to person names.
//
// On disk the map is a JSON object whose keys are the string-encoded integer
// labels, e.g. {"0":"alice","1":"bob"}.
package labelmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrNotDense is returned by Validate when labels are not exactly 0..N-1.
var ErrNotDense = errors.New("label map is not dense")

// LabelMap maps an integer label to the person it was assigned to at training time.
type LabelMap map[int]string

// FromNames assigns labels 0..N-1 in the order given.
func FromNames(names []string) LabelMap {
	m := make(LabelMap, len(names))
	for i, n := range names {
		m[i] = n
	}
	return m
}

// Lookup returns the name for label and whether it exists.
func (m LabelMap) Lookup(label int) (string, bool) {
	name, ok := m[label]
	return name, ok
}

// Labels returns all labels in ascending order.
func (m LabelMap) Labels() []int {
	labels := make([]int, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}

// Names returns the person names ordered by label.
func (m LabelMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, l := range m.Labels() {
		names = append(names, m[l])
	}
	return names
}

// Validate checks that labels are dense integers 0..N-1.
func (m LabelMap) Validate() error {
	for i, l := range m.Labels() {
		if l < 0 {
			return fmt.Errorf("%w: negative label %d", ErrNotDense, l)
		}
		if l != i {
			return fmt.Errorf("%w: expected label %d, found %d", ErrNotDense, i, l)
		}
	}
	return nil
}

// MarshalJSON encodes integer labels as string keys.
func (m LabelMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]string, len(m))
	for l, name := range m {
		raw[strconv.Itoa(l)] = name
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes string keys back into integer labels.
func (m *LabelMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LabelMap, len(raw))
	for k, name := range raw {
		l, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("invalid label key %q: %w", k, err)
		}
		out[l] = name
	}
	*m = out
	return nil
}

// Save writes the map to path. The file is written to a temporary sibling first and
// renamed into place so a failed write never leaves a truncated map behind.
func Save(path string, m LabelMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".label_map-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads a map written by Save and rejects maps whose labels are not 0..N-1.
func Load(path string) (LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m LabelMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse label map %s: %w", path, err)
	}
	if m == nil {
		m = LabelMap{}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid label map %s: %w", path, err)
	}
	return m, nil
}
