// Package dataset manages the on-disk face dataset laid out as
// <root>/<person-name>/<n>.jpg.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMissing is returned when the dataset root does not exist.
	ErrMissing = errors.New("dataset directory not found")
	// ErrInvalidName is returned for person names that cannot be a single directory.
	ErrInvalidName = errors.New("invalid person name")
)

// imageExts are the extensions counted as existing captures.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Dataset is a dataset rooted at a directory.
type Dataset struct {
	Root string
}

// New returns a Dataset rooted at root. The directory is not created.
func New(root string) *Dataset {
	return &Dataset{Root: root}
}

// Person is one identity folder and the image files inside it.
type Person struct {
	Name   string
	Dir    string
	Images []string
}

// Stats summarises the dataset contents.
type Stats struct {
	People      int
	TotalImages int
	PerPerson   map[string]int
}

// ValidateName rejects names that are empty or would escape the dataset root.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	case trimmed == "." || trimmed == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(trimmed, `/\`):
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidName, name)
	}
	return nil
}

// Exists reports whether the root directory is present.
func (d *Dataset) Exists() bool {
	info, err := os.Stat(d.Root)
	return err == nil && info.IsDir()
}

// PersonDir returns the folder for a person.
func (d *Dataset) PersonDir(name string) string {
	return filepath.Join(d.Root, strings.TrimSpace(name))
}

// People returns the person folder names in sorted order.
func (d *Dataset) People() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, d.Root)
		}
		return nil, err
	}
	var people []string
	for _, e := range entries {
		if e.IsDir() {
			people = append(people, e.Name())
		}
	}
	sort.Strings(people)
	return people, nil
}

// Scan lists every person (sorted by name) with every regular file in their folder.
// Files are ordered numerically by name where possible so 2.jpg precedes 10.jpg.
// Unreadable images are not filtered here; decoding is the caller's job.
func (d *Dataset) Scan() ([]Person, error) {
	people, err := d.People()
	if err != nil {
		return nil, err
	}
	out := make([]Person, 0, len(people))
	for _, name := range people {
		dir := filepath.Join(d.Root, name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		p := Person{Name: name, Dir: dir}
		for _, e := range entries {
			if e.Type().IsRegular() {
				p.Images = append(p.Images, filepath.Join(dir, e.Name()))
			}
		}
		sortNumeric(p.Images)
		out = append(out, p)
	}
	return out, nil
}

// Stats counts people and image files. A missing root yields zero stats.
func (d *Dataset) Stats() (Stats, error) {
	s := Stats{PerPerson: map[string]int{}}
	people, err := d.People()
	if err != nil {
		if errors.Is(err, ErrMissing) {
			return s, nil
		}
		return s, err
	}
	for _, name := range people {
		n, err := d.CountImages(name)
		if err != nil {
			return s, err
		}
		s.People++
		s.TotalImages += n
		s.PerPerson[name] = n
	}
	return s, nil
}

// CountImages returns the number of image files (.jpg, .jpeg, .png) already saved for
// a person. A missing folder counts as zero.
func (d *Dataset) CountImages(name string) (int, error) {
	entries, err := os.ReadDir(d.PersonDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			n++
		}
	}
	return n, nil
}

// IsImage reports whether the file name has an image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

func sortNumeric(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, aErr := strconv.Atoi(strings.TrimSuffix(filepath.Base(paths[i]), filepath.Ext(paths[i])))
		b, bErr := strconv.Atoi(strings.TrimSuffix(filepath.Base(paths[j]), filepath.Ext(paths[j])))
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return paths[i] < paths[j]
	})
}
