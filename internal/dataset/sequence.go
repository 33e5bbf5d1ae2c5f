package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Sequence hands out file paths for new captures of one person. Numbering starts at
// the count of images already present, so repeated sessions append. A number that is
// already taken (left over after manual deletions) is skipped, never overwritten.
type Sequence struct {
	dir   string
	ext   string
	start int
	next  int
}

// OpenSequence creates the person folder if needed and positions the sequence after
// the existing images.
func (d *Dataset) OpenSequence(name string) (*Sequence, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	dir := d.PersonDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	existing, err := d.CountImages(name)
	if err != nil {
		return nil, err
	}
	return &Sequence{dir: dir, ext: ".jpg", start: existing, next: existing}, nil
}

// Dir is the folder images are written to.
func (s *Sequence) Dir() string { return s.dir }

// Existing is the number of images present when the sequence was opened.
func (s *Sequence) Existing() int { return s.start }

// Next returns the path for the next free number and advances the sequence. It
// fails when a candidate path cannot be checked.
func (s *Sequence) Next() (string, error) {
	for {
		p := filepath.Join(s.dir, strconv.Itoa(s.next)+s.ext)
		_, err := os.Stat(p)
		switch {
		case os.IsNotExist(err):
			s.next++
			return p, nil
		case err != nil:
			return "", fmt.Errorf("failed to check %s: %w", p, err)
		}
		s.next++
	}
}

// Rewind gives back the last number handed out, used when writing that file failed.
func (s *Sequence) Rewind() {
	if s.next > s.start {
		s.next--
	}
}
