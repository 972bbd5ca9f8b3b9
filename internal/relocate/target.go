package relocate

import (
	"fmt"
	"path/filepath"

	"tvshelf/internal/filename"
)

// maxVersions bounds the search for a free versioned destination.
const maxVersions = 999

// Target is a computed destination. VersionIndex is zero for the plain path
// and positive once a conflict forced a numbered copy into the duplicates
// folder.
type Target struct {
	Dir          string
	Basename     string
	Suffix       string
	VersionIndex int
}

// Path returns the destination path, e.g. "Dir/Show [1x02] Title.mkv" or
// "Dir/versions/Show [1x02] Title (2).mkv".
func (t Target) Path() string {
	if t.VersionIndex > 0 {
		name := fmt.Sprintf("%s (%d)%s", t.Basename, t.VersionIndex, t.Suffix)
		return filepath.Join(t.Dir, filename.DuplicatesFolder, name)
	}
	return filepath.Join(t.Dir, t.Basename+t.Suffix)
}

// WithVersion returns a copy of t using version index n.
func (t Target) WithVersion(n int) Target {
	t.VersionIndex = n
	return t
}

// NextVersion returns the first versioned target after t that does not
// exist yet. The boolean is false when every version slot is taken.
func NextVersion(fsys FS, t Target) (Target, bool) {
	start := t.VersionIndex + 1
	for n := start; n <= maxVersions; n++ {
		candidate := t.WithVersion(n)
		if !fsys.Exists(candidate.Path()) {
			return candidate, true
		}
	}
	return t, false
}
