package relocate

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// FS is the filesystem provider used by the Relocator. Implementations must
// be safe for concurrent use on disjoint paths.
type FS interface {
	Exists(path string) bool
	Size(path string) (int64, error)
	MkdirAll(path string) error
	Rename(src, dst string) error
	Open(path string) (io.ReadCloser, error)
	// Create opens a new file for writing and fails if path exists.
	Create(path string) (io.WriteCloser, error)
	Remove(path string) error
	Chtimes(path string, mtime time.Time) error
	SameFile(a, b string) bool
	// SameVolume reports whether a and b live on one storage volume. b may
	// not exist yet; its nearest existing ancestor is used.
	SameVolume(a, b string) (bool, error)
	ReadDir(path string) ([]string, error)
}

// OSFS implements FS on the local filesystem.
type OSFS struct{}

var _ FS = OSFS{}

func (OSFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (OSFS) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Rename never replaces an existing dst. An occupied destination yields an
// error matching fs.ErrExist.
func (OSFS) Rename(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil {
		return nil
	}
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
}

// renameByLink is the fallback for filesystems without an exclusive rename.
// Link fails with EEXIST when dst is taken.
func renameByLink(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return unix.EEXIST
		}
		return renameIfAbsent(src, dst)
	}
	return os.Remove(src)
}

// renameIfAbsent covers filesystems without hard links. The existence check
// and the rename are not atomic.
func renameIfAbsent(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return unix.EEXIST
	}
	if err := os.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) {
			return linkErr.Err
		}
		return err
	}
	return nil
}

func (OSFS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (OSFS) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) Chtimes(path string, mtime time.Time) error {
	return os.Chtimes(path, mtime, mtime)
}

func (OSFS) SameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (OSFS) SameVolume(a, b string) (bool, error) {
	devA, err := deviceOf(a)
	if err != nil {
		return false, err
	}
	devB, err := deviceOf(existingAncestor(b))
	if err != nil {
		return false, err
	}
	return devA == devB, nil
}

func (OSFS) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return uint64(st.Dev), nil
}

func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
