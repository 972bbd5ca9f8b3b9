package relocate_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tvshelf/internal/logging"
	"tvshelf/internal/relocate"
	"tvshelf/internal/services"
	"tvshelf/internal/testsupport"
)

// recordingFS counts mutating calls and can simulate separate volumes.
type recordingFS struct {
	relocate.OSFS
	mu           sync.Mutex
	mutations    []string
	splitVolumes bool
	failRemove   string
	beforeRename func(dst string)
}

func (f *recordingFS) record(op string) {
	f.mu.Lock()
	f.mutations = append(f.mutations, op)
	f.mu.Unlock()
}

func (f *recordingFS) MkdirAll(path string) error {
	if !f.OSFS.Exists(path) {
		f.record("mkdir")
	}
	return f.OSFS.MkdirAll(path)
}

func (f *recordingFS) Rename(src, dst string) error {
	f.record("rename")
	if f.beforeRename != nil {
		f.beforeRename(dst)
	}
	return f.OSFS.Rename(src, dst)
}

func (f *recordingFS) Remove(path string) error {
	f.record("remove")
	if path == f.failRemove {
		return errors.New("permission denied")
	}
	return f.OSFS.Remove(path)
}

func (f *recordingFS) Chtimes(path string, mtime time.Time) error {
	f.record("chtimes")
	return f.OSFS.Chtimes(path, mtime)
}

func (f *recordingFS) SameVolume(a, b string) (bool, error) {
	if f.splitVolumes {
		return false, nil
	}
	return f.OSFS.SameVolume(a, b)
}

type recordingSink struct {
	mu       sync.Mutex
	progress [][2]int64
	statuses []string
	complete []bool
	onChunk  func()
}

func (s *recordingSink) OnProgress(current, max int64) {
	s.mu.Lock()
	s.progress = append(s.progress, [2]int64{current, max})
	hook := s.onChunk
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (s *recordingSink) OnStatus(text string) {
	s.mu.Lock()
	s.statuses = append(s.statuses, text)
	s.mu.Unlock()
}

func (s *recordingSink) OnComplete(success bool) {
	s.mu.Lock()
	s.complete = append(s.complete, success)
	s.mu.Unlock()
}

type recordingOwner struct {
	began    bool
	finished *relocate.Result
}

func (o *recordingOwner) BeginMove() { o.began = true }

func (o *recordingOwner) FinishMove(result relocate.Result) { o.finished = &result }

func newRelocator(fsys relocate.FS) *relocate.Relocator {
	return relocate.New(fsys, relocate.Options{ChunkSize: 4096, TouchOnMove: true}, logging.NewNop())
}

func TestMoveToOwnPathIsNoOp(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Show [1x02] Title.mkv")
	testsupport.WriteFile(t, src, 1000)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatal(err)
	}

	fsys := &recordingFS{}
	owner := &recordingOwner{}
	result := newRelocator(fsys).Move(context.Background(), relocate.Unit{
		Source: src,
		Target: relocate.Target{Dir: dir, Basename: "Show [1x02] Title", Suffix: ".mkv"},
		Owner:  owner,
	})

	if result.Outcome != relocate.AlreadyInPlace {
		t.Fatalf("expected already in place, got %s (%v)", result.Outcome, result.Err)
	}
	if len(fsys.mutations) != 0 {
		t.Fatalf("expected no filesystem mutation, got %v", fsys.mutations)
	}
	info, err := os.Stat(src)
	if err != nil {
		t.Fatalf("source missing: %v", err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatal("no-op move must not touch the file")
	}
	if !owner.began || owner.finished == nil || owner.finished.Outcome != relocate.AlreadyInPlace {
		t.Fatal("owner was not notified")
	}
}

func TestMoveAcrossVolumesCopiesAndDeletes(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "incoming", "lost.s01e02.mkv")
	testsupport.WriteFile(t, src, 10000)
	want, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}

	fsys := &recordingFS{splitVolumes: true}
	sink := &recordingSink{}
	target := relocate.Target{Dir: filepath.Join(base, "library", "Lost", "Season 1"), Basename: "Lost [1x02] Cabin", Suffix: ".mkv"}
	result := newRelocator(fsys).Move(context.Background(), relocate.Unit{Source: src, Target: target, Sink: sink})

	if result.Outcome != relocate.Copied {
		t.Fatalf("expected copied, got %s (%v)", result.Outcome, result.Err)
	}
	got, err := os.ReadFile(target.Path())
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("destination differs from source")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err=%v", err)
	}
	if len(sink.progress) != 3 {
		t.Fatalf("expected three chunk callbacks, got %v", sink.progress)
	}
	if last := sink.progress[len(sink.progress)-1]; last != [2]int64{10000, 10000} {
		t.Fatalf("unexpected final progress %v", last)
	}
	if len(sink.complete) != 1 || !sink.complete[0] {
		t.Fatalf("expected one successful completion, got %v", sink.complete)
	}
	info, _ := os.Stat(target.Path())
	if time.Since(info.ModTime()) > time.Minute {
		t.Fatal("destination mtime should be set to the move time")
	}
}

func TestMoveSameVolumeRenames(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 512)
	fsys := &recordingFS{}
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}

	result := newRelocator(fsys).Move(context.Background(), relocate.Unit{Source: src, Target: target})
	if result.Outcome != relocate.Renamed || result.Bytes != 512 {
		t.Fatalf("expected rename of 512 bytes, got %s/%d (%v)", result.Outcome, result.Bytes, result.Err)
	}
	if !fsys.Exists(target.Path()) || fsys.Exists(src) {
		t.Fatal("rename did not move the file")
	}
}

func TestMoveConflictLeavesBothFilesUntouched(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 100)
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}
	testsupport.WriteFile(t, target.Path(), 200)

	result := newRelocator(&recordingFS{}).Move(context.Background(), relocate.Unit{Source: src, Target: target})
	if result.Outcome != relocate.Conflict {
		t.Fatalf("expected conflict, got %s", result.Outcome)
	}
	if !errors.Is(result.Err, services.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", result.Err)
	}
	if info, err := os.Stat(src); err != nil || info.Size() != 100 {
		t.Fatal("source must be untouched")
	}
	if info, err := os.Stat(target.Path()); err != nil || info.Size() != 200 {
		t.Fatal("existing destination must be untouched")
	}
}

func TestMoveMissingSource(t *testing.T) {
	base := t.TempDir()
	result := newRelocator(nil).Move(context.Background(), relocate.Unit{
		Source: filepath.Join(base, "gone.mkv"),
		Target: relocate.Target{Dir: base, Basename: "x", Suffix: ".mkv"},
	})
	if result.Outcome != relocate.Missing || !errors.Is(result.Err, services.ErrNotFound) {
		t.Fatalf("expected missing, got %s (%v)", result.Outcome, result.Err)
	}
}

func TestMoveCancelledMidCopyRemovesPartial(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 20000)
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{onChunk: cancel}

	result := newRelocator(&recordingFS{splitVolumes: true}).Move(ctx, relocate.Unit{Source: src, Target: target, Sink: sink})
	if result.Outcome != relocate.Cancelled {
		t.Fatalf("expected cancelled, got %s", result.Outcome)
	}
	if _, err := os.Stat(target.Path()); !os.IsNotExist(err) {
		t.Fatal("partial destination should be removed")
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatal("source must survive a cancelled copy")
	}
	if len(sink.complete) != 1 || sink.complete[0] {
		t.Fatalf("expected unsuccessful completion, got %v", sink.complete)
	}
}

func TestMoveTimeoutReportsTimeoutMarker(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 100)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result := newRelocator(nil).Move(ctx, relocate.Unit{Source: src, Target: relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}})
	if result.Outcome != relocate.Cancelled || !errors.Is(result.Err, services.ErrTimeout) {
		t.Fatalf("expected timeout cancellation, got %s (%v)", result.Outcome, result.Err)
	}
}

func TestMoveCopiedNotCleaned(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 100)
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}
	fsys := &recordingFS{splitVolumes: true, failRemove: filepath.Clean(src)}
	sink := &recordingSink{}

	result := newRelocator(fsys).Move(context.Background(), relocate.Unit{Source: src, Target: target, Sink: sink})
	if result.Outcome != relocate.CopiedNotCleaned {
		t.Fatalf("expected copied-not-cleaned, got %s", result.Outcome)
	}
	if result.Outcome.Complete() || !result.Outcome.Placed() {
		t.Fatal("copied-not-cleaned is placed but not complete")
	}
	if !fsys.Exists(src) || !fsys.Exists(target.Path()) {
		t.Fatal("both copies should exist")
	}
	if len(sink.complete) != 1 || sink.complete[0] {
		t.Fatalf("copied-not-cleaned must not report success, got %v", sink.complete)
	}
}

func TestRenameNeverReplacesExistingFile(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "a.mkv")
	dst := filepath.Join(base, "b.mkv")
	testsupport.WriteFile(t, src, 100)
	testsupport.WriteFile(t, dst, 200)

	err := relocate.OSFS{}.Rename(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() != 200 {
		t.Fatal("existing file must survive")
	}
	if info, err := os.Stat(src); err != nil || info.Size() != 100 {
		t.Fatal("source must stay in place")
	}
}

func TestMoveDestinationAppearingBeforeRenameIsConflict(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "in", "a.mkv")
	testsupport.WriteFile(t, src, 100)
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}
	fsys := &recordingFS{beforeRename: func(dst string) { testsupport.WriteFile(t, dst, 200) }}
	sink := &recordingSink{}

	result := newRelocator(fsys).Move(context.Background(), relocate.Unit{Source: src, Target: target, Sink: sink})
	if result.Outcome != relocate.Conflict || !errors.Is(result.Err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %s (%v)", result.Outcome, result.Err)
	}
	if info, err := os.Stat(target.Path()); err != nil || info.Size() != 200 {
		t.Fatal("late destination must be untouched")
	}
	if info, err := os.Stat(src); err != nil || info.Size() != 100 {
		t.Fatal("source must be untouched")
	}
	if len(sink.complete) != 1 || sink.complete[0] {
		t.Fatalf("expected unsuccessful completion, got %v", sink.complete)
	}
}

func TestMovePrunesEmptyDirectoriesBelowRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "incoming")
	src := filepath.Join(root, "Lost", "Season 1", "a.mkv")
	testsupport.WriteFile(t, src, 10)
	testsupport.WriteFile(t, filepath.Join(root, "keep.txt"), 1)
	target := relocate.Target{Dir: filepath.Join(base, "out"), Basename: "b", Suffix: ".mkv"}

	result := newRelocator(nil).Move(context.Background(), relocate.Unit{Source: src, Target: target, PruneRoot: root})
	if !result.Outcome.Complete() {
		t.Fatalf("move failed: %v", result.Err)
	}
	if _, err := os.Stat(filepath.Join(root, "Lost")); !os.IsNotExist(err) {
		t.Fatal("emptied directories should be removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal("prune root must be kept")
	}
}

func TestNextVersion(t *testing.T) {
	base := t.TempDir()
	target := relocate.Target{Dir: base, Basename: "Show [1x02] Title", Suffix: ".mkv"}
	testsupport.WriteFile(t, target.Path(), 1)
	testsupport.WriteFile(t, target.WithVersion(1).Path(), 1)

	next, ok := relocate.NextVersion(relocate.OSFS{}, target)
	if !ok || next.VersionIndex != 2 {
		t.Fatalf("expected version 2, got %d (ok=%v)", next.VersionIndex, ok)
	}
	want := filepath.Join(base, "versions", "Show [1x02] Title (2).mkv")
	if next.Path() != want {
		t.Fatalf("unexpected path %q", next.Path())
	}
}
