package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tvshelf/internal/batch"
	"tvshelf/internal/fileepisode"
	"tvshelf/internal/history"
	"tvshelf/internal/logging"
	"tvshelf/internal/relocate"
	"tvshelf/internal/services"
)

// LockFileName is created in the destination root while a run relocates.
const LockFileName = ".tvshelf.lock"

// Report describes one Relocate call.
type Report struct {
	BatchID string
	Summary batch.Summary
	// Skipped counts files that had no destination to move to.
	Skipped int
}

// Relocate moves every file that has a chosen destination. Files without
// one are skipped. sink receives per-file progress from all workers and
// must be safe for concurrent use; progress observes the batch.
func (r *Runner) Relocate(ctx context.Context, files []*fileepisode.FileEpisode, sink relocate.ProgressSink, progress batch.Progress) (Report, error) {
	prefs := r.watchers.Current()
	if err := os.MkdirAll(prefs.DestinationDir, 0o755); err != nil {
		return Report{}, services.Wrap(services.ErrIO, "workflow", "relocate", "create destination root", err)
	}
	lockPath := filepath.Join(prefs.DestinationDir, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrIO, "workflow", "relocate", "acquire lock", err)
	}
	if !ok {
		return Report{}, services.Wrap(services.ErrConflict, "workflow", "relocate",
			fmt.Sprintf("another tvshelf run holds %s", lockPath), nil)
	}
	defer func() { _ = lock.Unlock() }()

	report := Report{BatchID: uuid.NewString()}
	ctx = services.WithBatchID(ctx, report.BatchID)
	ctx = services.WithStage(ctx, "relocate")
	logger := logging.WithContext(ctx, r.logger)

	if sink == nil {
		sink = relocate.NopSink{}
	}
	claims := newDestinationClaims()
	units := make([]batch.Unit, 0, len(files))
	for _, f := range files {
		if f.IgnoreReason() != "" {
			report.Skipped++
			continue
		}
		if _, ok := f.Destination(); !ok {
			report.Skipped++
			continue
		}
		pruneRoot := ""
		if prefs.RemoveEmptyDirs {
			pruneRoot = r.rootFor(f)
		}
		units = append(units, &moveUnit{
			runner:    r,
			claims:    claims,
			file:      f,
			sink:      sink,
			pruneRoot: pruneRoot,
		})
	}

	logger.Info("relocation starting",
		logging.Int("files", len(units)),
		logging.Int("skipped", report.Skipped),
		logging.String("destination", prefs.DestinationDir),
	)
	report.Summary = r.batch.Run(ctx, units, progress)
	return report, nil
}

// destinationClaims reserves destination paths for one Relocate call so two
// files that resolve to the same name never target it at once.
type destinationClaims struct {
	mu    sync.Mutex
	paths map[string]string
}

func newDestinationClaims() *destinationClaims {
	return &destinationClaims{paths: make(map[string]string)}
}

// claim reserves path for source. It fails when another source holds it.
func (c *destinationClaims) claim(path, source string) bool {
	path = filepath.Clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if holder, ok := c.paths[path]; ok && holder != source {
		return false
	}
	c.paths[path] = source
	return true
}

func (c *destinationClaims) release(path, source string) {
	path = filepath.Clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paths[path] == source {
		delete(c.paths, path)
	}
}

// moveUnit relocates one file, stepping through versioned targets while the
// destination is occupied on disk or claimed by another file in the batch.
type moveUnit struct {
	runner    *Runner
	claims    *destinationClaims
	file      *fileepisode.FileEpisode
	sink      relocate.ProgressSink
	pruneRoot string
}

func (u *moveUnit) Label() string { return u.file.Path() }

func (u *moveUnit) Run(ctx context.Context) batch.Status {
	ctx = services.WithFile(ctx, u.file.Path())
	target, ok := u.file.Destination()
	if !ok {
		return batch.Failed
	}
	source := u.file.Path()
	fsys := u.runner.relocator.FS()
	u.file.CheckExists(fsys)

	started := time.Now()
	if !u.claims.claim(target.Path(), source) {
		next, ok := u.nextFree(fsys, target)
		if !ok {
			return u.exhausted(ctx, relocate.Result{Source: source, Destination: target.Path(), Target: target}, started)
		}
		logging.WithContext(ctx, u.runner.logger).Debug("destination claimed by another file; versioning",
			logging.String("destination", target.Path()),
			logging.String("versioned", next.Path()),
		)
		target = next
	}

	for {
		started = time.Now()
		result := u.runner.relocator.Move(ctx, relocate.Unit{
			Source:    source,
			Target:    target,
			Owner:     u.file,
			Sink:      u.sink,
			PruneRoot: u.pruneRoot,
		})
		u.runner.journal(ctx, result, started)
		if !result.Outcome.Placed() {
			u.claims.release(target.Path(), source)
		}
		if result.Outcome != relocate.Conflict {
			return statusFor(result.Outcome)
		}

		next, ok := u.nextFree(fsys, result.Target)
		if !ok {
			return u.exhausted(ctx, result, started)
		}
		target = next
	}
}

// nextFree returns the first versioned target after t that is free on disk
// and claimed for this file.
func (u *moveUnit) nextFree(fsys relocate.FS, t relocate.Target) (relocate.Target, bool) {
	for {
		next, ok := relocate.NextVersion(fsys, t)
		if !ok {
			return t, false
		}
		if u.claims.claim(next.Path(), u.file.Path()) {
			return next, true
		}
		t = next
	}
}

// exhausted fails the file once no versioned destination is left.
func (u *moveUnit) exhausted(ctx context.Context, last relocate.Result, started time.Time) batch.Status {
	result := relocate.Result{
		Outcome:     relocate.Failed,
		Source:      last.Source,
		Destination: last.Destination,
		Target:      last.Target,
		Err: services.Wrap(services.ErrConflict, "relocate", "version",
			"every versioned destination is taken", last.Err),
	}
	u.file.BeginMove()
	u.file.FinishMove(result)
	u.sink.OnComplete(false)
	u.runner.journal(ctx, result, started)
	return batch.Failed
}

func statusFor(outcome relocate.Outcome) batch.Status {
	switch {
	case outcome.Complete():
		return batch.Succeeded
	case outcome.Placed():
		return batch.Partial
	default:
		return batch.Failed
	}
}

// journal records a move outcome in the history store.
func (r *Runner) journal(ctx context.Context, result relocate.Result, started time.Time) {
	if r.store == nil {
		return
	}
	batchID, _ := services.BatchIDFromContext(ctx)
	move := history.Move{
		BatchID:     batchID,
		Source:      result.Source,
		Destination: result.Destination,
		Outcome:     result.Outcome.String(),
		Bytes:       result.Bytes,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if result.Err != nil {
		move.Error = result.Err.Error()
	}
	// The journal must outlive a cancelled unit.
	if _, err := r.store.RecordMove(context.WithoutCancel(ctx), move); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history write failed", "history_write_failed",
			logging.String(logging.FieldFile, result.Source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
			logging.String(logging.FieldImpact, "move is not listed in history"),
		)
	}
}
