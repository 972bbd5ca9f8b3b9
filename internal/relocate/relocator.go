package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"tvshelf/internal/logging"
	"tvshelf/internal/services"
)

const defaultChunkSize = 4 << 20

// Owner is notified when its move starts and finishes. fileepisode.FileEpisode
// implements it to track move state.
type Owner interface {
	BeginMove()
	FinishMove(Result)
}

// Unit is one file relocation.
type Unit struct {
	Source string
	Target Target
	Owner  Owner
	Sink   ProgressSink
	// PruneRoot enables removal of directories emptied by the move. Pruning
	// walks up from the source directory and never removes PruneRoot itself
	// or anything above it. Empty disables pruning.
	PruneRoot string
}

// Options tune a Relocator.
type Options struct {
	ChunkSize   int
	TouchOnMove bool
}

// Relocator performs single moves.
type Relocator struct {
	fs          FS
	chunkSize   int
	touchOnMove bool
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Relocator. A nil fs uses the local filesystem.
func New(fsys FS, opts Options, logger *slog.Logger) *Relocator {
	if fsys == nil {
		fsys = OSFS{}
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	return &Relocator{
		fs:          fsys,
		chunkSize:   chunk,
		touchOnMove: opts.TouchOnMove,
		logger:      logging.NewComponentLogger(logger, "relocator"),
		now:         time.Now,
	}
}

// FS returns the filesystem provider.
func (r *Relocator) FS() FS { return r.fs }

// Move relocates unit.Source to unit.Target. The result is also delivered to
// unit.Owner and summarized on unit.Sink.
func (r *Relocator) Move(ctx context.Context, unit Unit) Result {
	sink := unit.Sink
	if sink == nil {
		sink = NopSink{}
	}
	if unit.Owner != nil {
		unit.Owner.BeginMove()
	}
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldFile, unit.Source))

	result := r.move(ctx, logger, unit, sink)

	if unit.Owner != nil {
		unit.Owner.FinishMove(result)
	}
	sink.OnComplete(result.Outcome.Complete())

	attrs := []logging.Attr{
		logging.String("destination", result.Destination),
		logging.String("outcome", result.Outcome.String()),
		logging.Int64("bytes", result.Bytes),
	}
	switch {
	case result.Outcome.Complete():
		logger.Info("file relocated", logging.Args(attrs...)...)
	case result.Outcome == Conflict:
		logger.Info("destination occupied", logging.Args(attrs...)...)
	default:
		attrs = append(attrs,
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, hintFor(result.Outcome)),
			logging.String(logging.FieldImpact, impactFor(result.Outcome)),
		)
		logging.WarnWithContext(logger, "relocation incomplete", "relocate_"+result.Outcome.String(), attrs...)
	}
	return result
}

func (r *Relocator) move(ctx context.Context, logger *slog.Logger, unit Unit, sink ProgressSink) Result {
	src := filepath.Clean(unit.Source)
	dest := filepath.Clean(unit.Target.Path())
	result := Result{Source: src, Destination: dest, Target: unit.Target}

	if !r.fs.Exists(src) {
		result.Outcome = Missing
		result.Err = services.Wrap(services.ErrNotFound, "relocate", "check source", "source no longer exists", nil)
		sink.OnStatus("source missing")
		return result
	}
	if src == dest {
		result.Outcome = AlreadyInPlace
		sink.OnStatus("already in place")
		return result
	}
	if err := ctx.Err(); err != nil {
		return cancelled(result, err)
	}

	if err := r.fs.MkdirAll(filepath.Dir(dest)); err != nil {
		result.Outcome = Failed
		result.Err = services.Wrap(services.ErrIO, "relocate", "create directory", filepath.Dir(dest), err)
		sink.OnStatus("cannot create destination directory")
		return result
	}

	if r.fs.Exists(dest) {
		if r.fs.SameFile(src, dest) {
			result.Outcome = AlreadyInPlace
			sink.OnStatus("already in place")
			return result
		}
		return occupied(result, sink, "check destination", nil)
	}

	size, err := r.fs.Size(src)
	if err != nil {
		result.Outcome = Failed
		result.Err = services.Wrap(services.ErrIO, "relocate", "stat source", src, err)
		return result
	}

	sameVolume, err := r.fs.SameVolume(src, dest)
	if err != nil {
		logger.Debug("volume check failed; copying", logging.Error(err))
	}
	if sameVolume {
		sink.OnStatus("renaming")
		if err := r.fs.Rename(src, dest); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return occupied(result, sink, "rename", err)
			}
			result.Outcome = Failed
			result.Err = services.Wrap(services.ErrIO, "relocate", "rename", dest, err)
			sink.OnStatus("rename failed")
			return result
		}
		sink.OnProgress(size, size)
		result.Outcome = Renamed
		result.Bytes = size
	} else {
		sink.OnStatus("copying")
		written, err := r.copy(ctx, logger, src, dest, size, sink)
		result.Bytes = written
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return cancelled(result, ctxErr)
			}
			if errors.Is(err, fs.ErrExist) {
				return occupied(result, sink, "create destination", err)
			}
			result.Outcome = Failed
			result.Err = services.Wrap(services.ErrIO, "relocate", "copy", dest, err)
			sink.OnStatus("copy failed")
			return result
		}
		if err := r.fs.Remove(src); err != nil {
			result.Outcome = CopiedNotCleaned
			result.Err = services.Wrap(services.ErrIO, "relocate", "remove source", src, err)
			sink.OnStatus("copied; source not removed")
		} else {
			result.Outcome = Copied
		}
	}

	if r.touchOnMove {
		if err := r.fs.Chtimes(dest, r.now()); err != nil {
			logger.Debug("failed to update modification time", logging.Error(err))
		}
	}
	if result.Outcome.Complete() && unit.PruneRoot != "" {
		r.pruneEmptyDirs(logger, filepath.Dir(src), unit.PruneRoot)
	}
	sink.OnStatus(result.Outcome.String())
	return result
}

// copy streams src to dest in chunks, checking ctx between chunks. A partial
// destination is removed on failure or cancellation.
func (r *Relocator) copy(ctx context.Context, logger *slog.Logger, src, dest string, size int64, sink ProgressSink) (int64, error) {
	in, err := r.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := r.fs.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	sampler := logging.NewProgressSampler(10)
	buf := make([]byte, r.chunkSize)
	var written int64
	fail := func(cause error) (int64, error) {
		_ = out.Close()
		if rmErr := r.fs.Remove(dest); rmErr != nil {
			logger.Debug("failed to remove partial copy", logging.String("destination", dest), logging.Error(rmErr))
		}
		return written, cause
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fail(fmt.Errorf("write destination: %w", err))
			}
			written += int64(n)
			sink.OnProgress(written, size)
			if sampler.ShouldLog(written, size) {
				logger.Debug("copy progress", logging.Int64("copied", written), logging.Int64("total", size))
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("read source: %w", readErr))
		}
	}
	if err := out.Close(); err != nil {
		return fail(fmt.Errorf("close destination: %w", err))
	}
	if written != size {
		return fail(fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", size, written))
	}
	return written, nil
}

// pruneEmptyDirs removes dir and its ancestors while they are empty,
// stopping at the first non-empty directory or at root.
func (r *Relocator) pruneEmptyDirs(logger *slog.Logger, dir, root string) {
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !within(root, dir) {
			return
		}
		names, err := r.fs.ReadDir(dir)
		if err != nil || len(names) > 0 {
			return
		}
		if err := r.fs.Remove(dir); err != nil {
			logger.Debug("failed to remove empty directory", logging.String("dir", dir), logging.Error(err))
			return
		}
		logger.Debug("removed empty directory", logging.String("dir", dir))
		dir = filepath.Dir(dir)
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// occupied reports a destination that another file already holds. The
// destination is never replaced.
func occupied(result Result, sink ProgressSink, op string, cause error) Result {
	result.Outcome = Conflict
	result.Bytes = 0
	result.Err = services.Wrap(services.ErrConflict, "relocate", op, result.Destination, cause)
	sink.OnStatus("destination occupied")
	return result
}

func cancelled(result Result, cause error) Result {
	result.Outcome = Cancelled
	marker := services.ErrIO
	if errors.Is(cause, context.DeadlineExceeded) {
		marker = services.ErrTimeout
	}
	result.Err = services.Wrap(marker, "relocate", "move", "cancelled", cause)
	return result
}

func hintFor(outcome Outcome) string {
	switch outcome {
	case Missing:
		return "the file was moved or deleted before relocation started"
	case CopiedNotCleaned:
		return "delete the source file manually"
	case Cancelled:
		return "raise relocation.unit_timeout_seconds for large cross-volume copies"
	default:
		return "check permissions and free space on the destination volume"
	}
}

func impactFor(outcome Outcome) string {
	if outcome == CopiedNotCleaned {
		return "file exists at both source and destination"
	}
	return "file left at its original location"
}
