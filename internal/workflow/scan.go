package workflow

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tvshelf/internal/fileepisode"
	"tvshelf/internal/filename"
	"tvshelf/internal/logging"
	"tvshelf/internal/services"
)

// Scan turns input paths into tracked FileEpisodes. Directories are walked
// recursively, skipping hidden directories; only video files are kept.
// Files matching an ignore keyword are returned with their ignore reason
// set so callers can report them.
func (r *Runner) Scan(paths []string) ([]*fileepisode.FileEpisode, error) {
	prefs := r.watchers.Current()
	seen := make(map[string]struct{})
	var (
		files []*fileepisode.FileEpisode
		roots []string
	)
	add := func(path, root string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		if _, dup := seen[abs]; dup {
			return nil
		}
		seen[abs] = struct{}{}
		fe, err := fileepisode.New(abs, prefs)
		if err != nil {
			return err
		}
		if reason := fe.IgnoreReason(); reason != "" {
			r.logger.Debug("file ignored", logging.String(logging.FieldFile, abs), logging.String("reason", reason))
		}
		files = append(files, fe)
		roots = append(roots, root)
		return nil
	}

	for _, input := range paths {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		info, err := os.Stat(input)
		if err != nil {
			return nil, services.Wrap(services.ErrNotFound, "workflow", "scan", input, err)
		}
		if !info.IsDir() {
			if !filename.IsVideo(input) {
				r.logger.Debug("skipping non-video file", logging.String(logging.FieldFile, input))
				continue
			}
			if err := add(input, filepath.Dir(input)); err != nil {
				return nil, err
			}
			continue
		}
		root, err := filepath.Abs(input)
		if err != nil {
			root = filepath.Clean(input)
		}
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				r.logger.Debug("scan entry unreadable", logging.String(logging.FieldFile, path), logging.Error(err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !filename.IsVideo(path) {
				return nil
			}
			return add(path, root)
		})
		if walkErr != nil {
			return nil, services.Wrap(services.ErrIO, "workflow", "scan", root, walkErr)
		}
	}

	r.track(files, roots)
	r.logger.Info("scan complete", logging.Int("files", len(files)), logging.Int("inputs", len(paths)))
	return files, nil
}
