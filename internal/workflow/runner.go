package workflow

import (
	"context"
	"log/slog"
	"sync"

	"tvshelf/internal/batch"
	"tvshelf/internal/catalog"
	"tvshelf/internal/config"
	"tvshelf/internal/episodes"
	"tvshelf/internal/fileepisode"
	"tvshelf/internal/history"
	"tvshelf/internal/logging"
	"tvshelf/internal/relocate"
)

// Runner coordinates scanning, resolution and relocation.
type Runner struct {
	cfg       *config.Config
	watchers  *config.Watchers
	registry  *catalog.Registry
	relocator *relocate.Relocator
	batch     *batch.Runner
	store     *history.Store
	logger    *slog.Logger

	mu      sync.Mutex
	tracked []*fileepisode.FileEpisode
	roots   map[*fileepisode.FileEpisode]string
}

// Option configures optional Runner behavior.
type Option func(*runnerOptions)

type runnerOptions struct {
	fs relocate.FS
}

// WithFS replaces the local filesystem used by the relocator.
func WithFS(fsys relocate.FS) Option {
	return func(o *runnerOptions) {
		o.fs = fsys
	}
}

// New constructs a Runner. store may be nil, in which case outcomes are
// only logged.
func New(cfg *config.Config, client catalog.Client, store *history.Store, logger *slog.Logger, opts ...Option) *Runner {
	options := &runnerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	prefs := cfg.Preferences()
	r := &Runner{
		cfg:      cfg,
		watchers: config.NewWatchers(prefs),
		registry: catalog.NewRegistry(client, episodes.ParseNumbering(prefs.Numbering), logger),
		relocator: relocate.New(options.fs, relocate.Options{
			ChunkSize:   cfg.Relocation.CopyChunkBytes,
			TouchOnMove: cfg.Relocation.TouchOnMove,
		}, logger),
		batch: &batch.Runner{
			Workers:     cfg.Relocation.Workers,
			UnitTimeout: cfg.UnitTimeout(),
			DrainOrder:  batch.ParseDrainOrder(cfg.Relocation.DrainOrder),
			Logger:      logger,
		},
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow"),
		roots:  make(map[*fileepisode.FileEpisode]string),
	}
	r.watchers.Subscribe(r.handleChange)
	return r
}

// Watchers exposes the preference publisher. Call Update on it to change
// naming or numbering preferences for tracked files.
func (r *Runner) Watchers() *config.Watchers { return r.watchers }

// Registry exposes the catalog registry.
func (r *Runner) Registry() *catalog.Registry { return r.registry }

// Preferences returns the active preferences.
func (r *Runner) Preferences() config.Preferences { return r.watchers.Current() }

// Tracked returns the files produced by Scan, in scan order.
func (r *Runner) Tracked() []*fileepisode.FileEpisode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*fileepisode.FileEpisode(nil), r.tracked...)
}

func (r *Runner) track(files []*fileepisode.FileEpisode, roots []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range files {
		if _, ok := r.roots[f]; ok {
			continue
		}
		r.roots[f] = roots[i]
		r.tracked = append(r.tracked, f)
	}
}

func (r *Runner) rootFor(f *fileepisode.FileEpisode) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roots[f]
}

// handleChange applies one preference change to every tracked file.
func (r *Runner) handleChange(change config.PreferenceChange) {
	files := r.Tracked()
	logger := r.logger.With(
		logging.String("field", string(change.Field)),
		logging.String("old", change.Old),
		logging.String("new", change.New),
	)

	if change.AffectsLookup() {
		r.registry.SetNumbering(episodes.ParseNumbering(change.New))
		logger.Info("numbering preference changed; re-resolving", logging.Int("files", len(files)))
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.UnitTimeout())
		defer cancel()
		r.Resolve(ctx, files)
		return
	}

	prefs := r.watchers.Current()
	for _, f := range files {
		f.SetPreferences(prefs)
	}
	if change.AffectsDestination() {
		logger.Info("naming preference changed; destinations rebuilt", logging.Int("files", len(files)))
	} else {
		logger.Debug("preference changed")
	}
}
