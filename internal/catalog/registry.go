package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tvshelf/internal/episodes"
	"tvshelf/internal/logging"
	"tvshelf/internal/textutil"
)

// listingsTimeout bounds one shared listings download.
const listingsTimeout = 2 * time.Minute

// ListingsResult is delivered to listeners once a show's listings download
// finishes. Err is nil on success.
type ListingsResult struct {
	Show   *episodes.Show
	Report episodes.AddReport
	Err    error
}

// ListingsListener receives a download outcome exactly once.
type ListingsListener func(ListingsResult)

type download struct {
	done      bool
	result    ListingsResult
	listeners []ListingsListener
}

// Registry caches shows by query and by id and coordinates listings
// downloads. The zero value is not usable; use NewRegistry.
type Registry struct {
	client Client
	logger *slog.Logger
	group  singleflight.Group

	mu        sync.Mutex
	numbering episodes.Numbering
	byQuery   map[string]ShowResult
	byID      map[string]*episodes.Show
	downloads map[string]*download
}

// NewRegistry creates an empty registry backed by client.
func NewRegistry(client Client, numbering episodes.Numbering, logger *slog.Logger) *Registry {
	return &Registry{
		client:    client,
		logger:    logging.NewComponentLogger(logger, "catalog"),
		numbering: numbering,
		byQuery:   make(map[string]ShowResult),
		byID:      make(map[string]*episodes.Show),
		downloads: make(map[string]*download),
	}
}

// LookupShow resolves a show fragment or query to a catalog show. Concurrent
// lookups for the same normalized query share one search. Found and
// NotFound outcomes are cached; failures are not, so a later call retries.
func (r *Registry) LookupShow(ctx context.Context, fragment string) ShowResult {
	query := textutil.QueryString(fragment)
	if query == "" {
		return NotFound(query)
	}

	r.mu.Lock()
	cached, ok := r.byQuery[query]
	r.mu.Unlock()
	if ok {
		return cached
	}

	value, _, _ := r.group.Do(query, func() (any, error) {
		return r.search(ctx, query), nil
	})
	return value.(ShowResult)
}

func (r *Registry) search(ctx context.Context, query string) ShowResult {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("query", query))

	results, err := r.client.SearchShow(ctx, query)
	if err != nil {
		result := failedFrom(query, err)
		if result.IsNotFound() {
			r.remember(query, result)
			logger.Info("show not found in catalog")
			return result
		}
		logging.WarnWithContext(logger, "show lookup failed", "catalog_lookup_failed",
			logging.Error(err),
			logging.String("reason", result.Reason().String()),
			logging.String(logging.FieldErrorHint, "check catalog availability and retry"),
			logging.String(logging.FieldImpact, "files for this show cannot be renamed"),
		)
		return result
	}

	picked := selectShow(query, results)
	if !picked.matched {
		if len(picked.candidates) == 0 {
			result := NotFound(query)
			r.remember(query, result)
			logger.Info("show not found in catalog")
			return result
		}
		result := Failed(query, ReasonAmbiguous, nil, picked.candidates...)
		r.remember(query, result)
		logging.WarnWithContext(logger, "show lookup ambiguous", "catalog_lookup_ambiguous",
			logging.Int("candidates", len(picked.candidates)),
			logging.String("best_candidate", picked.candidates[0].Name),
			logging.String(logging.FieldErrorHint, "rename the file or folder to the exact show title"),
			logging.String(logging.FieldImpact, "files for this show cannot be renamed"),
		)
		return result
	}

	r.mu.Lock()
	show, ok := r.byID[picked.match.ID]
	if !ok {
		show = episodes.NewShow(picked.match.ID, picked.match.Name)
		r.byID[show.ID] = show
	}
	result := Found(query, show)
	r.byQuery[query] = result
	r.mu.Unlock()

	logger.Debug("show matched",
		logging.String(logging.FieldShow, show.Name),
		logging.String("show_id", show.ID),
	)
	return result
}

func (r *Registry) remember(query string, result ShowResult) {
	r.mu.Lock()
	r.byQuery[query] = result
	r.mu.Unlock()
}

// DownloadListings ensures show's listings are downloaded and arranges for
// listener to receive the outcome. The first caller for a show starts the
// download in the background; callers arriving while it runs are queued and
// notified once; later callers are notified immediately with the cached
// outcome. The listener never runs with the registry lock held.
func (r *Registry) DownloadListings(ctx context.Context, show *episodes.Show, listener ListingsListener) {
	if listener == nil {
		listener = func(ListingsResult) {}
	}

	r.mu.Lock()
	d, ok := r.downloads[show.ID]
	if ok && d.done {
		result := d.result
		r.mu.Unlock()
		listener(result)
		return
	}
	if ok {
		d.listeners = append(d.listeners, listener)
		r.mu.Unlock()
		return
	}
	d = &download{listeners: []ListingsListener{listener}}
	r.downloads[show.ID] = d
	numbering := r.numbering
	r.mu.Unlock()

	// Shared by every waiter; cancelling the first caller does not stop it.
	go r.fetch(context.WithoutCancel(ctx), show, d, numbering)
}

// Listings blocks until show's listings are available or ctx ends.
func (r *Registry) Listings(ctx context.Context, show *episodes.Show) ListingsResult {
	ch := make(chan ListingsResult, 1)
	r.DownloadListings(ctx, show, func(result ListingsResult) {
		ch <- result
	})
	select {
	case result := <-ch:
		return result
	case <-ctx.Done():
		return ListingsResult{Show: show, Err: TransientError(ctx.Err(), true)}
	}
}

func (r *Registry) fetch(ctx context.Context, show *episodes.Show, d *download, numbering episodes.Numbering) {
	ctx, cancel := context.WithTimeout(ctx, listingsTimeout)
	defer cancel()
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldShow, show.Name),
		logging.String("show_id", show.ID),
	)

	result := ListingsResult{Show: show}
	records, err := r.client.FetchListings(ctx, show.ID)
	if err != nil {
		failure, _ := AsFailure(err)
		result.Err = failure
		logging.WarnWithContext(logger, "listings download failed", "catalog_listings_failed",
			logging.Error(err),
			logging.String("kind", failure.Kind.String()),
			logging.Bool("timeout", failure.Timeout),
			logging.String(logging.FieldErrorHint, "check catalog availability and retry"),
			logging.String(logging.FieldImpact, "previous listings kept; files stay unresolved"),
		)
	} else {
		result.Report, result.Err = show.AddEpisodes(records, numbering, r.logger)
		if result.Err == nil {
			logger.Info("listings downloaded",
				logging.Int("episodes", result.Report.Added),
				logging.String("numbering", result.Report.Preference.String()),
			)
		}
	}

	r.mu.Lock()
	d.done = true
	d.result = result
	listeners := d.listeners
	d.listeners = nil
	r.mu.Unlock()

	for _, listener := range listeners {
		listener(result)
	}
}

// SetNumbering changes the ordering preference for future downloads and
// forgets completed downloads so the next request rebuilds each index.
func (r *Registry) SetNumbering(numbering episodes.Numbering) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numbering == numbering {
		return
	}
	r.numbering = numbering
	for id, d := range r.downloads {
		if d.done {
			delete(r.downloads, id)
		}
	}
}

// Forget drops the cached download outcome for one show so the next request
// downloads again. An in-flight download is left alone.
func (r *Registry) Forget(showID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.downloads[showID]; ok && d.done {
		delete(r.downloads, showID)
	}
}

// Clear empties every cache. Downloads already running still notify their
// own listeners.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byQuery = make(map[string]ShowResult)
	r.byID = make(map[string]*episodes.Show)
	r.downloads = make(map[string]*download)
}
