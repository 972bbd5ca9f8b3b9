package testsupport

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"tvshelf/internal/catalog"
	"tvshelf/internal/episodes"
	"tvshelf/internal/textutil"
)

// FakeCatalog is an in-memory catalog.Client that counts calls. Set the
// error fields to inject failures and Gate to hold FetchListings until the
// channel is closed.
type FakeCatalog struct {
	mu       sync.Mutex
	shows    []catalog.ShowSummary
	listings map[string][]episodes.Record

	SearchErr   error
	ListingsErr error
	Gate        chan struct{}

	searches  atomic.Int64
	downloads atomic.Int64
}

// NewFakeCatalog creates an empty fake.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{listings: make(map[string][]episodes.Record)}
}

// AddShow registers a show and its listings.
func (f *FakeCatalog) AddShow(id, name string, records ...episodes.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows = append(f.shows, catalog.ShowSummary{ID: id, Name: name})
	f.listings[id] = records
}

// SearchShow returns every show whose normalized name contains query.
func (f *FakeCatalog) SearchShow(ctx context.Context, query string) ([]catalog.ShowSummary, error) {
	f.searches.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, catalog.TransientError(err, true)
	}
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.ShowSummary
	for _, show := range f.shows {
		if containsQuery(show.Name, query) {
			out = append(out, show)
		}
	}
	return out, nil
}

// FetchListings returns the registered records for showID.
func (f *FakeCatalog) FetchListings(ctx context.Context, showID string) ([]episodes.Record, error) {
	f.downloads.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, catalog.TransientError(ctx.Err(), true)
		}
	}
	if f.ListingsErr != nil {
		return nil, f.ListingsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	records, ok := f.listings[showID]
	if !ok {
		return nil, catalog.NotFoundError(nil)
	}
	return append([]episodes.Record(nil), records...), nil
}

// Searches returns the number of SearchShow calls.
func (f *FakeCatalog) Searches() int { return int(f.searches.Load()) }

// Downloads returns the number of FetchListings calls.
func (f *FakeCatalog) Downloads() int { return int(f.downloads.Load()) }

func containsQuery(name, query string) bool {
	return strings.Contains(textutil.QueryString(name), query)
}
