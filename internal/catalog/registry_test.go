package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tvshelf/internal/catalog"
	"tvshelf/internal/episodes"
	"tvshelf/internal/logging"
	"tvshelf/internal/services"
	"tvshelf/internal/testsupport"
)

func pilot() episodes.Record {
	return episodes.Record{ID: "e1", Title: "Pilot", AirDate: "2004-09-22", Season: "1", Episode: "1"}
}

func newRegistry(fake *testsupport.FakeCatalog) *catalog.Registry {
	return catalog.NewRegistry(fake, episodes.NumberingGuess, logging.NewNop())
}

func TestLookupShowPrefersExactMatch(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("2", "Lost Girl")
	fake.AddShow("1", "Lost")
	reg := newRegistry(fake)

	result := reg.LookupShow(context.Background(), "Lost.")
	show, ok := result.Show()
	if !ok || show.ID != "1" {
		t.Fatalf("expected exact match, got %+v", result)
	}
	if result.Placeholder() != "" {
		t.Fatalf("found result should have no placeholder")
	}
}

func TestLookupShowSingleResultWins(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("7", "The Office (US)")
	reg := newRegistry(fake)

	show, ok := reg.LookupShow(context.Background(), "office").Show()
	if !ok || show.Name != "The Office (US)" {
		t.Fatalf("expected single result to win, got %v", show)
	}
}

func TestLookupShowAmbiguous(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("uk", "The Office (UK)")
	fake.AddShow("us", "The Office (US)")
	reg := newRegistry(fake)

	result := reg.LookupShow(context.Background(), "The.Office.")
	if result.IsFound() || result.Reason() != catalog.ReasonAmbiguous {
		t.Fatalf("expected ambiguous failure, got reason %s", result.Reason())
	}
	if len(result.Candidates()) != 2 {
		t.Fatalf("expected two candidates, got %d", len(result.Candidates()))
	}
	if !strings.Contains(result.Placeholder(), "ambiguous") {
		t.Fatalf("unexpected placeholder %q", result.Placeholder())
	}
}

func TestLookupShowNotFoundIsCached(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	reg := newRegistry(fake)

	for range 3 {
		result := reg.LookupShow(context.Background(), "nothing.here")
		if !result.IsNotFound() {
			t.Fatalf("expected not found")
		}
		if result.Placeholder() != "Nothing Here (not found)" {
			t.Fatalf("unexpected placeholder %q", result.Placeholder())
		}
	}
	if fake.Searches() != 1 {
		t.Fatalf("expected one search, got %d", fake.Searches())
	}
}

func TestLookupShowFailureKindsAreDistinct(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason catalog.Reason
		text   string
	}{
		{"timeout", catalog.TransientError(errors.New("slow"), true), catalog.ReasonTimeout, "timed out"},
		{"transient", errors.New("connection reset"), catalog.ReasonTransient, "unavailable"},
		{"unsupported", catalog.UnsupportedError(errors.New("gone")), catalog.ReasonUnsupported, "no longer supported"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := testsupport.NewFakeCatalog()
			fake.SearchErr = tc.err
			reg := newRegistry(fake)

			result := reg.LookupShow(context.Background(), "Lost")
			if result.Reason() != tc.reason {
				t.Fatalf("expected %s, got %s", tc.reason, result.Reason())
			}
			if !strings.Contains(result.Placeholder(), tc.text) {
				t.Fatalf("unexpected placeholder %q", result.Placeholder())
			}
			reg.LookupShow(context.Background(), "Lost")
			if fake.Searches() != 2 {
				t.Fatalf("failures must not be cached, got %d searches", fake.Searches())
			}
		})
	}
}

func TestFailureMarkers(t *testing.T) {
	if !errors.Is(catalog.NotFoundError(nil), services.ErrNotFound) {
		t.Fatal("not found should carry ErrNotFound")
	}
	if !errors.Is(catalog.TransientError(context.DeadlineExceeded, true), services.ErrTimeout) {
		t.Fatal("timeout should carry ErrTimeout")
	}
	failure, ok := catalog.AsFailure(context.DeadlineExceeded)
	if !ok || failure.Kind != catalog.FailureTransient || !failure.Timeout {
		t.Fatalf("unexpected classification %+v", failure)
	}
}

func TestDownloadListingsCoalescesConcurrentRequests(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("1", "Lost", pilot())
	fake.Gate = make(chan struct{})
	reg := newRegistry(fake)

	show, ok := reg.LookupShow(context.Background(), "Lost").Show()
	if !ok {
		t.Fatal("expected show")
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		calls int
	)
	for range 3 {
		wg.Add(1)
		reg.DownloadListings(context.Background(), show, func(result catalog.ListingsResult) {
			defer wg.Done()
			if result.Err != nil {
				t.Errorf("unexpected error: %v", result.Err)
			}
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}
	close(fake.Gate)
	wg.Wait()

	if calls != 3 {
		t.Fatalf("expected every listener notified once, got %d", calls)
	}
	if fake.Downloads() != 1 {
		t.Fatalf("expected one download, got %d", fake.Downloads())
	}

	late := false
	reg.DownloadListings(context.Background(), show, func(catalog.ListingsResult) { late = true })
	if !late {
		t.Fatal("late listener should be notified immediately")
	}
	if fake.Downloads() != 1 || !show.HasListings() {
		t.Fatal("late listener must not trigger a download")
	}
}

func TestFailedDownloadKeepsPreviousIndex(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("1", "Lost", pilot())
	reg := newRegistry(fake)
	ctx := context.Background()

	show, _ := reg.LookupShow(ctx, "Lost").Show()
	if result := reg.Listings(ctx, show); result.Err != nil {
		t.Fatalf("Listings: %v", result.Err)
	}
	previous := show.Index()

	reg.Forget(show.ID)
	fake.ListingsErr = catalog.TransientError(errors.New("reset"), false)
	result := reg.Listings(ctx, show)
	if result.Err == nil {
		t.Fatal("expected listings failure")
	}
	if show.Index() != previous {
		t.Fatal("failed download must keep the previous index")
	}
	if got := catalog.ListingsPlaceholder(show, result.Err); got != "Lost (listings unavailable)" {
		t.Fatalf("unexpected placeholder %q", got)
	}
}

func TestListingsHonoursContext(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("1", "Lost", pilot())
	fake.Gate = make(chan struct{})
	reg := newRegistry(fake)

	show, _ := reg.LookupShow(context.Background(), "Lost").Show()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	result := reg.Listings(ctx, show)
	if !errors.Is(result.Err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", result.Err)
	}
	close(fake.Gate)
}

func TestSharedDownloadSurvivesFirstCallerCancelling(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("1", "Lost", pilot())
	fake.Gate = make(chan struct{})
	reg := newRegistry(fake)
	show, _ := reg.LookupShow(context.Background(), "Lost").Show()

	results := make(chan catalog.ListingsResult, 2)
	ctx, cancel := context.WithCancel(context.Background())
	reg.DownloadListings(ctx, show, func(result catalog.ListingsResult) { results <- result })
	reg.DownloadListings(context.Background(), show, func(result catalog.ListingsResult) { results <- result })
	cancel()
	close(fake.Gate)

	for range 2 {
		if result := <-results; result.Err != nil {
			t.Fatalf("cancelling the first caller must not fail the shared download: %v", result.Err)
		}
	}
	if !show.HasListings() || fake.Downloads() != 1 {
		t.Fatalf("expected one successful download, got %d", fake.Downloads())
	}
}

func TestRegistriesAreIndependentAndClearable(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.AddShow("1", "Lost")
	first := newRegistry(fake)
	second := newRegistry(fake)
	ctx := context.Background()

	a, _ := first.LookupShow(ctx, "Lost").Show()
	b, _ := second.LookupShow(ctx, "Lost").Show()
	if a == b {
		t.Fatal("registries must not share show instances")
	}
	if fake.Searches() != 2 {
		t.Fatalf("expected two searches, got %d", fake.Searches())
	}

	first.Clear()
	again, _ := first.LookupShow(ctx, "Lost").Show()
	if again == a {
		t.Fatal("Clear should drop shows by id")
	}
	if fake.Searches() != 3 {
		t.Fatalf("expected search after Clear, got %d", fake.Searches())
	}
}
