package history_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tvshelf/internal/catalog"
	"tvshelf/internal/episodes"
	"tvshelf/internal/history"
	"tvshelf/internal/services"
	"tvshelf/internal/testsupport"
)

const sampleListing = `
[[show]]
id = "81189"
name = "Breaking Bad"

  [[show.episode]]
  id = "349232"
  title = "Pilot"
  air_date = 2008-01-20
  season = 1
  episode = 1
  dvd_season = 1
  dvd_episode = 1

  [[show.episode]]
  id = "349235"
  title = "Cat's in the Bag..."
  air_date = "2008-01-27"
  season = "1"
  episode = "2"
  dvd_episode = 2.0

[[show]]
id = "75760"
name = "How I Met Your Mother"
`

func TestImportListingsFeedsLocalCatalog(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	report := testsupport.MustImportListings(t, store, sampleListing)
	if report.Shows != 2 || report.Episodes != 2 {
		t.Fatalf("unexpected import report %+v", report)
	}

	ctx := context.Background()
	client := history.NewLocalCatalog(store)

	hits, err := client.SearchShow(ctx, "breaking.bad")
	if err != nil {
		t.Fatalf("SearchShow failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "81189" || hits[0].Name != "Breaking Bad" {
		t.Fatalf("unexpected search hits %+v", hits)
	}

	records, err := client.FetchListings(ctx, "81189")
	if err != nil {
		t.Fatalf("FetchListings failed: %v", err)
	}
	want := []episodes.Record{
		{ID: "349232", Title: "Pilot", AirDate: "2008-01-20", Season: "1", Episode: "1", DiscSeason: "1", DiscEpisode: "1"},
		{ID: "349235", Title: "Cat's in the Bag...", AirDate: "2008-01-27", Season: "1", Episode: "2", DiscEpisode: "2"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %+v", len(want), records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want[i], records[i])
		}
	}

	empty, err := client.FetchListings(ctx, "75760")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty listing without error, got %v %v", empty, err)
	}
}

func TestImportReplacesPreviousListing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustImportListings(t, store, sampleListing)
	testsupport.MustImportListings(t, store, `
[[show]]
id = "81189"
name = "Breaking Bad (2008)"
  [[show.episode]]
  id = "1"
  season = 2
  episode = 1
`)

	ctx := context.Background()
	client := history.NewLocalCatalog(store)
	records, err := client.FetchListings(ctx, "81189")
	if err != nil || len(records) != 1 || records[0].ID != "1" {
		t.Fatalf("expected replaced listing, got %+v %v", records, err)
	}
	count, err := store.ShowCount(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 shows, got %d %v", count, err)
	}
}

func TestImportRejectsIncompleteShow(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := history.ImportListings(context.Background(), store, strings.NewReader("[[show]]\nid = \"1\"\n"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	count, _ := store.ShowCount(context.Background())
	if count != 0 {
		t.Fatalf("expected nothing imported, got %d shows", count)
	}
}

func TestLocalCatalogUnknownShowIsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := history.NewLocalCatalog(store).FetchListings(context.Background(), "missing")
	failure, ok := catalog.AsFailure(err)
	if !ok || failure.Kind != catalog.FailureNotFound {
		t.Fatalf("expected not-found failure, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
}

func TestLocalCatalogClosedStoreIsTransient(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	store.Close()
	_, err := history.NewLocalCatalog(store).SearchShow(context.Background(), "anything")
	failure, ok := catalog.AsFailure(err)
	if err == nil || !ok || failure.Kind != catalog.FailureTransient {
		t.Fatalf("expected transient failure, got %v", err)
	}
}

func TestLocalCatalogWithRegistry(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustImportListings(t, store, sampleListing)

	registry := catalog.NewRegistry(history.NewLocalCatalog(store), episodes.NumberingGuess, nil)
	result := registry.LookupShow(context.Background(), "breaking bad")
	show, ok := result.Show()
	if !ok {
		t.Fatalf("expected show found, got %s", result.Placeholder())
	}
	listings := registry.Listings(context.Background(), show)
	if listings.Err != nil || listings.Report.Added != 2 {
		t.Fatalf("unexpected listings result %+v", listings)
	}
	eps, ok := show.Index().Lookup(episodes.Placement{Season: 1, Episode: 2}, show.Index().Preference())
	if !ok || len(eps) == 0 || eps[0].Title() != "Cat's in the Bag..." {
		t.Fatalf("unexpected lookup %v %v", eps, ok)
	}
}
