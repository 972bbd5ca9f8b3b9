package testsupport

import (
	"context"
	"strings"
	"testing"

	"tvshelf/internal/config"
	"tvshelf/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustImportListings loads a TOML listing document into the store's catalog.
func MustImportListings(t testing.TB, store *history.Store, listing string) history.ImportReport {
	t.Helper()

	report, err := history.ImportListings(context.Background(), store, strings.NewReader(listing))
	if err != nil {
		t.Fatalf("history.ImportListings: %v", err)
	}
	return report
}
