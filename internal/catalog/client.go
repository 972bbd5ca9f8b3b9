package catalog

import (
	"context"

	"tvshelf/internal/episodes"
)

// ShowSummary is one search hit.
type ShowSummary struct {
	ID   string
	Name string
}

// Client is the catalog collaborator. Implementations should return
// *Failure errors so callers can tell not-found, transient and unsupported
// failures apart; other errors are treated as transient.
type Client interface {
	SearchShow(ctx context.Context, query string) ([]ShowSummary, error)
	FetchListings(ctx context.Context, showID string) ([]episodes.Record, error)
}
