package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tvshelf/internal/fileepisode"
	"tvshelf/internal/logging"
	"tvshelf/internal/services"
)

// ResolveSummary counts the files of one Resolve call by outcome.
type ResolveSummary struct {
	Files      int
	Shows      int
	Resolved   int
	Unresolved int
	Skipped    int
}

// Resolve looks up the show for each distinct query among files, downloads
// each show's listings once and resolves every file against them. Ignored
// and unparsed files are skipped.
func (r *Runner) Resolve(ctx context.Context, files []*fileepisode.FileEpisode) ResolveSummary {
	ctx = services.WithStage(ctx, "resolve")
	logger := logging.WithContext(ctx, r.logger)
	summary := ResolveSummary{Files: len(files)}

	groups := make(map[string][]*fileepisode.FileEpisode)
	var order []string
	for _, f := range files {
		if f.IgnoreReason() != "" || f.ParseState() != fileepisode.Parsed || f.Query() == "" {
			summary.Skipped++
			continue
		}
		query := f.Query()
		if _, ok := groups[query]; !ok {
			order = append(order, query)
		}
		groups[query] = append(groups[query], f)
	}

	var g errgroup.Group
	g.SetLimit(max(r.batch.Workers, 1))
	for _, query := range order {
		group := groups[query]
		g.Go(func() error {
			r.resolveGroup(ctx, query, group)
			return nil
		})
	}
	_ = g.Wait()

	shows := make(map[string]struct{})
	for _, query := range order {
		for _, f := range groups[query] {
			if show := f.Show(); show != nil {
				shows[show.ID] = struct{}{}
			}
			if f.CatalogState() == fileepisode.GotListings {
				summary.Resolved++
			} else {
				summary.Unresolved++
			}
		}
	}
	summary.Shows = len(shows)

	logger.Info("resolution complete",
		logging.Int("files", summary.Files),
		logging.Int("queries", len(order)),
		logging.Int("shows", summary.Shows),
		logging.Int("resolved", summary.Resolved),
		logging.Int("unresolved", summary.Unresolved),
		logging.Int("skipped", summary.Skipped),
	)
	return summary
}

func (r *Runner) resolveGroup(ctx context.Context, query string, files []*fileepisode.FileEpisode) {
	result := r.registry.LookupShow(ctx, query)
	for _, f := range files {
		f.SetEpisodeShow(result)
	}
	show, ok := result.Show()
	if !ok {
		r.logger.Debug("show unresolved",
			logging.String("query", query),
			logging.String("placeholder", result.Placeholder()),
		)
		return
	}

	listings := r.registry.Listings(ctx, show)
	if listings.Err != nil {
		for _, f := range files {
			f.ListingsFailed(listings.Err)
		}
		return
	}
	pref := show.Index().Preference()
	for _, f := range files {
		if f.ResolveListings(pref) == 0 {
			r.logger.Debug("no matching episode",
				logging.String(logging.FieldFile, f.Path()),
				logging.String(logging.FieldShow, show.Name),
				logging.String(logging.FieldPlacement, f.Placement().String()),
			)
		}
	}
}
