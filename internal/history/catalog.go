package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tvshelf/internal/catalog"
	"tvshelf/internal/episodes"
	"tvshelf/internal/textutil"
)

// ShowListing is a show together with its full episode listing.
type ShowListing struct {
	ID       string
	Name     string
	Episodes []episodes.Record
}

// ReplaceShow stores a show and replaces any listing previously imported for it.
func (s *Store) ReplaceShow(ctx context.Context, listing ShowListing) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceShowTx(ctx, tx, listing)
	})
}

func replaceShowTx(ctx context.Context, tx *sql.Tx, listing ShowListing) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO shows (id, name, search_name, imported_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET name = excluded.name,
             search_name = excluded.search_name, imported_at = excluded.imported_at`,
		listing.ID, listing.Name, textutil.QueryString(listing.Name), formatTime(timeNow()),
	); err != nil {
		return fmt.Errorf("upsert show %s: %w", listing.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM episodes WHERE show_id = ?`, listing.ID); err != nil {
		return fmt.Errorf("clear episodes for %s: %w", listing.ID, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO episodes (
            show_id, position, episode_id, title, air_date,
            season, episode, dvd_season, dvd_episode
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare episode insert: %w", err)
	}
	defer stmt.Close()
	for i, rec := range listing.Episodes {
		if _, err := stmt.ExecContext(ctx,
			listing.ID, i, rec.ID,
			nullableString(rec.Title), nullableString(rec.AirDate),
			nullableString(rec.Season), nullableString(rec.Episode),
			nullableString(rec.DiscSeason), nullableString(rec.DiscEpisode),
		); err != nil {
			return fmt.Errorf("insert episode %s of %s: %w", rec.ID, listing.ID, err)
		}
	}
	return nil
}

// ShowCount reports how many shows the local catalog holds.
func (s *Store) ShowCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM shows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return count, nil
}

// LocalCatalog serves show searches and listings from the store's catalog
// tables.
type LocalCatalog struct {
	store *Store
}

// NewLocalCatalog returns a catalog.Client backed by store.
func NewLocalCatalog(store *Store) *LocalCatalog {
	return &LocalCatalog{store: store}
}

var _ catalog.Client = (*LocalCatalog)(nil)

// SearchShow returns every show whose normalized name contains the
// normalized query.
func (c *LocalCatalog) SearchShow(ctx context.Context, query string) ([]catalog.ShowSummary, error) {
	needle := textutil.QueryString(query)
	if needle == "" {
		return nil, nil
	}
	rows, err := c.store.db.QueryContext(ensureContext(ctx),
		`SELECT id, name FROM shows WHERE search_name LIKE '%' || ? || '%' ORDER BY name, id`, needle)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var results []catalog.ShowSummary
	for rows.Next() {
		var summary catalog.ShowSummary
		if err := rows.Scan(&summary.ID, &summary.Name); err != nil {
			return nil, classify(err)
		}
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return results, nil
}

// FetchListings returns the imported listing of showID in import order.
func (c *LocalCatalog) FetchListings(ctx context.Context, showID string) ([]episodes.Record, error) {
	ctx = ensureContext(ctx)
	var exists int
	if err := c.store.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM shows WHERE id = ?`, showID).Scan(&exists); err != nil {
		return nil, classify(err)
	}
	if exists == 0 {
		return nil, catalog.NotFoundError(fmt.Errorf("show %s is not in the local catalog", showID))
	}

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT episode_id, title, air_date, season, episode, dvd_season, dvd_episode
         FROM episodes WHERE show_id = ? ORDER BY position`, showID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []episodes.Record
	for rows.Next() {
		var rec episodes.Record
		var title, airDate, season, episode, dvdS, dvdE sql.NullString
		if err := rows.Scan(&rec.ID, &title, &airDate, &season, &episode, &dvdS, &dvdE); err != nil {
			return nil, classify(err)
		}
		rec.Title = title.String
		rec.AirDate = airDate.String
		rec.Season = season.String
		rec.Episode = episode.String
		rec.DiscSeason = dvdS.String
		rec.DiscEpisode = dvdE.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return records, nil
}

func classify(err error) error {
	return catalog.TransientError(err, errors.Is(err, context.DeadlineExceeded))
}
