package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tvshelf/internal/episodes"
	"tvshelf/internal/services"
)

// listingFile is the TOML layout accepted by ImportListings:
//
//	[[show]]
//	id = "81189"
//	name = "Breaking Bad"
//
//	  [[show.episode]]
//	  id = "349232"
//	  title = "Pilot"
//	  air_date = "2008-01-20"
//	  season = 1
//	  episode = 1
//	  dvd_season = 1
//	  dvd_episode = 1
type listingFile struct {
	Shows []listingShow `toml:"show"`
}

type listingShow struct {
	ID       string           `toml:"id"`
	Name     string           `toml:"name"`
	Episodes []listingEpisode `toml:"episode"`
}

type listingEpisode struct {
	ID         any    `toml:"id"`
	Title      string `toml:"title"`
	AirDate    any    `toml:"air_date"`
	Season     any    `toml:"season"`
	Episode    any    `toml:"episode"`
	DVDSeason  any    `toml:"dvd_season"`
	DVDEpisode any    `toml:"dvd_episode"`
}

// ImportReport summarizes an import.
type ImportReport struct {
	Shows    int
	Episodes int
}

// ImportListings loads a TOML listing file into the local catalog. Each show
// in the file replaces any previous listing with the same id. The import is
// all-or-nothing.
func ImportListings(ctx context.Context, store *Store, r io.Reader) (ImportReport, error) {
	var file listingFile
	decoder := toml.NewDecoder(r)
	if err := decoder.Decode(&file); err != nil {
		return ImportReport{}, services.Wrap(services.ErrValidation, "catalog", "import", "decode listing file", err)
	}

	listings := make([]ShowListing, 0, len(file.Shows))
	report := ImportReport{}
	for i, show := range file.Shows {
		id := strings.TrimSpace(show.ID)
		name := strings.TrimSpace(show.Name)
		if id == "" || name == "" {
			return ImportReport{}, services.Wrap(services.ErrValidation, "catalog", "import",
				fmt.Sprintf("show #%d needs both id and name", i+1), nil)
		}
		listing := ShowListing{ID: id, Name: name, Episodes: make([]episodes.Record, 0, len(show.Episodes))}
		for _, ep := range show.Episodes {
			listing.Episodes = append(listing.Episodes, episodes.Record{
				ID:          fieldText(ep.ID),
				Title:       strings.TrimSpace(ep.Title),
				AirDate:     fieldText(ep.AirDate),
				Season:      fieldText(ep.Season),
				Episode:     fieldText(ep.Episode),
				DiscSeason:  fieldText(ep.DVDSeason),
				DiscEpisode: fieldText(ep.DVDEpisode),
			})
		}
		report.Shows++
		report.Episodes += len(listing.Episodes)
		listings = append(listings, listing)
	}

	err := store.inTx(ctx, func(tx *sql.Tx) error {
		for _, listing := range listings {
			if err := replaceShowTx(ctx, tx, listing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, services.Wrap(services.ErrIO, "catalog", "import", "store listings", err)
	}
	return report, nil
}

// fieldText renders a TOML scalar the way catalogs deliver numbers: as text.
func fieldText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02")
	case toml.LocalDate:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
