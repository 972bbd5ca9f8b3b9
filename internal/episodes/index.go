package episodes

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"tvshelf/internal/logging"
)

// ErrAlreadyPopulated is returned when AddEpisodes is called on an index
// that already holds a listings batch.
var ErrAlreadyPopulated = errors.New("episode index already populated")

// Conflict records a later record whose id matched an existing episode but
// whose content differed. The first record stays authoritative.
type Conflict struct {
	ID       string
	Existing string
	Incoming string
	Detail   string
}

// AddReport summarizes one AddEpisodes call.
type AddReport struct {
	Added      int
	Duplicates int
	Coalesced  int
	Skipped    int
	Conflicts  []Conflict
	Preference Scheme
}

// Index holds every episode known for one show, indexed by catalog id and
// by (season, episode) under each numbering scheme.
type Index struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	numbering Numbering
	effective Scheme
	populated bool
	byID      map[string]*Episode
	ordered   []*Episode
	seasons   [2]map[int]map[int]*Options
}

// NewIndex creates an empty index that will apply numbering when populated.
func NewIndex(numbering Numbering, logger *slog.Logger) *Index {
	return &Index{
		logger:    logging.NewComponentLogger(logger, "episode-index"),
		numbering: numbering,
		byID:      make(map[string]*Episode),
		seasons:   [2]map[int]map[int]*Options{make(map[int]map[int]*Options), make(map[int]map[int]*Options)},
	}
}

// AddEpisodes populates the index from one listings batch. A second call is
// rejected with ErrAlreadyPopulated and leaves the index untouched.
func (ix *Index) AddEpisodes(records []Record) (AddReport, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.populated {
		logging.WarnWithContext(ix.logger, "listings already loaded; ignoring repeated batch", "index_repopulate",
			logging.Int("records", len(records)),
			logging.String(logging.FieldErrorHint, "listings are downloaded once per show; clear the registry to reload"),
			logging.String(logging.FieldImpact, "index keeps the first batch"),
		)
		return AddReport{Preference: ix.effective}, ErrAlreadyPopulated
	}

	var report AddReport
	for _, record := range records {
		ep := newEpisode(record)
		if ep.id == "" {
			report.Skipped++
			ix.logger.Debug("skipping listing without id", logging.String("title", ep.title))
			continue
		}
		existing, ok := ix.byID[ep.id]
		if !ok {
			ix.byID[ep.id] = ep
			ix.ordered = append(ix.ordered, ep)
			report.Added++
			continue
		}
		report.Duplicates++
		detail := existing.structuralMismatch(ep)
		if detail == "" {
			ix.logger.Debug("duplicate listing ignored", logging.String("episode_id", ep.id))
			continue
		}
		report.Conflicts = append(report.Conflicts, Conflict{
			ID:       ep.id,
			Existing: existing.title,
			Incoming: ep.title,
			Detail:   detail,
		})
		logging.WarnWithContext(ix.logger, "conflicting listing for known episode id", "episode_conflict",
			logging.String("episode_id", ep.id),
			logging.String("detail", detail),
			logging.String(logging.FieldErrorHint, "catalog returned two different records with one id"),
			logging.String(logging.FieldImpact, "first record kept"),
		)
	}

	ix.effective = ix.decideScheme()
	report.Preference = ix.effective

	for _, ep := range ix.ordered {
		for _, scheme := range schemes {
			p := ep.placements[scheme]
			if !p.Valid() {
				continue
			}
			if !ix.insert(scheme, p, ep) {
				report.Coalesced++
			}
		}
	}

	ix.populated = true
	ix.logger.Debug("episode index built",
		logging.Int("episodes", len(ix.ordered)),
		logging.String("preference", ix.effective.String()),
		logging.Int("conflicts", len(report.Conflicts)),
	)
	return report, nil
}

// decideScheme resolves the numbering preference. Guess prefers disc order
// only when more than half of the episodes carry a valid disc placement.
// Absolute listings are addressed through the aired order.
func (ix *Index) decideScheme() Scheme {
	switch ix.numbering {
	case NumberingDisc:
		return Disc
	case NumberingAired, NumberingAbsolute:
		return Aired
	}
	if len(ix.ordered) == 0 {
		return Aired
	}
	withDisc := 0
	for _, ep := range ix.ordered {
		if ep.placements[Disc].Valid() {
			withDisc++
		}
	}
	if float64(withDisc)/float64(len(ix.ordered)) > 0.5 {
		return Disc
	}
	return Aired
}

func (ix *Index) insert(scheme Scheme, p Placement, ep *Episode) bool {
	season, ok := ix.seasons[scheme][p.Season]
	if !ok {
		season = make(map[int]*Options)
		ix.seasons[scheme][p.Season] = season
	}
	slot, ok := season[p.Episode]
	if !ok {
		slot = &Options{}
		season[p.Episode] = slot
	}
	return slot.add(scheme, ep)
}

// Slot returns the combined options for p: entries recorded under either
// scheme at that position.
func (ix *Index) Slot(p Placement) (Options, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.slotLocked(p)
}

func (ix *Index) slotLocked(p Placement) (Options, bool) {
	var merged Options
	found := false
	for _, scheme := range schemes {
		season, ok := ix.seasons[scheme][p.Season]
		if !ok {
			continue
		}
		found = true
		if slot, ok := season[p.Episode]; ok {
			merged.entries = append(merged.entries, slot.entries...)
		}
	}
	return merged, found
}

// Lookup returns the episodes occupying p. Entries recorded under pref come
// first, followed by a different episode holding the same slot under the
// other scheme. The boolean is false when neither scheme knows the season.
func (ix *Index) Lookup(p Placement, pref Scheme) ([]*Episode, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	slot, ok := ix.slotLocked(p)
	if !ok {
		ix.logger.Debug("season not in listings",
			logging.Int("season", p.Season),
			logging.String(logging.FieldPlacement, p.String()),
		)
		return nil, false
	}
	return slot.Episodes(pref), true
}

// Preference reports the scheme chosen when the index was populated.
func (ix *Index) Preference() Scheme {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.effective
}

// Populated reports whether listings have been loaded.
func (ix *Index) Populated() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.populated
}

// Len returns the number of distinct episodes.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ordered)
}

// Placements lists every occupied slot under scheme in season, episode
// order.
func (ix *Index) Placements(scheme Scheme) []Placement {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []Placement
	for season, slots := range ix.seasons[scheme] {
		for episode := range slots {
			out = append(out, Placement{Season: season, Episode: episode})
		}
	}
	slices.SortFunc(out, func(a, b Placement) int {
		if a.Season != b.Season {
			return cmp.Compare(a.Season, b.Season)
		}
		return cmp.Compare(a.Episode, b.Episode)
	})
	return out
}
