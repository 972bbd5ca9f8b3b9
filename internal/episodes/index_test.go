package episodes_test

import (
	"errors"
	"testing"
	"time"

	"tvshelf/internal/episodes"
	"tvshelf/internal/logging"
)

func newIndex(t *testing.T, numbering episodes.Numbering, records []episodes.Record) (*episodes.Index, episodes.AddReport) {
	t.Helper()
	ix := episodes.NewIndex(numbering, logging.NewNop())
	report, err := ix.AddEpisodes(records)
	if err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}
	return ix, report
}

func TestGuessPrefersDiscWhenMajorityHasDiscNumbers(t *testing.T) {
	records := []episodes.Record{
		{ID: "1", Title: "One", Season: "1", Episode: "1", DiscSeason: "1", DiscEpisode: "1"},
		{ID: "2", Title: "Two", Season: "1", Episode: "2", DiscSeason: "1", DiscEpisode: "2.0"},
		{ID: "3", Title: "Three", Season: "1", Episode: "3"},
	}
	ix, report := newIndex(t, episodes.NumberingGuess, records)
	if ix.Preference() != episodes.Disc || report.Preference != episodes.Disc {
		t.Fatalf("expected disc preference, got %s", ix.Preference())
	}
}

func TestGuessPrefersAiredWhenMinorityHasDiscNumbers(t *testing.T) {
	records := []episodes.Record{
		{ID: "1", Title: "One", Season: "1", Episode: "1", DiscSeason: "1", DiscEpisode: "1"},
		{ID: "2", Title: "Two", Season: "1", Episode: "2"},
		{ID: "3", Title: "Three", Season: "1", Episode: "3", DiscSeason: "1", DiscEpisode: "x"},
	}
	ix, _ := newIndex(t, episodes.NumberingGuess, records)
	if ix.Preference() != episodes.Aired {
		t.Fatalf("expected aired preference, got %s", ix.Preference())
	}
}

func TestGuessAtExactlyHalfPrefersAired(t *testing.T) {
	records := []episodes.Record{
		{ID: "1", Title: "One", Season: "1", Episode: "1", DiscSeason: "1", DiscEpisode: "1"},
		{ID: "2", Title: "Two", Season: "1", Episode: "2"},
	}
	ix, _ := newIndex(t, episodes.NumberingGuess, records)
	if ix.Preference() != episodes.Aired {
		t.Fatalf("expected aired preference at one half, got %s", ix.Preference())
	}
}

func TestExplicitNumberingOverridesGuess(t *testing.T) {
	records := []episodes.Record{{ID: "1", Title: "One", Season: "1", Episode: "1"}}
	if ix, _ := newIndex(t, episodes.NumberingDisc, records); ix.Preference() != episodes.Disc {
		t.Fatalf("expected disc")
	}
	if ix, _ := newIndex(t, episodes.NumberingAbsolute, records); ix.Preference() != episodes.Aired {
		t.Fatalf("expected absolute to use aired order")
	}
}

func crossedRecords() []episodes.Record {
	return []episodes.Record{
		{ID: "a", Title: "Pilot", AirDate: "2004-09-22", Season: "1", Episode: "1", DiscSeason: "1", DiscEpisode: "2"},
		{ID: "b", Title: "Tabula Rasa", AirDate: "2004-10-06", Season: "1", Episode: "2", DiscSeason: "1", DiscEpisode: "1"},
		{ID: "c", Title: "Special", AirDate: "2005-01-01", Season: "2", Episode: "1"},
	}
}

func TestLookupHonoursSchemePreference(t *testing.T) {
	ix, _ := newIndex(t, episodes.NumberingGuess, crossedRecords())
	slot := episodes.Placement{Season: 1, Episode: 1}

	aired, ok := ix.Lookup(slot, episodes.Aired)
	if !ok || len(aired) != 2 {
		t.Fatalf("expected two candidates, got %d (ok=%v)", len(aired), ok)
	}
	if aired[0].ID() != "a" || aired[1].ID() != "b" {
		t.Fatalf("unexpected aired order %s, %s", aired[0].ID(), aired[1].ID())
	}

	disc, _ := ix.Lookup(slot, episodes.Disc)
	if disc[0].ID() != "b" || disc[1].ID() != "a" {
		t.Fatalf("unexpected disc order %s, %s", disc[0].ID(), disc[1].ID())
	}

	options, _ := ix.Slot(slot)
	if options.Lookup(episodes.Aired).ID() != "a" || options.Lookup(episodes.Disc).ID() != "b" {
		t.Fatal("options lookup did not honour scheme")
	}
}

func TestLookupFallsBackToSoleEntry(t *testing.T) {
	ix, _ := newIndex(t, episodes.NumberingGuess, crossedRecords())
	options, ok := ix.Slot(episodes.Placement{Season: 2, Episode: 1})
	if !ok || options.Len() != 1 {
		t.Fatalf("expected one entry, got %d", options.Len())
	}
	if got := options.Lookup(episodes.Disc); got == nil || got.ID() != "c" {
		t.Fatalf("expected fallback to aired entry, got %v", got)
	}
	found, ok := ix.Lookup(episodes.Placement{Season: 2, Episode: 1}, episodes.Disc)
	if !ok || len(found) != 1 || found[0].ID() != "c" {
		t.Fatalf("unexpected lookup result %v", found)
	}
}

func TestLookupMissingSeason(t *testing.T) {
	ix, _ := newIndex(t, episodes.NumberingGuess, crossedRecords())
	found, ok := ix.Lookup(episodes.Placement{Season: 9, Episode: 1}, episodes.Aired)
	if ok || len(found) != 0 {
		t.Fatalf("expected not found, got %v (ok=%v)", found, ok)
	}
	found, ok = ix.Lookup(episodes.Placement{Season: 1, Episode: 40}, episodes.Aired)
	if !ok || len(found) != 0 {
		t.Fatalf("expected empty slot in known season, got %v (ok=%v)", found, ok)
	}
}

func TestPairingStaysWithinOneScheme(t *testing.T) {
	records := []episodes.Record{
		{ID: "x", Title: "Half", Season: "1", Episode: "5", DiscSeason: "2", DiscEpisode: ""},
	}
	ix, _ := newIndex(t, episodes.NumberingGuess, records)
	if _, ok := ix.Lookup(episodes.Placement{Season: 2, Episode: 5}, episodes.Disc); ok {
		t.Fatal("disc season must not be paired with an aired episode number")
	}
	if slots := ix.Placements(episodes.Disc); len(slots) != 0 {
		t.Fatalf("expected no disc slots, got %v", slots)
	}
	if slots := ix.Placements(episodes.Aired); len(slots) != 1 || slots[0] != (episodes.Placement{Season: 1, Episode: 5}) {
		t.Fatalf("expected the aired slot only, got %v", slots)
	}
}

func TestDuplicateIDFirstWriteWins(t *testing.T) {
	records := []episodes.Record{
		{ID: "1", Title: "Original", Season: "1", Episode: "1"},
		{ID: "1", Title: "Original", Season: "1", Episode: "1"},
		{ID: "1", Title: "Rewritten", Season: "1", Episode: "3"},
	}
	ix, report := newIndex(t, episodes.NumberingAired, records)
	if report.Added != 1 || report.Duplicates != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0].Incoming != "Rewritten" {
		t.Fatalf("expected one conflict, got %+v", report.Conflicts)
	}
	found, _ := ix.Lookup(episodes.Placement{Season: 1, Episode: 1}, episodes.Aired)
	if len(found) != 1 || found[0].Title() != "Original" {
		t.Fatalf("expected first write to win, got %v", found)
	}
	if found, _ := ix.Lookup(episodes.Placement{Season: 1, Episode: 3}, episodes.Aired); len(found) != 0 {
		t.Fatal("conflicting record must not be indexed")
	}
}

func TestSameTitleAndDateCoalesced(t *testing.T) {
	records := []episodes.Record{
		{ID: "1", Title: "Finale", AirDate: "2010-05-23", Season: "6", Episode: "17"},
		{ID: "2", Title: "Finale", AirDate: "2010-05-23", Season: "6", Episode: "17"},
		{ID: "3", Title: "Different", AirDate: "2010-05-23", Season: "6", Episode: "17"},
		{ID: "4", Title: "FINALE", AirDate: "2010-05-23", Season: "6", Episode: "17"},
	}
	ix, report := newIndex(t, episodes.NumberingAired, records)
	if report.Coalesced != 1 {
		t.Fatalf("expected only the literal duplicate coalesced, got %d", report.Coalesced)
	}
	found, _ := ix.Lookup(episodes.Placement{Season: 6, Episode: 17}, episodes.Aired)
	if len(found) != 3 {
		t.Fatalf("expected distinct episodes to remain reachable, got %d", len(found))
	}
}

func TestAddEpisodesRejectsSecondBatch(t *testing.T) {
	ix, _ := newIndex(t, episodes.NumberingAired, crossedRecords())
	_, err := ix.AddEpisodes([]episodes.Record{{ID: "z", Title: "Late", Season: "1", Episode: "9"}})
	if !errors.Is(err, episodes.ErrAlreadyPopulated) {
		t.Fatalf("expected ErrAlreadyPopulated, got %v", err)
	}
	if found, _ := ix.Lookup(episodes.Placement{Season: 1, Episode: 9}, episodes.Aired); len(found) != 0 {
		t.Fatal("second batch must not be replayed into the index")
	}
}

func TestShowInstallsFreshIndexPerDownload(t *testing.T) {
	show := episodes.NewShow("77", "Lost")
	if show.HasListings() {
		t.Fatal("new show should not have listings")
	}
	if _, err := show.AddEpisodes(crossedRecords(), episodes.NumberingGuess, nil); err != nil {
		t.Fatalf("AddEpisodes: %v", err)
	}
	first := show.Index()
	if first == nil || first.Len() != 3 {
		t.Fatalf("expected index with three episodes")
	}
	if _, err := show.AddEpisodes(nil, episodes.NumberingGuess, nil); err != nil {
		t.Fatalf("AddEpisodes empty: %v", err)
	}
	if show.Index() == first {
		t.Fatal("successful reload should install a fresh index")
	}
}

func TestEpisodeAirDate(t *testing.T) {
	ep := episodes.NewEpisode(episodes.Record{ID: "1", Title: "Pilot", AirDate: "2004-09-22"})
	date, ok := ep.AirDate()
	if !ok || !date.Equal(time.Date(2004, 9, 22, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected air date %v (ok=%v)", date, ok)
	}
	if _, ok := episodes.NewEpisode(episodes.Record{ID: "2", AirDate: "soon"}).AirDate(); ok {
		t.Fatal("expected unparseable date to be absent")
	}
}

func TestPlacementString(t *testing.T) {
	if got := (episodes.Placement{Season: 1, Episode: 2}).String(); got != "S01E02" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (episodes.Placement{Season: episodes.NoSeason, Episode: 3}).String(); got != "S??E03" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseNumbering(t *testing.T) {
	if episodes.ParseNumbering(" DVD ") != episodes.NumberingDisc || episodes.ParseNumbering("bogus") != episodes.NumberingGuess {
		t.Fatal("unexpected numbering parse")
	}
}
