package episodes

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// NoSeason marks a placement whose season could not be determined.
	NoSeason = -1
	// NoEpisode marks a placement whose episode could not be determined.
	NoEpisode = -1
)

// airDateLayout is the date format delivered by catalogs.
const airDateLayout = "2006-01-02"

// Placement is the (season, episode) pair a file or record is believed to
// represent.
type Placement struct {
	Season  int
	Episode int
}

// Valid reports whether both numbers are known.
func (p Placement) Valid() bool {
	return p.Season != NoSeason && p.Episode != NoEpisode
}

// String renders the placement as S01E02, with ?? for unknown parts.
func (p Placement) String() string {
	season, episode := "??", "??"
	if p.Season != NoSeason {
		season = fmt.Sprintf("%02d", p.Season)
	}
	if p.Episode != NoEpisode {
		episode = fmt.Sprintf("%02d", p.Episode)
	}
	return "S" + season + "E" + episode
}

// Scheme identifies one numbering order.
type Scheme int

const (
	Aired Scheme = iota
	Disc
)

func (s Scheme) String() string {
	if s == Disc {
		return "disc"
	}
	return "aired"
}

// other returns the opposite scheme.
func (s Scheme) other() Scheme {
	if s == Disc {
		return Aired
	}
	return Disc
}

var schemes = [...]Scheme{Aired, Disc}

// Numbering is the user's ordering preference. Guess picks a scheme from the
// data when the index is built.
type Numbering int

const (
	NumberingGuess Numbering = iota
	NumberingAired
	NumberingDisc
	NumberingAbsolute
)

func (n Numbering) String() string {
	switch n {
	case NumberingAired:
		return "aired"
	case NumberingDisc:
		return "disc"
	case NumberingAbsolute:
		return "absolute"
	default:
		return "guess"
	}
}

// ParseNumbering maps a configuration value onto a Numbering. Unknown values
// fall back to Guess.
func ParseNumbering(value string) Numbering {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "aired":
		return NumberingAired
	case "disc", "dvd":
		return NumberingDisc
	case "absolute":
		return NumberingAbsolute
	default:
		return NumberingGuess
	}
}

// Record is one listing entry as delivered by a catalog. Numbers are kept as
// strings because catalogs deliver blanks and decimal forms ("3.0").
type Record struct {
	ID          string
	Title       string
	AirDate     string
	Season      string
	Episode     string
	DiscSeason  string
	DiscEpisode string
}

// placement reads the season and episode under a single scheme. Both numbers
// always come from the same scheme.
func (r Record) placement(scheme Scheme) (Placement, bool) {
	seasonText, episodeText := r.Season, r.Episode
	if scheme == Disc {
		seasonText, episodeText = r.DiscSeason, r.DiscEpisode
	}
	season, ok := parseNumber(seasonText)
	if !ok {
		return Placement{Season: NoSeason, Episode: NoEpisode}, false
	}
	episode, ok := parseNumber(episodeText)
	if !ok {
		return Placement{Season: NoSeason, Episode: NoEpisode}, false
	}
	return Placement{Season: season, Episode: episode}, true
}

// parseNumber accepts non-negative integers, including integral decimals
// such as "3.0".
func parseNumber(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Episode is an immutable catalog record. The air date is parsed on first
// use.
type Episode struct {
	id         string
	title      string
	rawAirDate string
	placements [2]Placement

	airDateOnce sync.Once
	airDate     time.Time
	hasAirDate  bool
}

func newEpisode(r Record) *Episode {
	ep := &Episode{
		id:         strings.TrimSpace(r.ID),
		title:      strings.TrimSpace(r.Title),
		rawAirDate: strings.TrimSpace(r.AirDate),
	}
	for _, scheme := range schemes {
		ep.placements[scheme], _ = r.placement(scheme)
	}
	return ep
}

// NewEpisode builds a standalone episode from a record.
func NewEpisode(r Record) *Episode {
	return newEpisode(r)
}

// ID returns the catalog episode id.
func (e *Episode) ID() string { return e.id }

// Title returns the episode title.
func (e *Episode) Title() string { return e.title }

// RawAirDate returns the air date as delivered.
func (e *Episode) RawAirDate() string { return e.rawAirDate }

// Placement returns the episode's position under scheme, which may be
// invalid when the catalog did not supply that ordering.
func (e *Episode) Placement(scheme Scheme) Placement {
	return e.placements[scheme]
}

// AirDate returns the parsed air date. The second result is false when the
// catalog supplied no date or an unparseable one.
func (e *Episode) AirDate() (time.Time, bool) {
	e.airDateOnce.Do(func() {
		if e.rawAirDate == "" {
			return
		}
		parsed, err := time.Parse(airDateLayout, e.rawAirDate)
		if err != nil {
			return
		}
		e.airDate = parsed
		e.hasAirDate = true
	})
	return e.airDate, e.hasAirDate
}

// sameContent reports whether two episodes are the literal same title and
// date, which is how catalog duplicates are recognized.
func (e *Episode) sameContent(other *Episode) bool {
	return e.title == other.title && e.rawAirDate == other.rawAirDate
}

// structuralMismatch describes how other differs from e, or returns "".
func (e *Episode) structuralMismatch(other *Episode) string {
	var diffs []string
	if e.title != other.title {
		diffs = append(diffs, fmt.Sprintf("title %q != %q", e.title, other.title))
	}
	if e.rawAirDate != other.rawAirDate {
		diffs = append(diffs, fmt.Sprintf("air date %q != %q", e.rawAirDate, other.rawAirDate))
	}
	for _, scheme := range schemes {
		if e.placements[scheme] != other.placements[scheme] {
			diffs = append(diffs, fmt.Sprintf("%s %s != %s", scheme, e.placements[scheme], other.placements[scheme]))
		}
	}
	return strings.Join(diffs, "; ")
}
