package filename

import (
	"path/filepath"
	"strconv"
	"strings"

	"tvshelf/internal/episodes"
	"tvshelf/internal/textutil"
)

// Outcome reports how far parsing got.
type Outcome int

const (
	Unparsed Outcome = iota
	Parsed
	BadParse
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case BadParse:
		return "bad_parse"
	default:
		return "unparsed"
	}
}

// Result holds the raw substrings extracted from a path. The digit strings
// are kept as matched; Placement converts them.
type Result struct {
	ShowFragment string
	Season       string
	Episode      string
	Resolution   string
	Outcome      Outcome
}

// Placement converts the matched digits. Values that do not convert become
// the NoSeason/NoEpisode sentinels so a partially numeric parse still counts
// as parsed.
func (r Result) Placement() episodes.Placement {
	placement := episodes.Placement{Season: episodes.NoSeason, Episode: episodes.NoEpisode}
	if r.Outcome != Parsed {
		return placement
	}
	if n, err := strconv.Atoi(r.Season); err == nil && n >= 0 {
		placement.Season = n
	}
	if n, err := strconv.Atoi(r.Episode); err == nil && n >= 0 {
		placement.Episode = n
	}
	return placement
}

// Parse extracts show, season, episode and resolution from path. It is
// total: a path no pattern recognizes yields Outcome BadParse.
func Parse(path string) Result {
	name := withShowName(path)
	name = stripJunk(name)

	for _, re := range cascade {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		result := Result{
			ShowFragment: m[1],
			Season:       m[2],
			Episode:      m[3],
			Outcome:      Parsed,
		}
		if len(m) > 4 {
			result.Resolution = m[4]
		}
		return result
	}
	return Result{Outcome: BadParse}
}

// stem returns the basename of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// withShowName returns the basename stem, prefixed with the nearest
// meaningful ancestor directory name when the stem starts with a bare
// season/episode marker.
func withShowName(path string) string {
	name := stem(path)
	if !leadingMarkerRe.MatchString(name) {
		return name
	}
	dir := filepath.Dir(path)
	for {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == "" {
			return name
		}
		if !seasonFolderRe.MatchString(base) && !strings.EqualFold(base, DuplicatesFolder) {
			return base + " " + name
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return name
		}
		dir = parent
	}
}

// stripJunk removes the last separator-delimited occurrence of each junk
// token. Earlier occurrences are left alone.
func stripJunk(name string) string {
	for _, token := range junkTokens {
		lower := strings.ToLower(name)
		idx := lastTokenIndex(lower, token)
		if idx <= 0 {
			continue
		}
		name = name[:idx] + name[idx+len(token):]
	}
	return name
}

func lastTokenIndex(lower, token string) int {
	end := len(lower)
	for end > 0 {
		idx := strings.LastIndex(lower[:end], token)
		if idx < 0 {
			return -1
		}
		after := idx + len(token)
		if isBoundary(lower, idx-1) && isBoundary(lower, after) {
			return idx
		}
		end = idx
	}
	return -1
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// QueryString normalizes a show fragment into the key used for catalog
// searches and caching.
func QueryString(fragment string) string {
	return textutil.QueryString(fragment)
}

// ShowDisplayName title-cases a show fragment for placeholder text.
func ShowDisplayName(fragment string) string {
	return textutil.DisplayName(fragment)
}

// IsVideo reports whether path has a recognized video extension.
func IsVideo(path string) bool {
	return videoRe.MatchString(path)
}
