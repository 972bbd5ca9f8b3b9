package fileepisode

import (
	"strconv"
	"strings"

	"tvshelf/internal/episodes"
	"tvshelf/internal/textutil"
)

// MaxTitleLength caps the episode title substituted into filenames.
const MaxTitleLength = 85

// Template tokens.
const (
	TokenShow          = "%S"
	TokenSeason        = "%s"
	TokenSeasonPadded  = "%0s"
	TokenEpisode       = "%e"
	TokenEpisodePadded = "%0e"
	TokenTitle         = "%t"
	TokenTitleDotted   = "%T"
	TokenResolution    = "%r"
	TokenYearFull      = "%dY"
	TokenYearShort     = "%dy"
	TokenMonthPadded   = "%dM"
	TokenMonth         = "%dm"
	TokenDayPadded     = "%dD"
	TokenDay           = "%dd"
)

// BuildBasename substitutes template tokens for one episode and sanitizes
// the result for the filesystem. Date tokens are removed when the episode
// has no air date. The function is pure.
func BuildBasename(template, show string, ep *episodes.Episode, p episodes.Placement, resolution string) string {
	title := ""
	if ep != nil {
		title = truncateTitle(ep.Title())
	}

	pairs := []string{
		TokenShow, show,
		TokenSeasonPadded, padded(p.Season, episodes.NoSeason),
		TokenSeason, plain(p.Season, episodes.NoSeason),
		TokenEpisodePadded, padded(p.Episode, episodes.NoEpisode),
		TokenEpisode, plain(p.Episode, episodes.NoEpisode),
		TokenTitleDotted, strings.ReplaceAll(title, " ", "."),
		TokenTitle, title,
		TokenResolution, resolution,
	}

	year, month, day := "", "", ""
	if ep != nil {
		if date, ok := ep.AirDate(); ok {
			year = strconv.Itoa(date.Year())
			month = strconv.Itoa(int(date.Month()))
			day = strconv.Itoa(date.Day())
		}
	}
	pairs = append(pairs,
		TokenYearFull, year,
		TokenYearShort, lastTwo(year),
		TokenMonthPadded, zeroPad(month),
		TokenMonth, month,
		TokenDayPadded, zeroPad(day),
		TokenDay, day,
	)

	return textutil.SanitizeFileName(strings.NewReplacer(pairs...).Replace(template))
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}
	return strings.TrimSpace(string(runes[:MaxTitleLength]))
}

func plain(n, missing int) string {
	if n == missing {
		return ""
	}
	return strconv.Itoa(n)
}

func padded(n, missing int) string {
	return zeroPad(plain(n, missing))
}

func zeroPad(value string) string {
	if len(value) == 1 {
		return "0" + value
	}
	return value
}

func lastTwo(year string) string {
	if len(year) < 2 {
		return year
	}
	return year[len(year)-2:]
}

// SeasonFolder returns the season directory name, or "" when prefix is
// empty (no season folders).
func SeasonFolder(prefix string, season int, leadingZero bool) string {
	if prefix == "" || season == episodes.NoSeason {
		return ""
	}
	number := strconv.Itoa(season)
	if leadingZero {
		number = zeroPad(number)
	}
	return textutil.SanitizeFileName(prefix + number)
}
