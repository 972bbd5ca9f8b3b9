package filename

import "regexp"

// sep matches one separator character between filename tokens.
const sep = `[^a-zA-Z0-9]`

// resolutionTail captures a resolution tag somewhere after the episode
// number. It is appended to every base pattern to build the four-group
// variants.
const resolutionTail = `.*?` + sep + `(\d{3,4}[pi]|[48]k)(?:` + sep + `.*)?$`

// plainTail accepts anything after the episode number as long as the
// episode digits are not immediately followed by more digits.
const plainTail = `(?:[^0-9].*)?$`

// basePatterns capture (show fragment, season, episode), most specific
// first.
var basePatterns = []string{
	// Show.2010.S01E02: explicit year stays part of the show fragment.
	`^(.*?(?:19|20)\d{2}` + sep + `+)s(\d{1,2})` + sep + `*e(\d{1,3})`,
	// Show.S01E02
	`^(.*?` + sep + `|)s(\d{1,2})e(\d{1,3})`,
	// Show Season-01-Episode-02
	`^(.*?` + sep + `|)season` + sep + `?(\d{1,2})` + sep + `*episode` + sep + `?(\d{1,3})`,
	// Show.s01.e02
	`^(.*?` + sep + `|)s(\d{1,2})` + sep + `+e(\d{1,3})`,
	// Show.1x02
	`^(.*?` + sep + `|)(\d{1,2})x(\d{1,3})`,
	// Show.0102
	`^(.*?` + sep + `)(\d{2})(\d{2})`,
	// Show.102
	`^(.*?` + sep + `)(\d)(\d{2})`,
	// Show.01.02
	`^(.*?` + sep + `)(\d{1,2})` + sep + `+(\d{1,2})`,
	// last resort: any two digit runs
	`^(.*?` + sep + `)(\d{1,2})\D*?(\d{1,3})`,
}

// cascade holds every compiled pattern in match order: all
// resolution-capturing variants first, then the plain variants.
var cascade = buildCascade()

func buildCascade() []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(basePatterns)*2)
	for _, base := range basePatterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+base+resolutionTail))
	}
	for _, base := range basePatterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+base+plainTail))
	}
	return compiled
}

var (
	// leadingMarkerRe matches basenames that start directly with a
	// season/episode marker and therefore carry no show name.
	leadingMarkerRe = regexp.MustCompile(`(?i)^(?:s\d{1,2}` + sep + `*e\d{1,3}|\d{1,2}x\d{1,3}|season` + sep + `?\d)`)

	// seasonFolderRe matches directory names that only describe a season.
	seasonFolderRe = regexp.MustCompile(`(?i)^(?:season.*|s\d{2})$`)

	// videoRe matches the extensions considered when scanning directories.
	videoRe = regexp.MustCompile(`(?i)\.(?:avi|divx|m2ts|m4v|mkv|mov|mp4|mpeg|mpg|mts|ogm|rmvb|ts|webm|wmv|xvid)$`)
)

// junkTokens are scene-release markers stripped before matching. Digits in
// tokens like x264 would otherwise be read as season/episode numbers by the
// loose patterns.
var junkTokens = []string{
	"hdtv", "dvdrip", "webrip", "web-dl", "bdrip", "bluray",
	"xvid", "x264", "x265", "proper", "repack",
}

// DuplicatesFolder is the subdirectory that receives versioned copies when
// a destination is already occupied. It is skipped during show-name
// recovery.
const DuplicatesFolder = "versions"
