package fileepisode

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"tvshelf/internal/catalog"
	"tvshelf/internal/config"
	"tvshelf/internal/episodes"
	"tvshelf/internal/filename"
	"tvshelf/internal/relocate"
	"tvshelf/internal/services"
	"tvshelf/internal/textutil"
)

var (
	// ErrSuffixChanged is returned when a path update would change the file
	// extension fixed at construction.
	ErrSuffixChanged = errors.New("file suffix cannot change")
	// ErrNoOptions is returned by ChooseOption when nothing can be chosen.
	ErrNoOptions = errors.New("no destination options")
)

// FileEpisode is the per-file aggregate. All methods are safe for concurrent
// use.
type FileEpisode struct {
	mu sync.Mutex

	path   string
	suffix string
	prefs  config.Preferences

	parse      filename.Result
	parseState ParseState
	placement  episodes.Placement

	catalogState   CatalogState
	show           *episodes.Show
	showCandidates []string
	placeholder    string
	candidates     []*episodes.Episode
	chosen         int
	chosenName     string
	options        []string

	moveState    MoveState
	lastResult   *relocate.Result
	ignoreReason string
}

// New parses path and returns the file's aggregate. An empty path is a
// programming error and the only failure.
func New(path string, prefs config.Preferences) (*FileEpisode, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrValidation, "fileepisode", "new", "empty path", nil)
	}
	fe := &FileEpisode{
		path:   filepath.Clean(path),
		suffix: filepath.Ext(path),
		prefs:  prefs,
	}
	fe.parse = filename.Parse(fe.path)
	fe.parseState = parseStateFor(fe.parse.Outcome)
	fe.placement = fe.parse.Placement()
	fe.ignoreReason = ignoredKeyword(fe.path, prefs.IgnoreKeywords)
	return fe, nil
}

func ignoredKeyword(path string, keywords []string) string {
	base := strings.ToLower(filepath.Base(path))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(base, keyword) {
			return fmt.Sprintf("filename contains %q", keyword)
		}
	}
	return ""
}

// Path returns the current location.
func (f *FileEpisode) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// Suffix returns the file extension fixed at construction.
func (f *FileEpisode) Suffix() string { return f.suffix }

// SetPath records a new location. The extension may not change.
func (f *FileEpisode) SetPath(path string) error {
	if filepath.Ext(path) != f.suffix {
		return fmt.Errorf("%w: %q -> %q", ErrSuffixChanged, f.suffix, filepath.Ext(path))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = filepath.Clean(path)
	return nil
}

// ParseResult returns the raw parse output.
func (f *FileEpisode) ParseResult() filename.Result { return f.parse }

// ParseState returns the parse outcome.
func (f *FileEpisode) ParseState() ParseState { return f.parseState }

// Placement returns the parsed (season, episode).
func (f *FileEpisode) Placement() episodes.Placement { return f.placement }

// Query returns the normalized catalog query for the parsed show fragment.
func (f *FileEpisode) Query() string {
	return filename.QueryString(f.parse.ShowFragment)
}

// CatalogState returns the lookup state.
func (f *FileEpisode) CatalogState() CatalogState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalogState
}

// MoveState returns the relocation state.
func (f *FileEpisode) MoveState() MoveState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moveState
}

// Show returns the matched show, if any.
func (f *FileEpisode) Show() *episodes.Show {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.show
}

// SetPreferences replaces the naming preferences and rebuilds options when
// the file is resolved.
func (f *FileEpisode) SetPreferences(prefs config.Preferences) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs = prefs
	f.ignoreReason = ignoredKeyword(f.path, prefs.IgnoreKeywords)
	if f.catalogState == GotListings {
		f.rebuildOptionsLocked()
	}
}

// SetIgnoreReason excludes the file from renaming. An empty reason clears
// the exclusion.
func (f *FileEpisode) SetIgnoreReason(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ignoreReason = strings.TrimSpace(reason)
}

// IgnoreReason returns why the file is excluded, or "".
func (f *FileEpisode) IgnoreReason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ignoreReason
}

// SetEpisodeShow records the outcome of the show lookup. Anything but Found
// moves the file to Unfound with a placeholder explaining why.
func (f *FileEpisode) SetEpisodeShow(result catalog.ShowResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := result.Show()
	f.showCandidates = nil
	if !ok {
		f.show = nil
		f.catalogState = Unfound
		f.placeholder = result.Placeholder()
		for _, candidate := range result.Candidates() {
			f.showCandidates = append(f.showCandidates, candidate.Name)
		}
		f.clearCandidatesLocked()
		return
	}
	f.show = show
	f.catalogState = GotShow
	f.placeholder = ""
	f.clearCandidatesLocked()
}

// ListingsFailed records a listings download failure. Candidates from an
// earlier resolution are kept.
func (f *FileEpisode) ListingsFailed(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogState = NoListings
	f.placeholder = catalog.ListingsPlaceholder(f.show, err)
}

// ResolveListings looks the file's placement up in the show's index under
// pref and rebuilds the destination options. It returns the option count.
func (f *FileEpisode) ResolveListings(pref episodes.Scheme) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.show == nil {
		return 0
	}
	switch f.catalogState {
	case GotShow, GotListings, NoMatch, NoListings:
	default:
		return 0
	}
	index := f.show.Index()
	if index == nil {
		return 0
	}

	found, ok := index.Lookup(f.placement, pref)
	if !ok || len(found) == 0 {
		f.catalogState = NoMatch
		f.placeholder = fmt.Sprintf("%s %s (no matching episode)", f.show.Name, f.placement)
		f.clearCandidatesLocked()
		return 0
	}

	f.catalogState = GotListings
	f.placeholder = ""
	f.candidates = found
	f.chosen = 0
	f.rebuildOptionsLocked()
	return f.optionCountLocked()
}

func (f *FileEpisode) clearCandidatesLocked() {
	f.candidates = nil
	f.options = nil
	f.chosen = 0
	f.chosenName = ""
}

// rebuildOptionsLocked recomputes the option list. With renaming disabled
// every candidate maps to the current basename, so a single option remains.
func (f *FileEpisode) rebuildOptionsLocked() {
	dir := f.destinationDirLocked()
	if !f.prefs.RenameEnabled {
		f.options = []string{filepath.Join(dir, filepath.Base(f.path))}
		f.chosen = 0
		f.chosenName = f.currentStemLocked()
		return
	}
	f.options = make([]string, 0, len(f.candidates))
	for _, ep := range f.candidates {
		f.options = append(f.options, filepath.Join(dir, f.basenameLocked(ep)+f.suffix))
	}
	if f.chosen >= len(f.candidates) {
		f.chosen = 0
	}
	f.chosenName = f.basenameLocked(f.candidates[f.chosen])
}

func (f *FileEpisode) basenameLocked(ep *episodes.Episode) string {
	return BuildBasename(f.prefs.Template, f.show.Name, ep, f.placement, f.parse.Resolution)
}

func (f *FileEpisode) currentStemLocked() string {
	base := filepath.Base(f.path)
	return strings.TrimSuffix(base, f.suffix)
}

func (f *FileEpisode) destinationDirLocked() string {
	if !f.prefs.MoveEnabled || f.show == nil {
		return filepath.Dir(f.path)
	}
	dir := filepath.Join(f.prefs.DestinationDir, textutil.SanitizeFileName(f.show.Name))
	if season := SeasonFolder(f.prefs.SeasonPrefix, f.placement.Season, f.prefs.LeadingZero); season != "" {
		dir = filepath.Join(dir, season)
	}
	return dir
}

func (f *FileEpisode) optionCountLocked() int {
	if f.catalogState != GotListings || f.ignoreReason != "" {
		return 0
	}
	return len(f.options)
}

// OptionCount returns how many destinations the user can choose from. It is
// zero unless listings resolved and the file is not ignored.
func (f *FileEpisode) OptionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optionCountLocked()
}

// Options returns the proposed destination paths.
func (f *FileEpisode) Options() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.optionCountLocked() == 0 {
		return nil
	}
	return slices.Clone(f.options)
}

// ChooseOption selects option n and recomputes only that option's basename.
func (f *FileEpisode) ChooseOption(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := f.optionCountLocked()
	if count == 0 {
		return ErrNoOptions
	}
	if n < 0 || n >= count {
		return services.Wrap(services.ErrValidation, "fileepisode", "choose option",
			fmt.Sprintf("option %d out of range [0,%d)", n, count), nil)
	}
	f.chosen = n
	if f.prefs.RenameEnabled {
		f.chosenName = f.basenameLocked(f.candidates[n])
	}
	return nil
}

// Chosen returns the selected option index.
func (f *FileEpisode) Chosen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chosen
}

// Destination returns the relocation target for the chosen option.
func (f *FileEpisode) Destination() (relocate.Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.optionCountLocked() == 0 || f.chosenName == "" {
		return relocate.Target{}, false
	}
	return relocate.Target{
		Dir:      f.destinationDirLocked(),
		Basename: f.chosenName,
		Suffix:   f.suffix,
	}, true
}

// Placeholder returns the user-facing text shown when no destination is
// available.
func (f *FileEpisode) Placeholder() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.placeholderLocked()
}

func (f *FileEpisode) placeholderLocked() string {
	switch {
	case f.ignoreReason != "":
		return "ignored: " + f.ignoreReason
	case f.parseState == BadParse:
		return "unable to parse season and episode from filename"
	default:
		return f.placeholder
	}
}

// CheckExists records whether the file is still on disk.
func (f *FileEpisode) CheckExists(fsys relocate.FS) MoveState {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := NoFile
	if fsys.Exists(f.path) {
		next = Unmoved
	}
	if canMove(f.moveState, next) {
		f.moveState = next
	}
	return f.moveState
}

// BeginMove marks the file as moving.
func (f *FileEpisode) BeginMove() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if canMove(f.moveState, Moving) {
		f.moveState = Moving
	}
}

// FinishMove records a relocation result. A conflict returns the file to
// Unmoved so the caller can retry with a versioned target.
func (f *FileEpisode) FinishMove(result relocate.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := moveStateFor(result)
	if !canMove(f.moveState, next) {
		return
	}
	f.moveState = next
	f.lastResult = &result
	if result.Outcome.Placed() && result.Destination != "" && filepath.Ext(result.Destination) == f.suffix {
		f.path = filepath.Clean(result.Destination)
	}
}

func moveStateFor(result relocate.Result) MoveState {
	switch result.Outcome {
	case relocate.CopiedNotCleaned:
		return CopiedNotCleaned
	case relocate.Renamed, relocate.Copied:
		if result.Target.VersionIndex > 0 {
			return Misnamed
		}
		if result.Outcome == relocate.Renamed {
			return Renamed
		}
		return Copied
	case relocate.AlreadyInPlace:
		return AlreadyInPlace
	case relocate.Conflict:
		return Unmoved
	case relocate.Missing:
		return NoFile
	default:
		return FailToMove
	}
}

// LastResult returns the most recent relocation result.
func (f *FileEpisode) LastResult() (relocate.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastResult == nil {
		return relocate.Result{}, false
	}
	return *f.lastResult, true
}

// Snapshot is a consistent view of a FileEpisode.
type Snapshot struct {
	Path           string
	ShowFragment   string
	Placement      episodes.Placement
	Resolution     string
	ParseState     ParseState
	CatalogState   CatalogState
	MoveState      MoveState
	ShowName       string
	// ShowCandidates names the shows an ambiguous lookup could not choose
	// between.
	ShowCandidates []string
	Options        []string
	Chosen         int
	Placeholder    string
	IgnoreReason   string
}

// Snapshot returns all display fields under one lock acquisition.
func (f *FileEpisode) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{
		Path:         f.path,
		ShowFragment: f.parse.ShowFragment,
		Placement:    f.placement,
		Resolution:   f.parse.Resolution,
		ParseState:   f.parseState,
		CatalogState: f.catalogState,
		MoveState:    f.moveState,
		Chosen:       f.chosen,
		Placeholder:  f.placeholderLocked(),
		IgnoreReason: f.ignoreReason,
	}
	snap.ShowCandidates = slices.Clone(f.showCandidates)
	if f.show != nil {
		snap.ShowName = f.show.Name
	}
	if f.optionCountLocked() > 0 {
		snap.Options = slices.Clone(f.options)
	}
	return snap
}
