package config

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Preferences is the narrow view of the configuration consumed by the
// relocation engine: how destinations are named and where they live.
type Preferences struct {
	Template        string
	SeasonPrefix    string
	LeadingZero     bool
	MoveEnabled     bool
	RenameEnabled   bool
	RemoveEmptyDirs bool
	DestinationDir  string
	IgnoreKeywords  []string
	Numbering       string
}

// Preferences extracts the engine preferences from the configuration.
func (c *Config) Preferences() Preferences {
	return Preferences{
		Template:        c.Naming.Template,
		SeasonPrefix:    c.Naming.SeasonPrefix,
		LeadingZero:     c.Naming.LeadingZero,
		MoveEnabled:     c.Naming.MoveEnabled,
		RenameEnabled:   c.Naming.RenameEnabled,
		RemoveEmptyDirs: c.Naming.RemoveEmptyDirs,
		DestinationDir:  c.Paths.DestinationDir,
		IgnoreKeywords:  slices.Clone(c.Naming.IgnoreKeywords),
		Numbering:       c.Naming.Numbering,
	}
}

// PreferenceField names a single preference.
type PreferenceField string

const (
	FieldTemplate        PreferenceField = "template"
	FieldSeasonPrefix    PreferenceField = "season_prefix"
	FieldLeadingZero     PreferenceField = "leading_zero"
	FieldMoveEnabled     PreferenceField = "move_enabled"
	FieldRenameEnabled   PreferenceField = "rename_enabled"
	FieldRemoveEmptyDirs PreferenceField = "remove_empty_dirs"
	FieldDestinationDir  PreferenceField = "destination_dir"
	FieldIgnoreKeywords  PreferenceField = "ignore_keywords"
	FieldNumbering       PreferenceField = "numbering"
)

// PreferenceChange describes one preference whose value changed.
type PreferenceChange struct {
	Field PreferenceField
	Old   string
	New   string
}

// AffectsDestination reports whether files must rebuild their destination
// options after this change.
func (c PreferenceChange) AffectsDestination() bool {
	switch c.Field {
	case FieldTemplate, FieldSeasonPrefix, FieldLeadingZero, FieldMoveEnabled,
		FieldRenameEnabled, FieldDestinationDir:
		return true
	default:
		return false
	}
}

// AffectsLookup reports whether episode lookups must be redone.
func (c PreferenceChange) AffectsLookup() bool {
	return c.Field == FieldNumbering
}

// Diff returns one change per field that differs between old and next.
func Diff(old, next Preferences) []PreferenceChange {
	var changes []PreferenceChange
	add := func(field PreferenceField, a, b string) {
		if a != b {
			changes = append(changes, PreferenceChange{Field: field, Old: a, New: b})
		}
	}
	add(FieldTemplate, old.Template, next.Template)
	add(FieldSeasonPrefix, old.SeasonPrefix, next.SeasonPrefix)
	add(FieldLeadingZero, strconv.FormatBool(old.LeadingZero), strconv.FormatBool(next.LeadingZero))
	add(FieldMoveEnabled, strconv.FormatBool(old.MoveEnabled), strconv.FormatBool(next.MoveEnabled))
	add(FieldRenameEnabled, strconv.FormatBool(old.RenameEnabled), strconv.FormatBool(next.RenameEnabled))
	add(FieldRemoveEmptyDirs, strconv.FormatBool(old.RemoveEmptyDirs), strconv.FormatBool(next.RemoveEmptyDirs))
	add(FieldDestinationDir, old.DestinationDir, next.DestinationDir)
	add(FieldIgnoreKeywords, strings.Join(old.IgnoreKeywords, ","), strings.Join(next.IgnoreKeywords, ","))
	add(FieldNumbering, old.Numbering, next.Numbering)
	return changes
}

// Watchers holds the current preferences and fans change events out to
// registered callbacks. Callbacks run synchronously on the publishing
// goroutine, after the new preferences are visible through Current.
type Watchers struct {
	mu        sync.Mutex
	current   Preferences
	callbacks []func(PreferenceChange)
}

// NewWatchers seeds the watcher set with the initial preferences.
func NewWatchers(initial Preferences) *Watchers {
	return &Watchers{current: initial}
}

// Subscribe registers a callback for future changes.
func (w *Watchers) Subscribe(fn func(PreferenceChange)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns a copy of the active preferences.
func (w *Watchers) Current() Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefs := w.current
	prefs.IgnoreKeywords = slices.Clone(prefs.IgnoreKeywords)
	return prefs
}

// Update replaces the preferences and notifies subscribers of each changed
// field. It returns the published changes.
func (w *Watchers) Update(next Preferences) []PreferenceChange {
	w.mu.Lock()
	changes := Diff(w.current, next)
	w.current = next
	callbacks := slices.Clone(w.callbacks)
	w.mu.Unlock()

	for _, change := range changes {
		for _, fn := range callbacks {
			fn(change)
		}
	}
	return changes
}
