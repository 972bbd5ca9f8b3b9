package fileepisode

import "tvshelf/internal/filename"

// ParseState tracks filename parsing. It never reverts once set.
type ParseState int

const (
	Unparsed ParseState = iota
	Parsed
	BadParse
)

func (s ParseState) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case BadParse:
		return "bad_parse"
	default:
		return "unparsed"
	}
}

func parseStateFor(outcome filename.Outcome) ParseState {
	switch outcome {
	case filename.Parsed:
		return Parsed
	case filename.BadParse:
		return BadParse
	default:
		return Unparsed
	}
}

// CatalogState tracks show lookup and listings resolution. GotListings is
// the only state from which a file can be renamed.
type CatalogState int

const (
	NotStarted CatalogState = iota
	GotShow
	Unfound
	GotListings
	NoListings
	NoMatch
)

func (s CatalogState) String() string {
	switch s {
	case GotShow:
		return "got_show"
	case Unfound:
		return "unfound"
	case GotListings:
		return "got_listings"
	case NoListings:
		return "no_listings"
	case NoMatch:
		return "no_match"
	default:
		return "not_started"
	}
}

// MoveState tracks the file on disk.
type MoveState int

const (
	Unchecked MoveState = iota
	NoFile
	Unmoved
	Moving
	Renamed
	Copied
	// CopiedNotCleaned means the destination holds a complete copy but the
	// source could not be removed.
	CopiedNotCleaned
	FailToMove
	// Misnamed means the file was relocated under a versioned name because
	// its desired destination was occupied.
	Misnamed
	AlreadyInPlace
)

func (s MoveState) String() string {
	switch s {
	case NoFile:
		return "no_file"
	case Unmoved:
		return "unmoved"
	case Moving:
		return "moving"
	case Renamed:
		return "renamed"
	case Copied:
		return "copied"
	case CopiedNotCleaned:
		return "copied_not_cleaned"
	case FailToMove:
		return "fail_to_move"
	case Misnamed:
		return "misnamed"
	case AlreadyInPlace:
		return "already_in_place"
	default:
		return "unchecked"
	}
}

// Terminal reports whether a move has finished one way or another.
func (s MoveState) Terminal() bool {
	switch s {
	case Renamed, Copied, CopiedNotCleaned, FailToMove, Misnamed, AlreadyInPlace:
		return true
	default:
		return false
	}
}

// moveTransitions lists the allowed move state changes.
var moveTransitions = map[MoveState][]MoveState{
	Unchecked: {NoFile, Unmoved, Moving},
	NoFile:    {NoFile, Unmoved},
	Unmoved:   {NoFile, Unmoved, Moving, FailToMove},
	Moving:    {Unmoved, NoFile, Renamed, Copied, CopiedNotCleaned, FailToMove, Misnamed, AlreadyInPlace},
}

func canMove(from, to MoveState) bool {
	for _, allowed := range moveTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
