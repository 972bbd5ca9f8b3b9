package relocate

// Outcome is the terminal state of one move.
type Outcome int

const (
	Failed Outcome = iota
	Renamed
	Copied
	// CopiedNotCleaned means the destination is complete but the source could
	// not be deleted. It is neither full success nor failure.
	CopiedNotCleaned
	AlreadyInPlace
	Conflict
	Missing
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Renamed:
		return "renamed"
	case Copied:
		return "copied"
	case CopiedNotCleaned:
		return "copied_not_cleaned"
	case AlreadyInPlace:
		return "already_in_place"
	case Conflict:
		return "conflict"
	case Missing:
		return "missing"
	case Cancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Placed reports whether the destination now holds the file.
func (o Outcome) Placed() bool {
	switch o {
	case Renamed, Copied, CopiedNotCleaned, AlreadyInPlace:
		return true
	default:
		return false
	}
}

// Complete reports full success: the file is at its destination and nothing
// was left behind.
func (o Outcome) Complete() bool {
	return o.Placed() && o != CopiedNotCleaned
}

// Result describes one move.
type Result struct {
	Outcome     Outcome
	Source      string
	Destination string
	Target      Target
	Bytes       int64
	Err         error
}
