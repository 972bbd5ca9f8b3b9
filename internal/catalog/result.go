package catalog

import (
	"fmt"
	"slices"

	"tvshelf/internal/episodes"
	"tvshelf/internal/textutil"
)

// Reason explains a failed lookup.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonAmbiguous
	ReasonTimeout
	ReasonTransient
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonAmbiguous:
		return "ambiguous"
	case ReasonTimeout:
		return "timeout"
	case ReasonTransient:
		return "transient"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return "none"
	}
}

type resultKind int

const (
	resultNotFound resultKind = iota
	resultFound
	resultFailed
)

// ShowResult is the outcome of a show lookup: Found, NotFound or Failed.
type ShowResult struct {
	kind       resultKind
	query      string
	show       *episodes.Show
	reason     Reason
	candidates []ShowSummary
	err        error
}

// Found wraps a matched show.
func Found(query string, show *episodes.Show) ShowResult {
	return ShowResult{kind: resultFound, query: query, show: show}
}

// NotFound reports that the catalog had no match for query.
func NotFound(query string) ShowResult {
	return ShowResult{kind: resultNotFound, query: query}
}

// Failed reports a lookup that could not produce a single show.
func Failed(query string, reason Reason, err error, candidates ...ShowSummary) ShowResult {
	return ShowResult{kind: resultFailed, query: query, reason: reason, err: err, candidates: candidates}
}

// failedFrom maps a client error onto a Failed or NotFound result.
func failedFrom(query string, err error) ShowResult {
	failure, _ := AsFailure(err)
	switch {
	case failure.Kind == FailureNotFound:
		return NotFound(query)
	case failure.Kind == FailureUnsupported:
		return Failed(query, ReasonUnsupported, failure)
	case failure.Timeout:
		return Failed(query, ReasonTimeout, failure)
	default:
		return Failed(query, ReasonTransient, failure)
	}
}

// Show returns the matched show when the lookup succeeded.
func (r ShowResult) Show() (*episodes.Show, bool) {
	return r.show, r.kind == resultFound && r.show != nil
}

// IsFound reports whether a show was matched.
func (r ShowResult) IsFound() bool { return r.kind == resultFound && r.show != nil }

// IsNotFound reports a completed lookup with no match.
func (r ShowResult) IsNotFound() bool { return r.kind == resultNotFound }

// Query returns the normalized query the lookup ran with.
func (r ShowResult) Query() string { return r.query }

// Reason returns why the lookup failed, or ReasonNone.
func (r ShowResult) Reason() Reason { return r.reason }

// Err returns the underlying client error of a failed lookup.
func (r ShowResult) Err() error { return r.err }

// Candidates returns the ranked candidates of an ambiguous lookup.
func (r ShowResult) Candidates() []ShowSummary { return slices.Clone(r.candidates) }

// Placeholder is the user-facing text shown instead of a destination when
// the lookup did not produce a show.
func (r ShowResult) Placeholder() string {
	name := textutil.DisplayName(r.query)
	if name == "" {
		name = "unknown show"
	}
	switch r.kind {
	case resultFound:
		return ""
	case resultNotFound:
		return fmt.Sprintf("%s (not found)", name)
	}
	switch r.reason {
	case ReasonAmbiguous:
		return fmt.Sprintf("%s (ambiguous: %d possible shows)", name, len(r.candidates))
	case ReasonTimeout:
		return fmt.Sprintf("%s (catalog timed out)", name)
	case ReasonUnsupported:
		return fmt.Sprintf("%s (catalog service no longer supported)", name)
	default:
		return fmt.Sprintf("%s (catalog unavailable)", name)
	}
}

// ListingsPlaceholder is the user-facing text for a show whose listings
// could not be downloaded.
func ListingsPlaceholder(show *episodes.Show, err error) string {
	name := "unknown show"
	if show != nil && show.Name != "" {
		name = show.Name
	}
	failure, ok := AsFailure(err)
	if !ok {
		return fmt.Sprintf("%s (no listings)", name)
	}
	switch {
	case failure.Kind == FailureNotFound:
		return fmt.Sprintf("%s (no listings found)", name)
	case failure.Timeout:
		return fmt.Sprintf("%s (listings download timed out)", name)
	case failure.Kind == FailureUnsupported:
		return fmt.Sprintf("%s (catalog service no longer supported)", name)
	default:
		return fmt.Sprintf("%s (listings unavailable)", name)
	}
}
