// Package catalog connects parsed show names to catalog entries and their
// episode listings.
//
// The remote catalog is reached only through the Client interface. Lookup
// outcomes are tagged ShowResult values rather than sentinel shows, and the
// Registry is an explicit store owned by the caller: it caches shows by
// query and by id, coalesces concurrent searches for one query, and
// downloads each show's listings at most once, notifying every listener
// registered while the download was in flight.
package catalog
