// Package relocate moves one file to its computed destination.
//
// A move is an atomic rename when source and destination share a volume and
// a chunked copy followed by deleting the source otherwise. Every failure is
// returned as an Outcome on the Result; Move never panics or returns an
// error across the unit boundary. A destination occupied by a different
// file is reported as a Conflict and left untouched; callers retry with
// NextVersion.
package relocate
