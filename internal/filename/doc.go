// Package filename extracts a probable show name, season, episode and
// resolution tag from an arbitrary video path.
//
// Parse is a pure function: it never touches the filesystem (ancestor
// directory names are read from the path string only) and is safe to call
// from any goroutine. Patterns are tried in a fixed order, most specific
// first, and the first match wins.
package filename
