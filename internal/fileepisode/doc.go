// Package fileepisode tracks one video file from parsing through catalog
// resolution to relocation.
//
// A FileEpisode owns three independent state machines (parse, catalog and
// move), the candidate episodes found for its placement and the user's
// choice among them. Candidate rebuilding and option selection share one
// mutex so option counts and option lists are always read consistently.
package fileepisode
