// Package workflow drives a relocation run end to end.
//
// A Runner scans input paths into FileEpisodes, resolves them against the
// catalog registry (one show lookup per distinct query, one listings
// download per show), and relocates the resolved files through a bounded
// batch. Each relocation run holds an advisory lock on the destination
// root, carries a fresh batch ID in its context and journals every move
// outcome to the history store.
//
// The Runner also subscribes to preference changes: naming changes rebuild
// destination options in place, and a numbering change forces listings to
// be downloaded again before files are re-resolved.
package workflow
