// Package episodes holds catalog episode records and the per-show index that
// reconciles the two numbering schemes a catalog can deliver: the order in
// which episodes aired and the order in which they appear on disc releases.
//
// An Index is populated exactly once from a listings download. Every
// (season, episode) pair is read under a single scheme so aired seasons are
// never combined with disc episode numbers. When the two schemes disagree
// about which episode occupies a slot, Lookup returns both candidates rather
// than picking one.
package episodes
