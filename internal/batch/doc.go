// Package batch runs relocation units on a bounded worker pool and reports
// progress as (total, remaining) pairs.
//
// Every unit runs under its own deadline. When the deadline passes the unit's
// context is cancelled, the unit is counted as abandoned and progress moves
// on; the worker slot is released once the unit returns. Progress is drained
// in completion order by default, or in submission order when configured.
package batch
