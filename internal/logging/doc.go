// Package logging assembles structured slog loggers and formatting helpers used
// across tvshelf.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with batch IDs, stages, and file paths. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
