// Package services defines shared utilities consumed by the workflow and the
// relocation engine.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, stage names, and file paths for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (parse, lookup, listings, conflict, io) for history rows and user
//     facing summaries.
//
// Use these helpers when wiring new workflow logic so error handling and
// observability stay uniform.
package services
