// Package history persists relocation outcomes and the local show catalog in
// SQLite.
//
// The Store owns the database connection, schema initialization and busy
// retries. Every relocation attempt is journaled as a Move row stamped with
// the batch ID of the run that produced it, so the CLI can list recent
// moves or replay what a single batch did.
//
// The shows and episodes tables back LocalCatalog, the catalog.Client used
// when no remote service is configured. ImportListings loads them from a
// TOML listing file.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package history
