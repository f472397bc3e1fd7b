// Package store keeps pipeline configuration snapshots in SQLite.
//
// A snapshot is stored twice over:
//   - configs: one row per distinct configuration, keyed by its content
//     hash, holding the canonical JSON body
//   - revisions: one row per (hash, label) pair, identified by a UUIDv7
//
// Saving the same configuration under the same label again returns the
// existing revision, so Save is idempotent.
//
// # Ordering
//
// Revisions are ordered by seq, a per-database logical counter assigned
// inside the insert transaction. Timestamps are never used for ordering.
// Listing queries use ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// # Integrity
//
// Load recomputes the content hash of the stored body and rejects a row
// whose body no longer matches its key.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
