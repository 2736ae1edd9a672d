// Package repositories implements SQLite persistence for the sync history.
//
// The history is an audit trail. Nothing here is consulted to decide whether a track is processed; that is the ledger's job.
//
// Key Implementations:
//   - [RunRepository] : one row per sync invocation with per-outcome counters
//   - [UpdateRepository] : one row per non-skipped track in a run
//   - [History] : the recorder the sync engine writes through
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
