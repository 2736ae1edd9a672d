// Package models defines the domain types shared by the amjp packages.
//
// The package contains two categories of types:
//
// 1. Transfer types passed between the library bridge, the catalog client and the sync engine
//   - [TrackRef] : persistent ID, name and artist of one playlist entry
//   - [LocalizedMetadata] : storefront-localized title, album and artist
//   - [Scope] : which playlists a scan covers
//   - [Outcome] : terminal state of one track in a run
//
// 2. History records persisted in SQLite by the repositories package
//   - [SyncRun] : one invocation of the sync engine with its counters
//   - [TrackUpdate] : one non-skipped track of a run and what happened to it
//
// History records are an audit trail. Idempotency is decided by the JSON ledger alone.
package models
