// Package tasks orchestrates a localization pass over the media library with real-time progress reporting.
//
// # Core Operation
//
// [SyncEngine.Run] executes one pass:
//
//  1. Takes the ledger lock and loads the processed IDs
//  2. Ensures the media application is running
//  3. Lists every entry in scope (all user playlists or one named playlist)
//  4. For each entry
//     - skips IDs already in the ledger
//     - skips IDs already looked up earlier in the same pass (a track in N playlists is listed N times)
//     - waits on the rate limiter, looks up the storefront metadata, applies it, and records the ID
//
// The ledger is the only source of idempotency. A failed or unmatched track is not recorded and is retried on the next pass.
//
// # Progress Reporting
//
// # Runs use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # History
//
// The optional [Recorder] interface receives the run summary and each looked-up track.
//
// Recorder errors are logged and never stop a run.
//
// # Implementation
//
// [SyncEngine] depends on:
//   - [Ledger] : ledger.Ledger
//   - [Library] : library.Bridge
//   - [Lookup] : services.ITunesService
//   - [Recorder] : Optional persistence layer (repositories.History)
//   - [Limiter] : rate.Limiter from golang.org/x/time/rate
package tasks
