// Package ui implements an interactive terminal interface for a sync run using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow:
//  1. [ConfirmView] : Review the scope and mode before anything runs
//  2. [SyncView] : Monitor real-time progress updates with a spinner and the most recent track outcomes
//  3. [ResultView] : Display the outcome counters and a filterable list of looked-up tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during runs.
//
// Pressing esc during a run cancels its context. The engine finishes the in-flight track and the ledger stays consistent.
//
// Keyboard navigation uses vim-style bindings (j/k, y/n, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
