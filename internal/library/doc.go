// Package library drives the macOS Music app through AppleScript.
//
// # Scripter
//
// Every interaction is a single AppleScript program handed to a [Scripter]. [OSAScript] runs it as
// `osascript -e <script>` and returns trimmed standard output. Standard error is kept on failure and
// attached to a [shared.ErrScriptFailed] error.
//
// # Bridge
//
// [Bridge] exposes the three operations the sync engine needs:
//   - [Bridge.EnsureRunning] : launch the app and wait for its library to answer
//   - [Bridge.ListTracks] : dump "persistent_id|name|artist" lines for a [models.Scope]
//   - [Bridge.ApplyLocalizedMetadata] : duplicate a track into library playlist 1 and overwrite its tags
//
// # Escaping
//
// Values are interpolated into AppleScript string literals, so each one goes through [Escape] first:
// backslashes are doubled, then double quotes are backslash-escaped.
package library
