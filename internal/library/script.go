package library

import (
	"fmt"
	"strings"

	"github.com/desertthunder/amjp/internal/models"
)

// Update script return values. The classifier matches on substrings of these.
const (
	responseSuccess = "Success"
	responseAlready = "Error or Already in Library"
)

// Escape makes s safe inside an AppleScript double-quoted literal.
//
// Backslashes are escaped before quotes so the quote escapes are not doubled.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func launchScript(app string) string {
	return fmt.Sprintf(`tell application "%s" to launch`, Escape(app))
}

func readyScript(app string) string {
	return fmt.Sprintf(`tell application "%s" to count of library playlists`, Escape(app))
}

// trackLine is the AppleScript expression appended per track. "\n" is a linefeed inside AppleScript literals.
const trackLine = `set out to out & (persistent ID of t) & "|" & (name of t) & "|" & (artist of t) & "\n"`

func listAllScript(app string) string {
	return fmt.Sprintf(`tell application "%s"
	set out to ""
	set userPlaylists to (every playlist whose special kind is none)
	repeat with p in userPlaylists
		set theTracks to tracks of p
		repeat with t in theTracks
			%s
		end repeat
	end repeat
	return out
end tell`, Escape(app), trackLine)
}

func listPlaylistScript(app, playlist string) string {
	return fmt.Sprintf(`tell application "%s"
	set out to ""
	set theTracks to tracks of playlist "%s"
	repeat with t in theTracks
		%s
	end repeat
	return out
end tell`, Escape(app), Escape(playlist), trackLine)
}

// listScript picks the enumeration script for scope.
func listScript(app string, scope models.Scope) string {
	if scope.All {
		return listAllScript(app)
	}
	return listPlaylistScript(app, scope.Playlist)
}

// updateScript duplicates the track into the main library so the copy is local and editable, then sets
// name, sort name, album, artist and sort artist on the copy.
func updateScript(app, persistentID string, meta models.LocalizedMetadata) string {
	title := Escape(meta.Title)
	album := Escape(meta.Album)
	artist := Escape(meta.Artist)

	return fmt.Sprintf(`tell application "%s"
	try
		set t to (some track whose persistent ID is "%s")
		set libTrack to duplicate t to library playlist 1
		set name of libTrack to "%s"
		set sort name of libTrack to "%s"
		set album of libTrack to "%s"
		set artist of libTrack to "%s"
		set sort artist of libTrack to "%s"
		return "%s"
	on error
		return "%s"
	end try
end tell`, Escape(app), Escape(persistentID), title, title, album, artist, artist, responseSuccess, responseAlready)
}
