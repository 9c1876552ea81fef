// Package media decides which command-line paths cdviz can turn into
// tracks: audio files the player decodes in full, and local playlists that
// list such files.
package media

import (
	"slices"
	"strings"
)

// decodableExts lists the extensions player.Decode handles, in the order
// they are shown to the user. AAC and other formats are rejected up front so
// a folder scan never queues a track that would fail to load.
var decodableExts = []string{".mp3", ".wav", ".flac", ".ogg"}

var playlistExts = []string{".m3u", ".m3u8", ".pls"}

// IsSupportedExt reports whether a file with this extension can be played.
// The match ignores case.
func IsSupportedExt(ext string) bool {
	return slices.Contains(decodableExts, strings.ToLower(ext))
}

// IsPlaylistExt reports whether ext names a playlist file read by
// ParseLocalPlaylist.
func IsPlaylistExt(ext string) bool {
	return slices.Contains(playlistExts, strings.ToLower(ext))
}

// SupportedExtsList returns the playable extensions for usage and error
// messages, e.g. ".mp3, .wav, .flac, .ogg".
func SupportedExtsList() string {
	return strings.Join(decodableExts, ", ")
}
