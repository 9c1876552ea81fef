package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds song information.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// DisplayTitle returns "Artist - Title" when the artist is known.
func (m Metadata) DisplayTitle() string {
	if m.Artist != "" {
		return m.Artist + " - " + m.Title
	}
	return m.Title
}

// ReadMetadata reads ID3v2 tags from MP3 files. Other formats, and MP3s
// without a title tag, fall back to the file name, split on " - " into
// artist and title when possible.
func ReadMetadata(path string) Metadata {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err == nil {
			defer tag.Close()
			m := Metadata{
				Title:  strings.TrimSpace(tag.Title()),
				Artist: strings.TrimSpace(tag.Artist()),
				Album:  strings.TrimSpace(tag.Album()),
			}
			if m.Title != "" {
				return m
			}
		}
	}
	return metadataFromName(path)
}

func metadataFromName(path string) Metadata {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if artist, title, ok := strings.Cut(name, " - "); ok {
		return Metadata{Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
	}
	return Metadata{Title: name}
}
