package models

import (
	"strings"
)

// SongSeparator joins artist and title in generated song strings.
const SongSeparator = " - "

// Playlist contains playlist metadata from the streaming service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Track pairs a generated song string with the URI it resolved to.
type Track struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	URI    string `json:"uri,omitempty"`
}

// Blend is the result of a single blend run.
type Blend struct {
	ID         string   `json:"id"`
	Query      string   `json:"query"`
	Themes     []string `json:"themes"`
	Name       string   `json:"name,omitempty"`
	PlaylistID string   `json:"playlist_id,omitempty"`
	Songs      []string `json:"songs"`
	Tracks     []Track  `json:"tracks"`
	Dropped    []string `json:"dropped,omitempty"`
}

// URIs returns the resolved URIs in track order.
func (b *Blend) URIs() []string {
	uris := make([]string, 0, len(b.Tracks))
	for _, t := range b.Tracks {
		uris = append(uris, t.URI)
	}
	return uris
}

// ParseSong splits an "Artist - Song Title" string on the first separator.
//
// Strings without a separator are treated as a bare title.
func ParseSong(song string) Track {
	song = strings.TrimSpace(song)
	artist, title, ok := strings.Cut(song, SongSeparator)
	if !ok {
		return Track{Song: song, Title: song}
	}
	return Track{Song: song, Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
}
