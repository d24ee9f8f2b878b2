package services

import (
	"context"

	"github.com/desertthunder/blendify/internal/models"
)

// Generator produces song suggestions for a theme.
type Generator interface {
	// GenerateSongs returns "Artist - Song Title" strings for theme, in the order the model produced them.
	GenerateSongs(ctx context.Context, theme string) ([]string, error)

	// GeneratePlaylistName returns a short "daylist" style name describing songs.
	GeneratePlaylistName(ctx context.Context, songs []string) (string, error)

	// Name returns the provider name (e.g., "openai", "ollama")
	Name() string
}

// MusicService resolves songs and edits playlists on a streaming service.
type MusicService interface {
	// ResolveTrack returns the URI of the best match for song, or [shared.ErrTrackNotFound].
	ResolveTrack(ctx context.Context, song string) (string, error)

	// ReplaceItems overwrites the playlist with uris.
	ReplaceItems(ctx context.Context, playlistID string, uris []string) error

	// AddItems appends uris to the playlist.
	AddItems(ctx context.Context, playlistID string, uris []string) error

	// SetDetails updates the playlist name and description. An empty name keeps the current one.
	SetDetails(ctx context.Context, playlistID, name, description string) error

	// GetPlaylist retrieves playlist metadata by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
