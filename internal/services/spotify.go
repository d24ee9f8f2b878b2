// Spotify implementation of [MusicService]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// MaxPlaylistItems is the most items Spotify accepts in one playlist mutation.
	MaxPlaylistItems = 100

	trackURIPrefix = "spotify:track:"
)

// SpotifyService implements [MusicService] for the Spotify Web API.
// Uses [oauth2] for authentication and [spotify.Client] for API calls.
type SpotifyService struct {
	config  *oauth2.Config
	source  oauth2.TokenSource
	client  *spotify.Client
	baseURL string
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithAPIBaseURL points the API client at another host, e.g. a test server. The URL must end with "/".
func WithAPIBaseURL(url string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = url }
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{config: config}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and starts using it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.SetToken(ctx, token)
	return token, nil
}

// SetToken authenticates the service with a stored token. Expired tokens are refreshed on first use.
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) {
	s.source = oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx, token))
	httpClient := oauth2.NewClient(ctx, s.source)

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(httpClient, opts...)
}

// Token returns the current token, which may have been refreshed since SetToken.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.source == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.source.Token()
}

func (s *SpotifyService) authenticated() error {
	if s.client == nil {
		return fmt.Errorf("%w: run `blendify auth` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// ResolveTrack searches for song and returns the URI of the first track.
func (s *SpotifyService) ResolveTrack(ctx context.Context, song string) (string, error) {
	if err := s.authenticated(); err != nil {
		return "", err
	}

	results, err := s.client.Search(ctx, song, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", wrapSpotifyError(err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return "", fmt.Errorf("%w: %q", shared.ErrTrackNotFound, song)
	}

	return string(results.Tracks.Tracks[0].URI), nil
}

// ReplaceItems overwrites the playlist with uris. Anything past the first [MaxPlaylistItems] is appended in batches.
func (s *SpotifyService) ReplaceItems(ctx context.Context, playlistID string, uris []string) error {
	if err := s.authenticated(); err != nil {
		return err
	}

	ids := trackIDs(uris)
	first := ids[:min(len(ids), MaxPlaylistItems)]
	if err := s.client.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), first...); err != nil {
		return wrapSpotifyError(err)
	}

	return s.addBatches(ctx, playlistID, ids[len(first):])
}

// AddItems appends uris to the playlist in batches of [MaxPlaylistItems].
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if err := s.authenticated(); err != nil {
		return err
	}
	return s.addBatches(ctx, playlistID, trackIDs(uris))
}

func (s *SpotifyService) addBatches(ctx context.Context, playlistID string, ids []spotify.ID) error {
	for start := 0; start < len(ids); start += MaxPlaylistItems {
		end := min(start+MaxPlaylistItems, len(ids))
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[start:end]...); err != nil {
			return wrapSpotifyError(err)
		}
	}
	return nil
}

// SetDetails updates the playlist description, and the name when one is given.
func (s *SpotifyService) SetDetails(ctx context.Context, playlistID, name, description string) error {
	if err := s.authenticated(); err != nil {
		return err
	}

	var err error
	if name == "" {
		err = s.client.ChangePlaylistDescription(ctx, spotify.ID(playlistID), description)
	} else {
		err = s.client.ChangePlaylistNameAndDescription(ctx, spotify.ID(playlistID), name, description)
	}
	if err != nil {
		return wrapSpotifyError(err)
	}
	return nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if err := s.authenticated(); err != nil {
		return nil, err
	}

	sp, err := s.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, wrapSpotifyError(err)
	}

	return &models.Playlist{
		ID:          string(sp.ID),
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       sp.Owner.DisplayName,
		TrackCount:  int(sp.Tracks.Total),
		Public:      sp.IsPublic,
	}, nil
}

// trackIDs converts "spotify:track:<id>" URIs to IDs. Bare IDs pass through unchanged.
func trackIDs(uris []string) []spotify.ID {
	ids := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		ids = append(ids, spotify.ID(strings.TrimPrefix(uri, trackURIPrefix)))
	}
	return ids
}

func wrapSpotifyError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, apiErr.Message)
		}
		return fmt.Errorf("%w: spotify %d: %s", shared.ErrAPIRequest, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("%w: spotify: %v", shared.ErrAPIRequest, err)
}
