// Package services implements the external collaborators of a blend: song generators and the streaming service.
//
// # Generators
//
// [Generator] turns a theme into a list of "Artist - Song Title" strings. [OpenAIGenerator] calls the
// OpenAI Responses API with web search enabled; [OllamaGenerator] calls a local Ollama chat endpoint.
// Both send the same instructions: treat the theme literally, one song per line with no numbering or
// quotes, and at most playlist_length/10 songs by the same artist. The artist cap is advisory and is
// not checked locally.
//
// # Spotify Implementation
//
// [SpotifyService] implements [MusicService] on top of github.com/zmb3/spotify/v2. It uses OAuth2 for
// authentication with automatic token refresh; [SpotifyService.Token] exposes the refreshed token so
// the CLI can persist it.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token set
//   - [shared.ErrAPIRequest] : HTTP request failed or returned an error status
//   - [shared.ErrTrackNotFound] : search returned no tracks
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
