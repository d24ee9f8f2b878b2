package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")
	ErrAborted        = fmt.Errorf("aborted by user")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrGeneration         = fmt.Errorf("playlist generation failed")
	ErrPublish            = fmt.Errorf("playlist publish failed")

	// Cache errors
	ErrThemeNotFound     = fmt.Errorf("theme not cached")
	ErrSongNotCached     = fmt.Errorf("song not cached")
	ErrInsufficientSongs = fmt.Errorf("not enough songs to sample")
	ErrStorage           = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrNoThemes          = fmt.Errorf("no themes provided")
	ErrInvalidPlaylistID = fmt.Errorf("invalid playlist ID")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)
