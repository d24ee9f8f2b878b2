package shared

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// ThemeSeparator splits a multi-theme request.
	ThemeSeparator = "|"
	// ThemeJoiner rejoins canonical themes for display and request history.
	ThemeJoiner = " | "
	// MinQueryLength is the shortest theme request accepted from a prompt.
	MinQueryLength = 3
)

var playlistIDPattern = regexp.MustCompile(`(?:playlist/)?([A-Za-z0-9]{22})`)

// NormalizeTheme lower-cases and trims a theme for use as a cache key.
func NormalizeTheme(theme string) string {
	return strings.ToLower(strings.TrimSpace(theme))
}

// SplitThemes splits a pipe-delimited request into trimmed, non-empty themes in sorted order.
//
// Sorting keeps cache keys and history entries stable regardless of how the user ordered the request.
func SplitThemes(query string) []string {
	themes := []string{}
	for _, part := range strings.Split(query, ThemeSeparator) {
		if t := strings.TrimSpace(part); t != "" {
			themes = append(themes, t)
		}
	}
	sort.Strings(themes)
	return themes
}

// JoinThemes renders canonical themes as a single request string.
func JoinThemes(themes []string) string {
	return strings.Join(themes, ThemeJoiner)
}

// ValidateQuery reports whether a raw theme request is long enough to be worth splitting.
func ValidateQuery(query string) error {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return fmt.Errorf("%w: theme must be at least %d characters", ErrInvalidInput, MinQueryLength)
	}
	if len(SplitThemes(query)) == 0 {
		return ErrNoThemes
	}
	return nil
}

// ParsePlaylistID extracts a 22-character Spotify playlist ID from a raw ID or share link.
func ParsePlaylistID(input string) (string, error) {
	m := playlistIDPattern.FindStringSubmatch(strings.TrimSpace(input))
	if len(m) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistID, input)
	}
	return m[1], nil
}
