package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/blendify/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheThemes lists cached themes with their song counts.
func (r *Runner) CacheThemes(ctx context.Context, cmd *cli.Command) error {
	stores, err := r.Stores()
	if err != nil {
		return err
	}

	themes := stores.Themes.Themes()
	if cmd.Bool("json") {
		counts := make(map[string]int, len(themes))
		for _, theme := range themes {
			songs, _ := stores.Themes.Get(theme)
			counts[theme] = len(songs)
		}
		return r.writeJSON(counts, true)
	}

	if len(themes) == 0 {
		return r.writePlain("No cached themes.\n")
	}
	for _, theme := range themes {
		songs, _ := stores.Themes.Get(theme)
		r.writePlain("%s (%d songs)\n", theme, len(songs))
	}
	return nil
}

// CacheShow prints the cached songs for a theme, marking those with a cached track URI.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	theme := cmd.StringArg("theme")
	if theme == "" {
		return fmt.Errorf("%w: theme", shared.ErrMissingArgument)
	}

	stores, err := r.Stores()
	if err != nil {
		return err
	}

	songs, err := stores.Themes.Require(theme)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	resolved := 0
	for i, song := range songs {
		marker := " "
		if stores.Tracks.Contains(song) {
			marker = "✓"
			resolved++
		}
		r.writePlain("%s %d. %s\n", marker, i+1, song)
	}
	r.writePlainln("%d songs, %d with a cached track", len(songs), resolved)
	return nil
}

// CacheForget removes a theme so the next request regenerates it. Song URIs stay cached.
func (r *Runner) CacheForget(ctx context.Context, cmd *cli.Command) error {
	theme := cmd.StringArg("theme")
	if theme == "" {
		return fmt.Errorf("%w: theme", shared.ErrMissingArgument)
	}

	stores, err := r.Stores()
	if err != nil {
		return err
	}

	if err := stores.Themes.Remove(theme); err != nil {
		return err
	}

	r.logger.Info("forgot theme", "theme", shared.NormalizeTheme(theme))
	return r.writePlain("✓ Removed %s\n", shared.NormalizeTheme(theme))
}

// CacheStats prints the size of each store.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	stores, err := r.Stores()
	if err != nil {
		return err
	}

	r.writePlain("Storage: %s (%s)\n", r.config.Storage.Driver, stores.Location())
	r.writePlain("Themes: %d\n", stores.Themes.Len())
	r.writePlain("Songs: %d\n", stores.Tracks.Len())
	r.writePlain("Requests: %d\n", stores.Requests.Len())
	r.writePlain("Playlists: %d\n", stores.Playlists.Len())
	return nil
}
