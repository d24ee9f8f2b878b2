package tasks

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/services"
	"github.com/desertthunder/blendify/internal/shared"
)

// ThemeCacher is the part of repositories.ThemeCache the [Blender] needs.
type ThemeCacher interface {
	Get(theme string) ([]string, bool)
	Add(theme string, songs []string) error
}

// Blender fuses per-theme song lists into one playlist.
type Blender struct {
	generator services.Generator
	themes    ThemeCacher
	length    int
	rng       *rand.Rand
	logger    *log.Logger
}

// NewBlender creates a [Blender] targeting length songs in total.
func NewBlender(generator services.Generator, themes ThemeCacher, length int, rng *rand.Rand, logger *log.Logger) *Blender {
	return &Blender{generator: generator, themes: themes, length: length, rng: rng, logger: logger}
}

// SampleSize is the number of songs drawn from each theme: length / themeCount, rounded down.
func SampleSize(length, themeCount int) int {
	if themeCount <= 0 {
		return 0
	}
	return length / themeCount
}

// Blend makes sure every theme has a cached song list, samples the same number of songs from each,
// and merges the samples in theme order, keeping only the first occurrence of a song.
//
// A generator failure aborts with [shared.ErrGeneration]. A cached list shorter than the sample size
// aborts with [shared.ErrInsufficientSongs].
func (b *Blender) Blend(ctx context.Context, themes []string, progress chan<- ProgressUpdate) ([]string, error) {
	if len(themes) == 0 {
		return nil, shared.ErrNoThemes
	}

	size := SampleSize(b.length, len(themes))
	blend := []string{}
	seen := make(map[string]bool)

	for i, theme := range themes {
		theme = shared.NormalizeTheme(theme)

		songs, err := b.ensure(ctx, theme, i+1, len(themes), progress)
		if err != nil {
			return nil, err
		}

		sendProgress(progress, sampleUpdate(i+1, len(themes), size, theme))
		sample, err := b.sample(songs, size)
		if err != nil {
			return nil, fmt.Errorf("%w: theme %q has %d songs, need %d", err, theme, len(songs), size)
		}

		for _, song := range sample {
			if seen[song] {
				continue
			}
			seen[song] = true
			blend = append(blend, song)
		}
	}

	return blend, nil
}

// ensure returns the cached songs for theme, generating and caching them on a miss.
func (b *Blender) ensure(ctx context.Context, theme string, step, total int, progress chan<- ProgressUpdate) ([]string, error) {
	if songs, ok := b.themes.Get(theme); ok {
		sendProgress(progress, generateUpdate(step, total, theme, true))
		return songs, nil
	}

	sendProgress(progress, generateUpdate(step, total, theme, false))
	b.logger.Info("generating songs", "theme", theme, "generator", b.generator.Name())

	songs, err := b.generator.GenerateSongs(ctx, theme)
	if err != nil {
		return nil, fmt.Errorf("%w: theme %q: %v", shared.ErrGeneration, theme, err)
	}

	if err := b.themes.Add(theme, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// sample draws size distinct positions from songs uniformly without replacement.
func (b *Blender) sample(songs []string, size int) ([]string, error) {
	if len(songs) < size {
		return nil, shared.ErrInsufficientSongs
	}

	out := make([]string, 0, size)
	for _, idx := range b.rng.Perm(len(songs))[:size] {
		out = append(out, songs[idx])
	}
	return out, nil
}
