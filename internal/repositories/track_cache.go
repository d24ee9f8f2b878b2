package repositories

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/shared"
)

// TrackCache maps a song string to the URI it resolved to.
//
// Only successful resolutions are cached, so unresolved songs are looked up again on every run.
type TrackCache struct {
	store *Store[map[string]string]
}

// NewTrackCache creates a [TrackCache] backed by doc. Call Load before use.
func NewTrackCache(doc Document, logger *log.Logger) *TrackCache {
	empty := func() map[string]string { return map[string]string{} }
	return &TrackCache{store: NewStore(doc, empty, logger)}
}

func (c *TrackCache) Load() error { return c.store.Load() }

func (c *TrackCache) Contains(song string) bool {
	_, ok := c.store.data[song]
	return ok
}

func (c *TrackCache) Get(song string) (string, bool) {
	uri, ok := c.store.data[song]
	return uri, ok
}

// Require is Get with a [shared.ErrSongNotCached] error for a miss.
func (c *TrackCache) Require(song string) (string, error) {
	uri, ok := c.store.data[song]
	if !ok {
		return "", fmt.Errorf("%w: %q", shared.ErrSongNotCached, song)
	}
	return uri, nil
}

// Add caches uri for song. Empty URIs are rejected since they mean the song never resolved.
func (c *TrackCache) Add(song, uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty uri for %q", shared.ErrInvalidInput, song)
	}
	return c.store.update(func(m *map[string]string) {
		(*m)[song] = uri
	})
}

func (c *TrackCache) Remove(song string) error {
	if _, ok := c.store.data[song]; !ok {
		return fmt.Errorf("%w: %q", shared.ErrSongNotCached, song)
	}
	return c.store.update(func(m *map[string]string) {
		delete(*m, song)
	})
}

func (c *TrackCache) Len() int { return len(c.store.data) }
