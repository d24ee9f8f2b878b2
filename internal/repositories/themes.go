package repositories

import (
	"fmt"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/shared"
)

// ThemeCache maps a normalized theme to the songs generated for it.
//
// An entry is written once in full; Add on an existing theme replaces the list.
type ThemeCache struct {
	store *Store[map[string][]string]
}

// NewThemeCache creates a [ThemeCache] backed by doc. Call Load before use.
func NewThemeCache(doc Document, logger *log.Logger) *ThemeCache {
	empty := func() map[string][]string { return map[string][]string{} }
	return &ThemeCache{store: NewStore(doc, empty, logger)}
}

func (c *ThemeCache) Load() error { return c.store.Load() }

// Contains reports whether theme has a cached song list.
func (c *ThemeCache) Contains(theme string) bool {
	_, ok := c.store.data[shared.NormalizeTheme(theme)]
	return ok
}

// Get returns a copy of the cached songs for theme.
func (c *ThemeCache) Get(theme string) ([]string, bool) {
	songs, ok := c.store.data[shared.NormalizeTheme(theme)]
	if !ok {
		return nil, false
	}
	return slices.Clone(songs), true
}

// Require is Get with a [shared.ErrThemeNotFound] error for a miss.
func (c *ThemeCache) Require(theme string) ([]string, error) {
	songs, ok := c.Get(theme)
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrThemeNotFound, shared.NormalizeTheme(theme))
	}
	return songs, nil
}

// Add stores the full song list for theme and persists it.
func (c *ThemeCache) Add(theme string, songs []string) error {
	key := shared.NormalizeTheme(theme)
	return c.store.update(func(m *map[string][]string) {
		(*m)[key] = slices.Clone(songs)
	})
}

// Remove drops theme from the cache so the next request regenerates it.
func (c *ThemeCache) Remove(theme string) error {
	key := shared.NormalizeTheme(theme)
	if _, ok := c.store.data[key]; !ok {
		return fmt.Errorf("%w: %q", shared.ErrThemeNotFound, key)
	}
	return c.store.update(func(m *map[string][]string) {
		delete(*m, key)
	})
}

// Themes returns the cached themes in sorted order.
func (c *ThemeCache) Themes() []string {
	themes := make([]string, 0, len(c.store.data))
	for theme := range c.store.data {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

func (c *ThemeCache) Len() int { return len(c.store.data) }
