package repositories

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
)

// MaxPlaylistHistory is how many playlists [PlaylistHistory] remembers.
const MaxPlaylistHistory = 5

type requestLog struct {
	Requests []string `json:"requests"`
}

// RequestHistory records every distinct theme request, oldest first. It is never pruned.
type RequestHistory struct {
	store *Store[requestLog]
}

// NewRequestHistory creates a [RequestHistory] backed by doc. Call Load before use.
func NewRequestHistory(doc Document, logger *log.Logger) *RequestHistory {
	empty := func() requestLog { return requestLog{Requests: []string{}} }
	return &RequestHistory{store: NewStore(doc, empty, logger)}
}

func (h *RequestHistory) Load() error { return h.store.Load() }

// Add appends query unless it has been seen before.
func (h *RequestHistory) Add(query string) error {
	if h.Contains(query) {
		return nil
	}
	return h.store.update(func(r *requestLog) {
		r.Requests = append(r.Requests, query)
	})
}

func (h *RequestHistory) Contains(query string) bool {
	return slices.Contains(h.store.data.Requests, query)
}

// All returns a copy of every request in insertion order.
func (h *RequestHistory) All() []string {
	return slices.Clone(h.store.data.Requests)
}

// Last returns up to n of the newest requests, oldest first.
func (h *RequestHistory) Last(n int) []string {
	requests := h.store.data.Requests
	if n <= 0 {
		return []string{}
	}
	if n < len(requests) {
		requests = requests[len(requests)-n:]
	}
	return slices.Clone(requests)
}

// Search ranks past requests against pattern, best match first. An empty pattern returns everything.
func (h *RequestHistory) Search(pattern string) []string {
	if pattern == "" {
		return h.All()
	}
	matches := fuzzy.Find(pattern, h.store.data.Requests)
	results := make([]string, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.Str)
	}
	return results
}

func (h *RequestHistory) Len() int { return len(h.store.data.Requests) }

type playlistLog struct {
	Recent  string     `json:"recent"`
	History OrderedMap `json:"history"`
}

// PlaylistEntry is one remembered playlist.
type PlaylistEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaylistHistory tracks the playlist last blended into and the names of the last
// [MaxPlaylistHistory] playlists, evicting by insertion order.
type PlaylistHistory struct {
	store *Store[playlistLog]
}

// NewPlaylistHistory creates a [PlaylistHistory] backed by doc. Call Load before use.
func NewPlaylistHistory(doc Document, logger *log.Logger) *PlaylistHistory {
	empty := func() playlistLog { return playlistLog{History: NewOrderedMap()} }
	s := NewStore(doc, empty, logger)
	s.beforeSave = func(p *playlistLog) { p.History.KeepLast(MaxPlaylistHistory) }
	return &PlaylistHistory{store: s}
}

func (h *PlaylistHistory) Load() error { return h.store.Load() }

// Recent returns the ID of the playlist last operated on, or "" before the first run.
func (h *PlaylistHistory) Recent() string { return h.store.data.Recent }

func (h *PlaylistHistory) UpdateRecent(id string) error {
	return h.store.update(func(p *playlistLog) { p.Recent = id })
}

// Add remembers a playlist the first time it is used. Known IDs are left untouched.
func (h *PlaylistHistory) Add(id, name string) error {
	if h.store.data.History.Has(id) {
		return nil
	}
	return h.store.update(func(p *playlistLog) { p.History.Set(id, name) })
}

// UpdateHistory refreshes the name of a known playlist without moving it. Unknown IDs are ignored.
func (h *PlaylistHistory) UpdateHistory(id, name string) error {
	if current, ok := h.store.data.History.Get(id); !ok || current == name {
		return nil
	}
	return h.store.update(func(p *playlistLog) { p.History.Set(id, name) })
}

func (h *PlaylistHistory) Contains(id string) bool { return h.store.data.History.Has(id) }

// LastFive returns the remembered playlists, oldest first.
func (h *PlaylistHistory) LastFive() []PlaylistEntry {
	entries := make([]PlaylistEntry, 0, h.store.data.History.Len())
	for _, id := range h.store.data.History.Keys() {
		name, _ := h.store.data.History.Get(id)
		entries = append(entries, PlaylistEntry{ID: id, Name: name})
	}
	return entries
}

func (h *PlaylistHistory) Len() int { return h.store.data.History.Len() }
