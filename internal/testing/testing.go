// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/shared"
)

// MockGenerator is a test double for [services.Generator].
//
// Songs maps a theme to the list returned for it; unknown themes get Err or an empty list.
type MockGenerator struct {
	Songs     map[string][]string
	Err       error
	NameValue string
	NameErr   error
	Calls     map[string]int
	NameCalls int
}

func NewMockGenerator(songs map[string][]string) *MockGenerator {
	return &MockGenerator{Songs: songs, Calls: map[string]int{}}
}

func (m *MockGenerator) GenerateSongs(ctx context.Context, theme string) ([]string, error) {
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[theme]++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]string(nil), m.Songs[theme]...), nil
}

func (m *MockGenerator) GeneratePlaylistName(ctx context.Context, songs []string) (string, error) {
	m.NameCalls++
	return m.NameValue, m.NameErr
}

func (m *MockGenerator) Name() string { return "mock" }

// TotalCalls returns the number of GenerateSongs calls across all themes.
func (m *MockGenerator) TotalCalls() int {
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

// MockMusicService is a test double for [services.MusicService].
//
// Songs present in URIs resolve; everything else returns [shared.ErrTrackNotFound].
type MockMusicService struct {
	URIs       map[string]string
	Playlists  map[string]*models.Playlist
	ResolveErr map[string]error
	PublishErr error

	ResolveCalls map[string]int
	Replaced     map[string][]string
	Added        map[string][]string
	Details      map[string][2]string
}

func NewMockMusicService(uris map[string]string) *MockMusicService {
	return &MockMusicService{
		URIs:         uris,
		Playlists:    map[string]*models.Playlist{},
		ResolveErr:   map[string]error{},
		ResolveCalls: map[string]int{},
		Replaced:     map[string][]string{},
		Added:        map[string][]string{},
		Details:      map[string][2]string{},
	}
}

func (m *MockMusicService) ResolveTrack(ctx context.Context, song string) (string, error) {
	m.ResolveCalls[song]++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.ResolveErr[song]; ok {
		return "", err
	}
	uri, ok := m.URIs[song]
	if !ok {
		return "", fmt.Errorf("%w: %q", shared.ErrTrackNotFound, song)
	}
	return uri, nil
}

func (m *MockMusicService) ReplaceItems(ctx context.Context, playlistID string, uris []string) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Replaced[playlistID] = append([]string(nil), uris...)
	return nil
}

func (m *MockMusicService) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return nil
}

func (m *MockMusicService) SetDetails(ctx context.Context, playlistID, name, description string) error {
	m.Details[playlistID] = [2]string{name, description}
	if p, ok := m.Playlists[playlistID]; ok && name != "" {
		p.Name = name
	}
	return nil
}

func (m *MockMusicService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	p, ok := m.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	cp := *p
	return &cp, nil
}

func (m *MockMusicService) Name() string { return "mock" }

// TotalResolveCalls returns the number of ResolveTrack calls across all songs.
func (m *MockMusicService) TotalResolveCalls() int {
	total := 0
	for _, n := range m.ResolveCalls {
		total += n
	}
	return total
}

// Songs returns n distinct "Artist N - Song N" strings with the given prefix.
func Songs(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s Artist %d - %s Song %d", prefix, i, prefix, i)
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
