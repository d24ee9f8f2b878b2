package tasks

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/repositories"
	"github.com/desertthunder/blendify/internal/shared"
	th "github.com/desertthunder/blendify/internal/testing"
)

const testPlaylistID = "37i9dQZF1DXcBWIGoYBM5M"

func testLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func setupTestStores(t *testing.T) *repositories.Stores {
	t.Helper()

	cfg := shared.DefaultConfig()
	cfg.Storage.Dir = t.TempDir()

	stores, err := repositories.OpenStores(cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to open stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })
	return stores
}

func uriFor(song string) string {
	return "spotify:track:" + song
}

// resolvable maps every song to a fake URI.
func resolvable(songs ...[]string) map[string]string {
	m := map[string]string{}
	for _, list := range songs {
		for _, s := range list {
			m[s] = uriFor(s)
		}
	}
	return m
}

func hasDuplicates(items []string) bool {
	seen := map[string]bool{}
	for _, s := range items {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}

func TestSampleSize(t *testing.T) {
	tests := []struct {
		length, themes, want int
	}{
		{50, 1, 50},
		{50, 3, 16},
		{50, 7, 7},
		{2, 3, 0},
		{50, 0, 0},
	}

	for _, tt := range tests {
		if got := SampleSize(tt.length, tt.themes); got != tt.want {
			t.Errorf("SampleSize(%d, %d) = %d, want %d", tt.length, tt.themes, got, tt.want)
		}
	}
}

func TestBlender(t *testing.T) {
	t.Run("generates once per theme", func(t *testing.T) {
		stores := setupTestStores(t)
		gen := th.NewMockGenerator(map[string][]string{"jazz": th.Songs("jazz", 60)})
		b := NewBlender(gen, stores.Themes, 50, testRand(), testLogger())

		songs, err := b.Blend(context.Background(), []string{"jazz"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 50 {
			t.Errorf("expected 50 songs, got %d", len(songs))
		}
		if gen.Calls["jazz"] != 1 {
			t.Errorf("expected one generator call, got %d", gen.Calls["jazz"])
		}
		if cached, ok := stores.Themes.Get("jazz"); !ok || len(cached) != 60 {
			t.Errorf("expected full list cached, got %d entries", len(cached))
		}

		if _, err := b.Blend(context.Background(), []string{"jazz"}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gen.TotalCalls() != 1 {
			t.Errorf("cached theme should not call the generator again, got %d calls", gen.TotalCalls())
		}
	})

	t.Run("normalizes theme before lookup", func(t *testing.T) {
		stores := setupTestStores(t)
		gen := th.NewMockGenerator(map[string][]string{"moody ambient": th.Songs("ambient", 10)})
		b := NewBlender(gen, stores.Themes, 10, testRand(), testLogger())

		if _, err := b.Blend(context.Background(), []string{"  Moody AMBIENT "}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gen.Calls["moody ambient"] != 1 {
			t.Errorf("expected generator to receive normalized theme, got %v", gen.Calls)
		}
	})

	t.Run("merges without duplicates", func(t *testing.T) {
		stores := setupTestStores(t)
		common := th.Songs("common", 20)
		gen := th.NewMockGenerator(map[string][]string{"a": common, "b": common})
		b := NewBlender(gen, stores.Themes, 20, testRand(), testLogger())

		songs, err := b.Blend(context.Background(), []string{"a", "b"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hasDuplicates(songs) {
			t.Errorf("blend contains duplicates: %v", songs)
		}
		if len(songs) > 20 || len(songs) < 10 {
			t.Errorf("expected between 10 and 20 songs, got %d", len(songs))
		}
	})

	t.Run("keeps theme order", func(t *testing.T) {
		stores := setupTestStores(t)
		aSongs, bSongs := th.Songs("a", 30), th.Songs("b", 30)
		gen := th.NewMockGenerator(map[string][]string{"a": aSongs, "b": bSongs, "c": th.Songs("c", 30)})
		b := NewBlender(gen, stores.Themes, 50, testRand(), testLogger())

		songs, err := b.Blend(context.Background(), []string{"a", "b", "c"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 48 {
			t.Fatalf("expected 3 x 16 songs, got %d", len(songs))
		}
		for i, song := range songs[:16] {
			if !slices.Contains(aSongs, song) {
				t.Errorf("song %d (%q) should come from theme a", i, song)
			}
		}
		for i, song := range songs[16:32] {
			if !slices.Contains(bSongs, song) {
				t.Errorf("song %d (%q) should come from theme b", i+16, song)
			}
		}
	})

	t.Run("insufficient songs is fatal", func(t *testing.T) {
		stores := setupTestStores(t)
		if err := stores.Themes.Add("tiny", th.Songs("tiny", 5)); err != nil {
			t.Fatal(err)
		}
		gen := th.NewMockGenerator(nil)
		b := NewBlender(gen, stores.Themes, 10, testRand(), testLogger())

		songs, err := b.Blend(context.Background(), []string{"tiny"}, nil)
		if !errors.Is(err, shared.ErrInsufficientSongs) {
			t.Errorf("expected ErrInsufficientSongs, got %v", err)
		}
		if songs != nil {
			t.Errorf("expected no partial blend, got %v", songs)
		}
	})

	t.Run("generator failure aborts", func(t *testing.T) {
		stores := setupTestStores(t)
		gen := th.NewMockGenerator(map[string][]string{"a": th.Songs("a", 30)})
		gen.Err = errors.New("rate limited")
		b := NewBlender(gen, stores.Themes, 10, testRand(), testLogger())

		if _, err := b.Blend(context.Background(), []string{"a"}, nil); !errors.Is(err, shared.ErrGeneration) {
			t.Errorf("expected ErrGeneration, got %v", err)
		}
		if stores.Themes.Len() != 0 {
			t.Error("failed generation should not be cached")
		}
	})

	t.Run("no themes", func(t *testing.T) {
		b := NewBlender(th.NewMockGenerator(nil), setupTestStores(t).Themes, 10, testRand(), testLogger())
		if _, err := b.Blend(context.Background(), nil, nil); !errors.Is(err, shared.ErrNoThemes) {
			t.Errorf("expected ErrNoThemes, got %v", err)
		}
	})
}

func TestResolver(t *testing.T) {
	t.Run("caches resolved songs only", func(t *testing.T) {
		stores := setupTestStores(t)
		songs := th.Songs("rock", 4)
		music := th.NewMockMusicService(resolvable(songs[:3]))
		r := NewResolver(music, stores.Tracks, 0, testLogger())

		res, err := r.Resolve(context.Background(), songs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Tracks) != 3 || len(res.Dropped) != 1 || res.Dropped[0] != songs[3] {
			t.Errorf("unexpected resolution %+v", res)
		}
		if res.Tracks[0].URI != uriFor(songs[0]) || res.Tracks[0].Artist != "rock Artist 0" {
			t.Errorf("unexpected track %+v", res.Tracks[0])
		}
		if stores.Tracks.Contains(songs[3]) {
			t.Error("unresolved song should not be cached")
		}

		again, err := r.Resolve(context.Background(), songs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.CacheHits != 3 {
			t.Errorf("expected 3 cache hits, got %d", again.CacheHits)
		}
		for _, song := range songs[:3] {
			if music.ResolveCalls[song] != 1 {
				t.Errorf("%q resolved %d times, want 1", song, music.ResolveCalls[song])
			}
		}
		if music.ResolveCalls[songs[3]] != 2 {
			t.Errorf("unresolved song should be retried, got %d calls", music.ResolveCalls[songs[3]])
		}
	})

	t.Run("service errors drop the song", func(t *testing.T) {
		stores := setupTestStores(t)
		songs := th.Songs("pop", 2)
		music := th.NewMockMusicService(resolvable(songs))
		music.ResolveErr[songs[0]] = errors.New("502 bad gateway")
		r := NewResolver(music, stores.Tracks, 0, testLogger())

		res, err := r.Resolve(context.Background(), songs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Tracks) != 1 || res.Tracks[0].Song != songs[1] {
			t.Errorf("unexpected tracks %+v", res.Tracks)
		}
	})

	t.Run("cancellation aborts", func(t *testing.T) {
		stores := setupTestStores(t)
		songs := th.Songs("pop", 3)
		music := th.NewMockMusicService(resolvable(songs))
		r := NewResolver(music, stores.Tracks, 0, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := r.Resolve(ctx, songs, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if stores.Tracks.Len() != 0 {
			t.Error("nothing should be cached after cancellation")
		}
	})
}

func newTestEngine(t *testing.T, gen *th.MockGenerator, music *th.MockMusicService, length int) (*BlendEngine, *repositories.Stores) {
	t.Helper()
	stores := setupTestStores(t)
	opts := EngineOpts{PlaylistLength: length, Description: "Generated using Blendify"}
	return NewBlendEngine(gen, music, stores, opts, testRand(), testLogger()), stores
}

func TestBlendEngine(t *testing.T) {
	jazz, rock := th.Songs("jazz", 30), th.Songs("rock", 30)

	t.Run("Run replaces playlist", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz, "rock": rock})
		music := th.NewMockMusicService(resolvable(jazz, rock))
		e, stores := newTestEngine(t, gen, music, 20)

		result, err := e.Run(context.Background(), BlendRequest{
			Query:      "Rock | jazz |",
			PlaylistID: testPlaylistID,
			Mode:       shared.PublishReplace,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Query != "Rock | jazz" {
			t.Errorf("unexpected query %q", result.Query)
		}
		if !slices.Equal(result.Themes, []string{"Rock", "jazz"}) {
			t.Errorf("themes should be sorted, got %v", result.Themes)
		}
		if got := stores.Requests.All(); len(got) != 1 || got[0] != result.Query {
			t.Errorf("request history = %v", got)
		}

		replaced := music.Replaced[testPlaylistID]
		if len(replaced) != 20 || hasDuplicates(replaced) {
			t.Errorf("expected 20 distinct uris, got %d", len(replaced))
		}
		if !slices.Equal(replaced, result.URIs()) {
			t.Error("published uris should match the shuffled result")
		}
		if details := music.Details[testPlaylistID]; details[0] != "" || details[1] != "Generated using Blendify" {
			t.Errorf("unexpected details %v", details)
		}
		if stores.Tracks.Len() != 20 {
			t.Errorf("expected 20 cached tracks, got %d", stores.Tracks.Len())
		}
	})

	t.Run("Run appends", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(resolvable(jazz))
		e, _ := newTestEngine(t, gen, music, 10)

		req := BlendRequest{Query: "jazz", PlaylistID: testPlaylistID, Mode: shared.PublishAppend}
		if _, err := e.Run(context.Background(), req, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := e.Run(context.Background(), req, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(music.Added[testPlaylistID]) != 20 || len(music.Replaced) != 0 {
			t.Errorf("expected two appends of 10, got added=%d replaced=%d", len(music.Added[testPlaylistID]), len(music.Replaced))
		}
		if gen.TotalCalls() != 1 {
			t.Errorf("expected one generator call, got %d", gen.TotalCalls())
		}
	})

	t.Run("Run renames", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		gen.NameValue = "  Smoky Late Night Jazz \n"
		music := th.NewMockMusicService(resolvable(jazz))
		music.Playlists[testPlaylistID] = &models.Playlist{ID: testPlaylistID, Name: "Old"}
		e, stores := newTestEngine(t, gen, music, 10)

		if _, err := e.SelectPlaylist(context.Background(), testPlaylistID, nil); err != nil {
			t.Fatal(err)
		}

		result, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID, Rename: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Name != "smoky late night jazz" {
			t.Errorf("expected lower-cased name, got %q", result.Name)
		}
		if music.Details[testPlaylistID][0] != "smoky late night jazz" {
			t.Errorf("unexpected details %v", music.Details[testPlaylistID])
		}
		if entries := stores.Playlists.LastFive(); len(entries) != 1 || entries[0].Name != "smoky late night jazz" {
			t.Errorf("history should carry the new name, got %+v", entries)
		}
	})

	t.Run("rename failure keeps current name", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		gen.NameErr = errors.New("boom")
		music := th.NewMockMusicService(resolvable(jazz))
		e, _ := newTestEngine(t, gen, music, 10)

		result, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID, Rename: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Name != "" || music.Details[testPlaylistID][0] != "" {
			t.Errorf("name should be left unchanged, got %q", result.Name)
		}
	})

	t.Run("insufficient songs leaves downstream stores alone", func(t *testing.T) {
		gen := th.NewMockGenerator(nil)
		music := th.NewMockMusicService(nil)
		e, stores := newTestEngine(t, gen, music, 10)
		if err := stores.Themes.Add("tiny", th.Songs("tiny", 5)); err != nil {
			t.Fatal(err)
		}

		_, err := e.Run(context.Background(), BlendRequest{Query: "tiny", PlaylistID: testPlaylistID}, nil)
		if !errors.Is(err, shared.ErrInsufficientSongs) {
			t.Fatalf("expected ErrInsufficientSongs, got %v", err)
		}
		if stores.Tracks.Len() != 0 || music.TotalResolveCalls() != 0 || len(music.Replaced) != 0 {
			t.Error("aborted run should not resolve or publish")
		}
	})

	t.Run("dry run does not publish", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(resolvable(jazz[:5]))
		e, _ := newTestEngine(t, gen, music, 30)

		result, err := e.Run(context.Background(), BlendRequest{Query: "jazz", DryRun: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Tracks) != 5 || len(result.Dropped) != 25 {
			t.Errorf("expected 5 tracks and 25 dropped, got %d/%d", len(result.Tracks), len(result.Dropped))
		}
		if len(music.Replaced) != 0 || len(music.Details) != 0 {
			t.Error("dry run should not touch the playlist")
		}
	})

	t.Run("nothing resolved", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(nil)
		e, _ := newTestEngine(t, gen, music, 10)

		_, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID}, nil)
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if len(music.Replaced) != 0 {
			t.Error("empty blend should not replace the playlist")
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(resolvable(jazz))
		music.PublishErr = errors.New("403 forbidden")
		e, _ := newTestEngine(t, gen, music, 10)

		_, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID}, nil)
		if !errors.Is(err, shared.ErrPublish) {
			t.Errorf("expected ErrPublish, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		e, _ := newTestEngine(t, th.NewMockGenerator(nil), th.NewMockMusicService(nil), 10)

		if _, err := e.Run(context.Background(), BlendRequest{Query: "jazz"}, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := e.Run(context.Background(), BlendRequest{Query: " | ", PlaylistID: testPlaylistID}, nil); !errors.Is(err, shared.ErrNoThemes) {
			t.Errorf("expected ErrNoThemes, got %v", err)
		}
	})

	t.Run("progress never blocks", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(resolvable(jazz))
		e, _ := newTestEngine(t, gen, music, 10)

		progress := make(chan ProgressUpdate)
		if _, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("progress phases", func(t *testing.T) {
		gen := th.NewMockGenerator(map[string][]string{"jazz": jazz})
		music := th.NewMockMusicService(resolvable(jazz))
		e, _ := newTestEngine(t, gen, music, 5)

		progress := make(chan ProgressUpdate, 64)
		if _, err := e.Run(context.Background(), BlendRequest{Query: "jazz", PlaylistID: testPlaylistID}, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		seen := map[Phase]bool{}
		for u := range progress {
			seen[u.Phase] = true
		}
		for _, p := range []Phase{GenerateSongs, SampleSongs, ResolveTracks, ShuffleTracks, PublishTracks, UpdateDetails} {
			if !seen[p] {
				t.Errorf("missing progress for phase %s", p)
			}
		}
	})
}

func TestPlaylistHistoryOperations(t *testing.T) {
	t.Run("SelectPlaylist", func(t *testing.T) {
		music := th.NewMockMusicService(nil)
		music.Playlists[testPlaylistID] = &models.Playlist{ID: testPlaylistID, Name: "Focus"}
		e, stores := newTestEngine(t, th.NewMockGenerator(nil), music, 10)

		p, err := e.SelectPlaylist(context.Background(), testPlaylistID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "Focus" || stores.Playlists.Recent() != testPlaylistID {
			t.Errorf("unexpected selection %+v, recent %q", p, stores.Playlists.Recent())
		}

		music.Playlists[testPlaylistID].Name = "Deep Focus"
		if _, err := e.SelectPlaylist(context.Background(), testPlaylistID, nil); err != nil {
			t.Fatal(err)
		}
		entries := stores.Playlists.LastFive()
		if len(entries) != 1 || entries[0].Name != "Deep Focus" {
			t.Errorf("expected renamed single entry, got %+v", entries)
		}

		if _, err := e.SelectPlaylist(context.Background(), "missingmissingmissing1", nil); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if stores.Playlists.Recent() != testPlaylistID {
			t.Error("failed selection should not change recent")
		}
	})

	t.Run("RefreshHistory", func(t *testing.T) {
		music := th.NewMockMusicService(nil)
		e, stores := newTestEngine(t, th.NewMockGenerator(nil), music, 10)

		_ = stores.Playlists.Add("p1", "Old Name")
		_ = stores.Playlists.Add("p2", "Gone")
		_ = stores.Playlists.Add("p3", "Same")
		music.Playlists["p1"] = &models.Playlist{ID: "p1", Name: "New Name"}
		music.Playlists["p3"] = &models.Playlist{ID: "p3", Name: "Same"}

		entries, err := e.RefreshHistory(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []repositories.PlaylistEntry{{ID: "p1", Name: "New Name"}, {ID: "p2", Name: "Gone"}, {ID: "p3", Name: "Same"}}
		if !slices.Equal(entries, want) {
			t.Errorf("RefreshHistory() = %+v, want %+v", entries, want)
		}
	})
}
