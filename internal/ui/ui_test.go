package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/repositories"
	"github.com/desertthunder/blendify/internal/shared"
	"github.com/desertthunder/blendify/internal/tasks"
)

const (
	recentID = "37i9dQZF1DXcBWIGoYBM5M"
	otherID  = "5ABHKGoOzxkaa28ttQV9sE"
)

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func press(m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func TestValidators(t *testing.T) {
	t.Run("PlaylistValidator", func(t *testing.T) {
		tests := []struct {
			name    string
			recent  string
			input   string
			want    string
			wantErr bool
		}{
			{"empty uses recent", recentID, "", recentID, false},
			{"empty without recent", "", "", "", true},
			{"raw id", recentID, otherID, otherID, false},
			{"share link", "", "https://open.spotify.com/playlist/" + otherID + "?si=abc", otherID, false},
			{"garbage", recentID, "not a playlist", "", true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := PlaylistValidator(tt.recent)(tt.input)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidPlaylistID) {
						t.Errorf("expected ErrInvalidPlaylistID, got %v", err)
					}
					return
				}
				if err != nil || got != tt.want {
					t.Errorf("got %q, %v; want %q", got, err, tt.want)
				}
			})
		}
	})

	t.Run("ThemeValidator", func(t *testing.T) {
		if _, err := ThemeValidator("ab"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for short input, got %v", err)
		}
		if _, err := ThemeValidator(" | | "); !errors.Is(err, shared.ErrNoThemes) {
			t.Errorf("expected ErrNoThemes, got %v", err)
		}
		if got, err := ThemeValidator("  jazz | rock "); err != nil || got != "jazz | rock" {
			t.Errorf("got %q, %v", got, err)
		}
	})
}

func TestPrompt(t *testing.T) {
	t.Run("re-prompts until valid", func(t *testing.T) {
		p := NewPrompt(PlaylistPromptOpts("", nil))

		m := typeText(p, "nope")
		m, cmd := press(m, tea.KeyEnter)
		if cmd != nil {
			t.Error("invalid input should not quit")
		}
		if _, done := p.Value(); done {
			t.Fatal("invalid input should not complete the prompt")
		}
		if !strings.Contains(m.View(), "invalid playlist ID") {
			t.Errorf("expected error in view, got %q", m.View())
		}

		m = typeText(m, otherID)
		_, cmd = press(m, tea.KeyEnter)
		if cmd == nil {
			t.Error("valid input should quit")
		}
		if v, done := p.Value(); !done || v != otherID {
			t.Errorf("got %q (done=%v), want %q", v, done, otherID)
		}
	})

	t.Run("empty input uses default", func(t *testing.T) {
		p := NewPrompt(PlaylistPromptOpts(recentID, []repositories.PlaylistEntry{{ID: recentID, Name: "Focus"}}))
		if !strings.Contains(p.View(), "Focus ("+recentID+")") {
			t.Errorf("expected history in view, got %q", p.View())
		}

		press(p, tea.KeyEnter)
		if v, done := p.Value(); !done || v != recentID {
			t.Errorf("got %q (done=%v), want %q", v, done, recentID)
		}
	})

	t.Run("escape aborts", func(t *testing.T) {
		p := NewPrompt(ThemePromptOpts([]string{"jazz"}))
		_, cmd := press(p, tea.KeyEsc)
		if cmd == nil || !p.aborted {
			t.Error("expected prompt to abort")
		}
		if p.View() != "" {
			t.Error("aborted prompt should render nothing")
		}
	})
}

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name string
		def  bool
		key  tea.KeyMsg
		want bool
	}{
		{"yes", false, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true},
		{"no", true, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false},
		{"enter takes default", true, tea.KeyMsg{Type: tea.KeyEnter}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfirmation("Rename?", tt.def)
			c.Update(tt.key)
			if !c.done || c.answer != tt.want {
				t.Errorf("got answer=%v done=%v, want %v", c.answer, c.done, tt.want)
			}
		})
	}

	t.Run("other keys are ignored", func(t *testing.T) {
		c := NewConfirmation("Rename?", false)
		if _, cmd := c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil || c.done {
			t.Error("unexpected completion")
		}
		if !strings.Contains(c.View(), "(y/N)") {
			t.Errorf("unexpected view %q", c.View())
		}
	})
}

func TestBlendModel(t *testing.T) {
	blend := &models.Blend{
		Query:   "jazz",
		Name:    "late night jazz",
		Tracks:  []models.Track{{Song: "a - b", URI: "spotify:track:1"}},
		Dropped: []string{"c - d"},
	}

	t.Run("runs to completion", func(t *testing.T) {
		run := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Blend, error) {
			progress <- tasks.ProgressUpdate{Phase: tasks.GenerateSongs, Message: "Generating playlist for jazz..."}
			return blend, nil
		}

		m := NewBlendModel(context.Background(), run)
		cmd := m.start()
		for i := 0; i < 10 && !m.finished; i++ {
			_, cmd = m.Update(cmd())
		}

		result, err := m.Result()
		if err != nil || result != blend {
			t.Fatalf("unexpected outcome %v, %v", result, err)
		}
		view := m.View()
		for _, want := range []string{"Blended 1 tracks from jazz", "late night jazz", "1 songs could not be found"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q: %s", want, view)
			}
		}
	})

	t.Run("logs finished phases", func(t *testing.T) {
		m := NewBlendModel(context.Background(), nil)
		for _, u := range []tasks.ProgressUpdate{
			{Phase: tasks.GenerateSongs, Message: "generating"},
			{Phase: tasks.ResolveTracks, Message: "[1/2] a"},
			{Phase: tasks.ResolveTracks, Message: "[2/2] b"},
			{Phase: tasks.PublishTracks, Message: "pushing"},
		} {
			m.Update(progressUpdateMsg(u))
		}

		if strings.Join(m.log, ",") != "generating" {
			t.Errorf("unexpected log %v", m.log)
		}
		if !strings.Contains(m.View(), "pushing") {
			t.Errorf("expected current message in view, got %q", m.View())
		}
	})

	t.Run("failure", func(t *testing.T) {
		m := NewBlendModel(context.Background(), nil)
		m.Update(blendCompleteMsg(nil, shared.ErrInsufficientSongs))
		if !strings.Contains(m.View(), "Blend failed") {
			t.Errorf("expected failure in view, got %q", m.View())
		}
	})

	t.Run("quit cancels the run", func(t *testing.T) {
		m := NewBlendModel(context.Background(), nil)
		_, cmd := press(m, tea.KeyCtrlC)
		if cmd == nil {
			t.Error("expected quit command")
		}
		if _, err := m.Result(); !errors.Is(err, shared.ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", err)
		}
		if m.ctx.Err() == nil {
			t.Error("expected context to be cancelled")
		}
	})
}
