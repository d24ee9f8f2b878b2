package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/shared"
	"github.com/desertthunder/blendify/internal/tasks"
)

// RunFunc performs a blend, reporting progress on the channel.
type RunFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Blend, error)

// BlendModel shows live progress while a blend runs in the background.
type BlendModel struct {
	ctx          context.Context
	cancel       context.CancelFunc
	run          RunFunc
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	log          []string
	result       *models.Blend
	err          error
	finished     bool
}

// NewBlendModel creates a new [BlendModel] that starts run on Init.
func NewBlendModel(ctx context.Context, run RunFunc) *BlendModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &BlendModel{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (m *BlendModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m *BlendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.cancel()
			m.err = shared.ErrAborted
			m.finished = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.record(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgBlendComplete:
			outcome := msg.data.(blendOutcome)
			m.result, m.err = outcome.result, outcome.err
			m.finished = true
			m.cancel()
			return m, tea.Quit
		}
	}

	return m, nil
}

// record moves the previous message into the log, except for per-song resolve messages.
func (m *BlendModel) record(update tasks.ProgressUpdate) {
	if m.progress.Message != "" && m.progress.Phase != tasks.ResolveTracks {
		m.log = append(m.log, m.progress.Message)
	}
	m.progress = update
}

func (m *BlendModel) start() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.doneChan = make(chan Msg, 1)

	progress, done := m.progressChan, m.doneChan
	go func() {
		result, err := m.run(m.ctx, progress)
		done <- blendCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *BlendModel) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *BlendModel) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Blendify"))
	b.WriteString("\n")
	for _, line := range m.log {
		b.WriteString(styles.ok.Render("✓ ") + line + "\n")
	}

	if m.finished {
		b.WriteString(m.renderResult())
		return b.String()
	}

	if m.progress.Message != "" {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.progress.Message)
	} else {
		fmt.Fprintf(&b, "%s Starting...\n", m.spinner.View())
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *BlendModel) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("❌ Blend failed: %v", m.err)) + "\n"
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n"
	}

	out := styles.ok.Render(fmt.Sprintf("✓ Blended %d tracks from %s", len(m.result.Tracks), m.result.Query)) + "\n"
	if m.result.Name != "" {
		out += fmt.Sprintf("Playlist name: %s\n", m.result.Name)
	}
	if n := len(m.result.Dropped); n > 0 {
		out += styles.warn.Render(fmt.Sprintf("%d songs could not be found on Spotify", n)) + "\n"
	}
	return out
}

// Result returns the finished blend or its error.
func (m *BlendModel) Result() (*models.Blend, error) {
	return m.result, m.err
}

// RunBlend runs the blend under a [BlendModel] and returns its outcome.
func RunBlend(ctx context.Context, run RunFunc, in io.Reader, out io.Writer) (*models.Blend, error) {
	final, err := runProgram(ctx, NewBlendModel(ctx, run), in, out)
	if err != nil {
		return nil, err
	}
	return final.(*BlendModel).Result()
}
