package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blendify/internal/repositories"
	"github.com/desertthunder/blendify/internal/shared"
)

// Validator normalizes raw input or rejects it. A rejected value re-prompts.
type Validator func(string) (string, error)

// PromptOpts configures a [Prompt].
type PromptOpts struct {
	Title        string
	Hint         string
	HistoryTitle string
	History      []string // Lines shown under HistoryTitle
	Suggestions  []string // Tab completions
	Default      string   // Used when the input is submitted empty
	Validate     Validator
}

// Prompt is a single-line text prompt that keeps asking until its validator accepts the input.
type Prompt struct {
	opts    PromptOpts
	input   textinput.Model
	help    help.Model
	keys    keyMap
	err     error
	value   string
	done    bool
	aborted bool
}

// NewPrompt creates a focused [Prompt].
func NewPrompt(opts PromptOpts) *Prompt {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 512
	if opts.Default != "" {
		input.Placeholder = opts.Default
	}
	if len(opts.Suggestions) > 0 {
		input.ShowSuggestions = true
		input.SetSuggestions(opts.Suggestions)
	}
	input.Focus()

	return &Prompt{opts: opts, input: input, help: help.New(), keys: newKeyMap()}
}

func (p *Prompt) Init() tea.Cmd { return textinput.Blink }

func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.keys.quit):
			p.aborted = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.submit):
			return p.submit()
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Prompt) submit() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(p.input.Value())
	if raw == "" {
		raw = p.opts.Default
	}

	value := raw
	if p.opts.Validate != nil {
		v, err := p.opts.Validate(raw)
		if err != nil {
			p.err = err
			p.input.Reset()
			return p, nil
		}
		value = v
	}

	p.err = nil
	p.value = value
	p.done = true
	return p, tea.Quit
}

func (p *Prompt) View() string {
	if p.done || p.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(p.opts.Title))
	b.WriteString("\n")
	if p.opts.Hint != "" {
		b.WriteString(p.opts.Hint + "\n\n")
	}
	if len(p.opts.History) > 0 {
		b.WriteString(p.opts.HistoryTitle + "\n")
		for _, line := range p.opts.History {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if p.err != nil {
		b.WriteString(styles.err.Render("❌ "+p.err.Error()) + "\n")
	}
	if p.opts.Default != "" {
		b.WriteString(styles.help.Render("["+p.opts.Default+"]") + "\n")
	}
	b.WriteString(p.input.View() + "\n\n")
	b.WriteString(p.help.View(p.keys))
	return b.String()
}

// Value returns the accepted value and whether the prompt completed.
func (p *Prompt) Value() (string, bool) {
	return p.value, p.done
}

// Confirmation is a yes/no question.
type Confirmation struct {
	question string
	def      bool
	keys     keyMap
	answer   bool
	done     bool
	aborted  bool
}

// NewConfirmation creates a [Confirmation]. Enter accepts def.
func NewConfirmation(question string, def bool) *Confirmation {
	return &Confirmation{question: question, def: def, keys: newKeyMap()}
}

func (c *Confirmation) Init() tea.Cmd { return nil }

func (c *Confirmation) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	msg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch {
	case key.Matches(msg, c.keys.quit):
		c.aborted = true
		return c, tea.Quit
	case key.Matches(msg, c.keys.yes):
		c.answer, c.done = true, true
	case key.Matches(msg, c.keys.no):
		c.answer, c.done = false, true
	case key.Matches(msg, c.keys.submit):
		c.answer, c.done = c.def, true
	default:
		return c, nil
	}
	return c, tea.Quit
}

func (c *Confirmation) View() string {
	if c.done || c.aborted {
		return ""
	}
	choices := "(y/N)"
	if c.def {
		choices = "(Y/n)"
	}
	return fmt.Sprintf("%s %s > ", c.question, styles.help.Render(choices))
}

// Ask runs a [Prompt] until it is answered. Quitting returns [shared.ErrAborted].
func Ask(ctx context.Context, opts PromptOpts, in io.Reader, out io.Writer) (string, error) {
	final, err := runProgram(ctx, NewPrompt(opts), in, out)
	if err != nil {
		return "", err
	}

	p := final.(*Prompt)
	if p.aborted || !p.done {
		return "", shared.ErrAborted
	}
	return p.value, nil
}

// Confirm asks a yes/no question. Quitting returns [shared.ErrAborted].
func Confirm(ctx context.Context, question string, def bool, in io.Reader, out io.Writer) (bool, error) {
	final, err := runProgram(ctx, NewConfirmation(question, def), in, out)
	if err != nil {
		return false, err
	}

	c := final.(*Confirmation)
	if c.aborted || !c.done {
		return false, shared.ErrAborted
	}
	return c.answer, nil
}

func runProgram(ctx context.Context, model tea.Model, in io.Reader, out io.Writer) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return nil, shared.ErrAborted
		}
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// PlaylistValidator accepts a raw ID or share link. Empty input falls back to recent.
func PlaylistValidator(recent string) Validator {
	return func(input string) (string, error) {
		if input == "" {
			if recent == "" {
				return "", fmt.Errorf("%w: no recent playlist", shared.ErrInvalidPlaylistID)
			}
			return recent, nil
		}
		return shared.ParsePlaylistID(input)
	}
}

// ThemeValidator accepts a pipe-delimited theme request with at least one non-empty theme.
func ThemeValidator(input string) (string, error) {
	if err := shared.ValidateQuery(input); err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PlaylistPromptOpts builds the playlist prompt from the usage history.
func PlaylistPromptOpts(recent string, entries []repositories.PlaylistEntry) PromptOpts {
	history := make([]string, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		history = append(history, fmt.Sprintf("%s (%s)", e.Name, e.ID))
		ids = append(ids, e.ID)
	}

	return PromptOpts{
		Title:        "Which playlist would you like to use?",
		Hint:         "Pick from below or specify a new one (by ID or share link).",
		HistoryTitle: "Last five playlists used:",
		History:      history,
		Suggestions:  ids,
		Default:      recent,
		Validate:     PlaylistValidator(recent),
	}
}

// ThemePromptOpts builds the theme prompt from the most recent requests.
func ThemePromptOpts(recent []string) PromptOpts {
	return PromptOpts{
		Title:        "Enter a playlist theme below.",
		Hint:         "You can add multiple themes by separating them with a pipe (|).\nExample: 'blink-182 | fortnite music | moody ambient'",
		HistoryTitle: "Last five requests:",
		History:      recent,
		Suggestions:  recent,
		Validate:     ThemeValidator,
	}
}
