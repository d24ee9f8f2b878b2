package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/repositories"
	"github.com/desertthunder/blendify/internal/services"
	"github.com/desertthunder/blendify/internal/shared"
	"github.com/desertthunder/blendify/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores and services are opened lazily so commands that only read the caches never need credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	stores     *repositories.Stores
	generator  services.Generator
	music      services.MusicService
	spotify    *services.SpotifyService
	engine     *tasks.BlendEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Generator, Music and Stores are normally built from the config; tests inject them directly.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Generator  services.Generator
	Music      services.MusicService
	Stores     *repositories.Stores
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		stores:     opts.Stores,
		generator:  opts.Generator,
		music:      opts.Music,
	}
}

// Load reads the config named by --config before any command runs.
//
// A missing file falls back to the embedded defaults so "setup" can create it.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	r.config.ApplyEnv()
	if path := r.config.Logging.File; path != "" {
		logger, err := shared.NewFileLogger(path)
		if err != nil {
			return ctx, err
		}
		r.logger = logger
	}
	if err := shared.ConfigureLogLevel(r.logger, r.config.Logging.Level); err != nil {
		r.logger.Warn("ignoring log level", "error", err)
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// Close releases the stores, if they were opened.
func (r *Runner) Close() error {
	if r.stores == nil {
		return nil
	}
	return r.stores.Close()
}

// Stores opens the configured storage backend once.
func (r *Runner) Stores() (*repositories.Stores, error) {
	if r.stores != nil {
		return r.stores, nil
	}

	stores, err := repositories.OpenStores(r.config, r.logger)
	if err != nil {
		return nil, err
	}
	r.stores = stores
	return stores, nil
}

// Music returns the Spotify service authenticated with the saved token.
func (r *Runner) Music(ctx context.Context) (services.MusicService, error) {
	if r.music != nil {
		return r.music, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}

	token := r.config.Credentials.Spotify.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: run `blendify auth` first", shared.ErrNotAuthenticated)
	}
	svc.SetToken(ctx, token)

	r.spotify = svc
	r.music = svc
	return svc, nil
}

// Generator builds the configured song generator.
func (r *Runner) Generator() (services.Generator, error) {
	if r.generator != nil {
		return r.generator, nil
	}

	gen, err := services.NewGenerator(r.config.Generator, r.config.Credentials.OpenAI.APIKey)
	if err != nil {
		return nil, err
	}
	r.generator = gen
	return gen, nil
}

// Engine wires the generator, music service and stores into a [tasks.BlendEngine].
func (r *Runner) Engine(ctx context.Context) (*tasks.BlendEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	stores, err := r.Stores()
	if err != nil {
		return nil, err
	}
	music, err := r.Music(ctx)
	if err != nil {
		return nil, err
	}
	gen, err := r.Generator()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewBlendEngine(gen, music, stores, tasks.EngineOpts{
		PlaylistLength:    r.config.Generator.PlaylistLength,
		Description:       r.config.Playlist.Description,
		RequestsPerSecond: r.config.Spotify.RequestsPerSecond,
	}, nil, r.logger)
	return r.engine, nil
}

// persistToken writes a refreshed Spotify token back to the config file.
func (r *Runner) persistToken() {
	if r.spotify == nil {
		return
	}

	token, err := r.spotify.Token()
	if err != nil {
		r.logger.Debug("no token to persist", "error", err)
		return
	}
	if token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}

	if err := r.saveTokens(token); err != nil {
		r.logger.Warn("failed to persist refreshed token", "error", err)
	}
}

// saveTokens stores token in the config and writes it to the config path, if one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return errors.New("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		blendCommand, authCommand, setupCommand, historyCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
