// package tasks implements the blend pipeline: fusing themed song lists, resolving them to tracks and publishing.
//
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/repositories"
	"github.com/desertthunder/blendify/internal/services"
	"github.com/desertthunder/blendify/internal/shared"
)

// EngineOpts holds the configured defaults of a [BlendEngine].
type EngineOpts struct {
	PlaylistLength    int
	Description       string
	RequestsPerSecond float64
}

// BlendRequest describes a single run.
type BlendRequest struct {
	Query      string             // Raw pipe-delimited themes
	PlaylistID string             // Destination playlist, required unless DryRun
	Mode       shared.PublishMode // Replace or append
	Rename     bool               // Ask the generator for a new playlist name
	DryRun     bool               // Stop after resolution without touching the playlist
}

// BlendEngine runs the blend pipeline against explicitly injected services and stores.
type BlendEngine struct {
	generator services.Generator
	music     services.MusicService
	stores    *repositories.Stores
	blender   *Blender
	resolver  *Resolver
	rng       *rand.Rand
	opts      EngineOpts
	logger    *log.Logger
}

// NewBlendEngine creates a new [BlendEngine]. A nil rng is seeded randomly.
func NewBlendEngine(
	generator services.Generator,
	music services.MusicService,
	stores *repositories.Stores,
	opts EngineOpts,
	rng *rand.Rand,
	logger *log.Logger,
) *BlendEngine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &BlendEngine{
		generator: generator,
		music:     music,
		stores:    stores,
		blender:   NewBlender(generator, stores.Themes, opts.PlaylistLength, rng, logger),
		resolver:  NewResolver(music, stores.Tracks, opts.RequestsPerSecond, logger),
		rng:       rng,
		opts:      opts,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// RefreshHistory fetches the current name of every remembered playlist and records renames in place.
//
// Playlists that can no longer be fetched are kept and logged.
func (e *BlendEngine) RefreshHistory(ctx context.Context, progress chan<- ProgressUpdate) ([]repositories.PlaylistEntry, error) {
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	entries := e.stores.Playlists.LastFive()
	for i, entry := range entries {
		sendProgress(progress, validateHistoryUpdate(i+1, len(entries), entry.ID))

		playlist, err := e.music.GetPlaylist(ctx, entry.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("could not validate playlist", "id", entry.ID, "error", err)
			continue
		}

		if playlist.Name != entry.Name {
			if err := e.stores.Playlists.UpdateHistory(entry.ID, playlist.Name); err != nil {
				return nil, err
			}
		}
	}

	return e.stores.Playlists.LastFive(), nil
}

// SelectPlaylist fetches the playlist, makes it the most recent one and records it in the usage history.
func (e *BlendEngine) SelectPlaylist(ctx context.Context, id string, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := e.music.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, selectPlaylistUpdate(playlist.Name, id))

	if err := e.stores.Playlists.UpdateRecent(id); err != nil {
		return nil, err
	}
	if e.stores.Playlists.Contains(id) {
		err = e.stores.Playlists.UpdateHistory(id, playlist.Name)
	} else {
		err = e.stores.Playlists.Add(id, playlist.Name)
	}
	if err != nil {
		return nil, err
	}

	return playlist, nil
}

// Run records the request, blends, optionally renames, resolves, shuffles and publishes.
//
// Per-theme and per-song cache entries written before a failure are kept.
func (e *BlendEngine) Run(ctx context.Context, req BlendRequest, progress chan<- ProgressUpdate) (*models.Blend, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator not initialized", shared.ErrServiceUnavailable)
	}
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if req.PlaylistID == "" && !req.DryRun {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	themes := shared.SplitThemes(req.Query)
	if len(themes) == 0 {
		return nil, shared.ErrNoThemes
	}

	result := &models.Blend{
		ID:         shared.GenerateID(),
		Query:      shared.JoinThemes(themes),
		Themes:     themes,
		PlaylistID: req.PlaylistID,
	}
	logger := shared.WithLogger(e.logger, "run", result.ID)

	if err := e.stores.Requests.Add(result.Query); err != nil {
		return nil, err
	}

	songs, err := e.blender.Blend(ctx, themes, progress)
	if err != nil {
		return nil, err
	}
	result.Songs = songs
	logger.Info("blended songs", "themes", len(themes), "songs", len(songs))

	if req.Rename {
		result.Name = e.rename(ctx, logger, songs)
		if result.Name != "" {
			sendProgress(progress, renameUpdate(result.Name))
		}
	}

	resolution, err := e.resolver.Resolve(ctx, songs, progress)
	if err != nil {
		return nil, err
	}
	result.Dropped = resolution.Dropped
	logger.Info("resolved tracks", "resolved", len(resolution.Tracks), "dropped", len(resolution.Dropped), "cached", resolution.CacheHits)

	sendProgress(progress, shuffleUpdate(len(resolution.Tracks)))
	tracks := resolution.Tracks
	e.rng.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
	result.Tracks = tracks

	if req.DryRun {
		return result, nil
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: none of the %d songs resolved to a track", shared.ErrTrackNotFound, len(songs))
	}

	if err := e.publish(ctx, req, result, progress); err != nil {
		return nil, err
	}

	if result.Name != "" {
		if err := e.stores.Playlists.UpdateHistory(req.PlaylistID, result.Name); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// rename asks the generator for a "daylist" style name. Failures keep the current name.
func (e *BlendEngine) rename(ctx context.Context, logger *log.Logger, songs []string) string {
	name, err := e.generator.GeneratePlaylistName(ctx, songs)
	if err != nil {
		logger.Warn("could not generate playlist name", "error", err)
		return ""
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func (e *BlendEngine) publish(ctx context.Context, req BlendRequest, result *models.Blend, progress chan<- ProgressUpdate) error {
	mode := req.Mode
	if mode == "" {
		mode = shared.PublishReplace
	}

	sendProgress(progress, publishUpdate(len(result.Tracks), string(mode)))

	var err error
	switch mode {
	case shared.PublishReplace:
		err = e.music.ReplaceItems(ctx, req.PlaylistID, result.URIs())
	case shared.PublishAppend:
		err = e.music.AddItems(ctx, req.PlaylistID, result.URIs())
	default:
		return fmt.Errorf("%w: publish mode %q", shared.ErrInvalidArgument, mode)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPublish, err)
	}

	sendProgress(progress, detailsUpdate())
	if err := e.music.SetDetails(ctx, req.PlaylistID, result.Name, e.opts.Description); err != nil {
		return fmt.Errorf("%w: failed to update details: %v", shared.ErrPublish, err)
	}

	return nil
}
