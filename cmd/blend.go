package main

import (
	"context"
	"sync"

	"github.com/desertthunder/blendify/internal/formatter"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/shared"
	"github.com/desertthunder/blendify/internal/tasks"
	"github.com/desertthunder/blendify/internal/ui"
	"github.com/urfave/cli/v3"
)

// Blend picks a playlist and themes (from flags, config or prompts), runs the engine and reports the result.
func (r *Runner) Blend(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine(ctx)
	if err != nil {
		return err
	}
	defer r.persistToken()

	req := tasks.BlendRequest{DryRun: cmd.Bool("dry-run")}

	mode := string(r.config.Playlist.PublishMode)
	if cmd.IsSet("mode") {
		mode = cmd.String("mode")
	}
	if req.Mode, err = shared.ParsePublishMode(mode); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if req.PlaylistID, err = r.choosePlaylist(ctx, cmd); err != nil {
		return err
	}
	if req.PlaylistID != "" {
		playlist, err := engine.SelectPlaylist(ctx, req.PlaylistID, nil)
		if err != nil {
			return err
		}
		r.writePlain("🎵 Using playlist: %s (%s)\n", playlist.Name, playlist.ID)
	}

	if req.Rename, err = r.chooseRename(ctx, cmd, req.DryRun); err != nil {
		return err
	}

	if req.Query, err = r.chooseThemes(ctx, cmd); err != nil {
		return err
	}

	r.logger.Debug("starting blend", "themes", req.Query, "playlist", req.PlaylistID, "mode", req.Mode, "rename", req.Rename, "dry_run", req.DryRun)

	run := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Blend, error) {
		return engine.Run(ctx, req, progress)
	}

	var result *models.Blend
	if cmd.Bool("plain") {
		result, err = r.runPlain(ctx, run)
	} else {
		result, err = ui.RunBlend(ctx, run, r.input, r.output)
	}
	if err != nil {
		return err
	}

	return r.report(result, req, cmd, format)
}

// choosePlaylist resolves the destination from --playlist, a fixed config target or the playlist prompt.
//
// A dry run without --playlist skips the prompt.
func (r *Runner) choosePlaylist(ctx context.Context, cmd *cli.Command) (string, error) {
	if cmd.IsSet("playlist") {
		return shared.ParsePlaylistID(cmd.String("playlist"))
	}
	if r.config.Playlist.Target == shared.TargetFixed {
		return shared.ParsePlaylistID(r.config.Playlist.ID)
	}
	if cmd.Bool("dry-run") {
		return "", nil
	}

	engine, err := r.Engine(ctx)
	if err != nil {
		return "", err
	}
	stores, err := r.Stores()
	if err != nil {
		return "", err
	}

	r.writePlain("🔍 Validating playlist names in history...\n")
	entries, err := engine.RefreshHistory(ctx, nil)
	if err != nil {
		return "", err
	}

	return ui.Ask(ctx, ui.PlaylistPromptOpts(stores.Playlists.Recent(), entries), r.input, r.output)
}

// chooseRename honors --rename when given, otherwise asks in interactive mode and falls back to playlist.rename.
func (r *Runner) chooseRename(ctx context.Context, cmd *cli.Command, dryRun bool) (bool, error) {
	if cmd.IsSet("rename") {
		return cmd.Bool("rename"), nil
	}
	if dryRun || r.config.Playlist.Target == shared.TargetFixed {
		return r.config.Playlist.Rename && !dryRun, nil
	}
	return ui.Confirm(ctx, "Would you like me to rename the playlist (Spotify 'daylist' style)?", r.config.Playlist.Rename, r.input, r.output)
}

// chooseThemes validates --themes or prompts with the last five requests.
func (r *Runner) chooseThemes(ctx context.Context, cmd *cli.Command) (string, error) {
	if cmd.IsSet("themes") {
		return ui.ThemeValidator(cmd.String("themes"))
	}

	stores, err := r.Stores()
	if err != nil {
		return "", err
	}
	return ui.Ask(ctx, ui.ThemePromptOpts(stores.Requests.Last(5)), r.input, r.output)
}

// runPlain runs the blend and prints each progress message on its own line.
func (r *Runner) runPlain(ctx context.Context, run ui.RunFunc) (*models.Blend, error) {
	progress := make(chan tasks.ProgressUpdate, 64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s %s\n", phaseIcon(update.Phase), update.Message)
		}
	}()

	result, err := run(ctx, progress)
	close(progress)
	wg.Wait()
	return result, err
}

func phaseIcon(p tasks.Phase) string {
	switch p {
	case tasks.ValidateHistory:
		return "🔍"
	case tasks.SelectPlaylist, tasks.RenamePlaylist:
		return "🎵"
	case tasks.GenerateSongs, tasks.SampleSongs:
		return "🤖"
	case tasks.ResolveTracks:
		return "🕑"
	case tasks.ShuffleTracks:
		return "🔀"
	case tasks.PublishTracks:
		return "📌"
	case tasks.UpdateDetails:
		return "📝"
	default:
		return "•"
	}
}

// report prints or writes the blend. Dry runs always print the full track list.
func (r *Runner) report(result *models.Blend, req tasks.BlendRequest, cmd *cli.Command, format formatter.Format) error {
	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(result, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("blend exported", "file", written, "format", format)
		return r.writePlain("✓ Blend written to %s\n", written)
	}

	if req.DryRun || cmd.IsSet("format") {
		data, err := formatter.Render(result, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlain("✓ Pushed %d tracks to %s (%s)\n", len(result.Tracks), req.PlaylistID, req.Mode)
	if result.Name != "" {
		r.writePlain("  Name: %s\n", result.Name)
	}
	if n := len(result.Dropped); n > 0 {
		r.writePlain("  %d of %d songs were not found on Spotify\n", n, len(result.Songs))
	}
	return nil
}

