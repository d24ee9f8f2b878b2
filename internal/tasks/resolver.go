package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/services"
	"golang.org/x/time/rate"
)

// TrackCacher is the part of repositories.TrackCache the [Resolver] needs.
type TrackCacher interface {
	Get(song string) (string, bool)
	Add(song, uri string) error
}

// Resolution is the outcome of resolving a blend.
type Resolution struct {
	Tracks    []models.Track // Resolved tracks, in song order
	Dropped   []string       // Songs the service could not resolve
	CacheHits int            // Songs served from the track cache
}

// Resolver maps song strings to track URIs, consulting the track cache before the music service.
type Resolver struct {
	music   services.MusicService
	tracks  TrackCacher
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewResolver creates a [Resolver]. Search calls are paced to rps per second; a non-positive rps disables pacing.
func NewResolver(music services.MusicService, tracks TrackCacher, rps float64, logger *log.Logger) *Resolver {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Resolver{music: music, tracks: tracks, limiter: rate.NewLimiter(limit, 1), logger: logger}
}

// Resolve looks up every song. Songs the service cannot resolve are dropped and reported in [Resolution.Dropped];
// only cancellation and cache write failures abort.
func (r *Resolver) Resolve(ctx context.Context, songs []string, progress chan<- ProgressUpdate) (*Resolution, error) {
	res := &Resolution{Tracks: make([]models.Track, 0, len(songs))}

	for i, song := range songs {
		track := models.ParseSong(song)
		track.Song = song

		if uri, ok := r.tracks.Get(song); ok {
			sendProgress(progress, resolveUpdate(i+1, len(songs), song, true))
			track.URI = uri
			res.Tracks = append(res.Tracks, track)
			res.CacheHits++
			continue
		}

		sendProgress(progress, resolveUpdate(i+1, len(songs), song, false))
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		uri, err := r.music.ResolveTrack(ctx, song)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Debug("dropping unresolved song", "song", song, "error", err)
			res.Dropped = append(res.Dropped, song)
			continue
		}
		if uri == "" {
			r.logger.Debug("dropping unresolved song", "song", song)
			res.Dropped = append(res.Dropped, song)
			continue
		}

		if err := r.tracks.Add(song, uri); err != nil {
			return nil, err
		}
		track.URI = uri
		res.Tracks = append(res.Tracks, track)
	}

	return res, nil
}
