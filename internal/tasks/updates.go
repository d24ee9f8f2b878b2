package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a blend.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ValidateHistory Phase = iota
	SelectPlaylist
	GenerateSongs
	SampleSongs
	RenamePlaylist
	ResolveTracks
	ShuffleTracks
	PublishTracks
	UpdateDetails
)

func (p Phase) String() string {
	switch p {
	case ValidateHistory:
		return "validate_history"
	case SelectPlaylist:
		return "select_playlist"
	case GenerateSongs:
		return "generate_songs"
	case SampleSongs:
		return "sample_songs"
	case RenamePlaylist:
		return "rename_playlist"
	case ResolveTracks:
		return "resolve_tracks"
	case ShuffleTracks:
		return "shuffle_tracks"
	case PublishTracks:
		return "publish_tracks"
	case UpdateDetails:
		return "update_details"
	default:
		return ""
	}
}

func validateHistoryUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Validating playlist name for %s...", id),
	}
}

func selectPlaylistUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SelectPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Using playlist: %s (%s)", name, id),
	}
}

func generateUpdate(step, total int, theme string, cached bool) ProgressUpdate {
	msg := fmt.Sprintf("Generating playlist for %s...", theme)
	if cached {
		msg = fmt.Sprintf("Playlist for %s already exists.", theme)
	}
	return ProgressUpdate{
		Phase:   GenerateSongs,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    cached,
	}
}

func sampleUpdate(step, total, size int, theme string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SampleSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Sampling %d songs from %s...", size, theme),
	}
}

func renameUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenamePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("New playlist name: %s", name),
		Data:    name,
	}
}

func resolveUpdate(step, total int, song string, cached bool) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, song),
		Data:    cached,
	}
}

func shuffleUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ShuffleTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Shuffling %d tracks...", total),
	}
}

func publishUpdate(total int, mode string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PublishTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Pushing %d tracks to Spotify (%s)...", total, mode),
	}
}

func detailsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateDetails,
		Step:    1,
		Total:   1,
		Message: "Updating playlist details...",
	}
}
