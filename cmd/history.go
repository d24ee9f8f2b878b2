package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// HistoryRequests lists previous theme requests, most recent last, optionally fuzzy-filtered.
func (r *Runner) HistoryRequests(ctx context.Context, cmd *cli.Command) error {
	stores, err := r.Stores()
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	search := cmd.String("search")

	var requests []string
	switch {
	case search != "":
		requests = stores.Requests.Search(search)
		if limit > 0 && limit < len(requests) {
			requests = requests[:limit]
		}
	case limit > 0:
		requests = stores.Requests.Last(limit)
	default:
		requests = stores.Requests.All()
	}

	if cmd.Bool("json") {
		return r.writeJSON(requests, true)
	}

	if len(requests) == 0 {
		return r.writePlain("No requests found.\n")
	}
	for _, q := range requests {
		r.writePlain("%s\n", q)
	}
	return nil
}

// HistoryPlaylists lists the last five playlists used, oldest first.
func (r *Runner) HistoryPlaylists(ctx context.Context, cmd *cli.Command) error {
	stores, err := r.Stores()
	if err != nil {
		return err
	}

	entries := stores.Playlists.LastFive()
	if cmd.Bool("refresh") {
		engine, err := r.Engine(ctx)
		if err != nil {
			return err
		}
		defer r.persistToken()

		if entries, err = engine.RefreshHistory(ctx, nil); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"recent": stores.Playlists.Recent(), "history": entries}, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No playlists used yet.\n")
	}

	recent := stores.Playlists.Recent()
	for _, e := range entries {
		marker := " "
		if e.ID == recent {
			marker = "*"
		}
		r.writePlain("%s %s (%s)\n", marker, e.Name, e.ID)
	}
	return nil
}
