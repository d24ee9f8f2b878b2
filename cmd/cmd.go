// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// blendFlags configures a single blend. "blend" is the default command, so a bare "blendify" starts one.
func blendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Destination playlist ID or share link (prompted for when omitted)",
		},
		&cli.StringFlag{
			Name:    "themes",
			Aliases: []string{"t"},
			Usage:   "Pipe-delimited themes, e.g. \"blink-182 | moody ambient\" (prompted for when omitted)",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Publish mode: replace or append (defaults to playlist.publish_mode)",
		},
		&cli.BoolFlag{
			Name:  "rename",
			Usage: "Rename the playlist \"daylist\" style (defaults to playlist.rename)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Generate and resolve without touching the playlist",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Print the blend as txt, json, csv or markdown",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the formatted blend to a file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Print progress as plain lines instead of the interactive view",
		},
	}
}

// blendCommand runs the generate, resolve and publish pipeline.
func blendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "blend",
		Usage:  "Generate a themed playlist and push it to Spotify",
		Flags:  blendFlags(),
		Action: r.Blend,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Action: r.Auth,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show whether a Spotify token is saved and still valid",
				Action: r.AuthStatus,
			},
		},
	}
}

// setupCommand handles first-run configuration and storage initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the configured storage",
		Action: r.Setup,
	}
}

// historyCommand shows past theme requests and playlists.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show request and playlist history",
		Commands: []*cli.Command{
			{
				Name:  "requests",
				Usage: "List previous theme requests",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of requests to show (0 for all)",
						Value:   5,
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Fuzzy search previous requests",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryRequests,
			},
			{
				Name:  "playlists",
				Usage: "List the last five playlists used",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Fetch current playlist names from Spotify first",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryPlaylists,
			},
		},
	}
}

// cacheCommand inspects and prunes the theme and song caches.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the theme and song caches",
		Commands: []*cli.Command{
			{
				Name:  "themes",
				Usage: "List cached themes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheThemes,
			},
			{
				Name:  "show",
				Usage: "Show the cached songs for a theme",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "theme"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:  "forget",
				Usage: "Remove a theme so it is generated again next time",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "theme"},
				},
				Action: r.CacheForget,
			},
			{
				Name:   "stats",
				Usage:  "Show cache sizes and storage location",
				Action: r.CacheStats,
			},
		},
	}
}
