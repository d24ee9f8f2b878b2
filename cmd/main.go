package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/blendify/internal/shared"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command. "blend" runs when no command is named.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "blendify",
		Usage:   "Blend themed song suggestions into a Spotify playlist",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("BLENDIFY_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:         r.Load,
		DefaultCommand: "blend",
		Commands:       r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(runner).Run(ctx, os.Args)
	stop()

	if closeErr := runner.Close(); closeErr != nil {
		logger.Warn("failed to close stores", "error", closeErr)
	}

	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrAborted), errors.Is(err, context.Canceled):
			logger.Info("exiting")
			os.Exit(130)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
