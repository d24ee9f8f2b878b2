package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/blendify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then opens the configured storage so its documents
// (or sqlite schema) exist before the first blend.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return err
		}

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		config.ApplyEnv()
		r.config = config
		r.writePlain("✓ Created %s\n", r.configPath)
	} else {
		r.writePlain("✓ Using existing %s\n", r.configPath)
	}

	r.logger.Info("initializing storage", "driver", r.config.Storage.Driver)
	stores, err := r.Stores()
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	r.writePlain("✓ Storage ready (%s): %s\n", r.config.Storage.Driver, stores.Location())

	if r.config.Credentials.Spotify.Token() == nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set your Spotify client_id and client_secret in %s\n", r.configPath)
		r.writePlain("2. Run 'blendify auth' to connect your Spotify account\n")
	}
	return nil
}
