package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = cmd.String("config")
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	return r.writePlain("Set credentials.spotify or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET before searching.\n")
}

// ConfigShow prints the effective configuration as TOML with credentials masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	config := shared.DefaultConfig()
	if r.config != nil {
		c := *r.config
		config = &c
	}
	config.Credentials.Spotify.ClientID = mask(config.Credentials.Spotify.ClientID)
	config.Credentials.Spotify.ClientSecret = mask(config.Credentials.Spotify.ClientSecret)

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return r.writePlain("%s", b.String())
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
