package commands

import (
	"context"

	"github.com/wolfeidau/demosify/internal/assets"
)

// ServeCmd resolves the configuration and runs the esbuild dev server.
type ServeCmd struct {
	ProjectFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	cfg, err := c.resolve(log)
	if err != nil {
		return err
	}

	return assets.New(cfg, assets.DefaultConfig(false)).Serve(ctx)
}
