package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/demosify/internal/assets"
)

// BuildCmd resolves the configuration and bundles the project with esbuild.
type BuildCmd struct {
	ProjectFlags `embed:""`
	Minify       bool `help:"minify outside production"`
	NoCompress   bool `help:"skip gzip copies of large assets in production"`
	SourceMap    bool `help:"emit linked source maps" default:"true" negatable:""`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals).With().Str("build_id", uuid.NewString()).Logger()

	cfg, err := c.resolve(log)
	if err != nil {
		return err
	}

	buildCfg := assets.DefaultConfig(cfg.Production())
	buildCfg.SourceMap = c.SourceMap
	if c.Minify {
		buildCfg.Minify = true
	}
	if c.NoCompress {
		buildCfg.Compress = false
	}

	report, err := assets.New(cfg, buildCfg).Build()
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	written := 0
	for _, res := range report.Compressed {
		if res.Written {
			written++
		}
	}

	log.Info().
		Str("env", cfg.Env()).
		Int("files", len(report.OutputFiles)).
		Int("vendor_packages", len(report.VendorChunks)).
		Int("compressed", written).
		Str("entrypoint", report.Entrypoint).
		Strs("scripts", report.Scripts).
		Msg("Build complete")

	return nil
}
