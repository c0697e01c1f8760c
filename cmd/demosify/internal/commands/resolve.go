package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ResolveCmd prints the resolved configuration.
type ResolveCmd struct {
	ProjectFlags `embed:""`
	Format       string `help:"output format" default:"json" enum:"json,yaml"`

	out io.Writer
}

func (c *ResolveCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	cfg, err := c.resolve(log)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	}
}
