package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/demosify/cmd/demosify/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Resolve commands.ResolveCmd `cmd:"" help:"Print the resolved build configuration"`
		Build   commands.BuildCmd   `cmd:"" help:"Resolve the configuration and bundle the project"`
		Serve   commands.ServeCmd   `cmd:"" help:"Resolve the configuration and run the dev server"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
