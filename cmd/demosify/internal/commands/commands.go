package commands

import (
	"github.com/rs/zerolog"
	"github.com/wolfeidau/demosify/internal/config"
	"github.com/wolfeidau/demosify/internal/logger"
)

type Globals struct {
	Debug   bool
	Version string
}

// ProjectFlags locate the project and select the environment.
type ProjectFlags struct {
	Root       string `help:"project root containing the descriptor" default:"." env:"DEMOSIFY_ROOT" type:"existingdir"`
	Env        string `help:"environment name passed to descriptor factories" default:"development" env:"NODE_ENV"`
	Config     string `help:"descriptor file name relative to the root (default: search .demosrc.*)" env:"DEMOSIFY_CONFIG"`
	InstallDir string `help:"directory holding the built-in entry, sources and theme (default: executable directory)" env:"DEMOSIFY_HOME"`
}

func (f *ProjectFlags) resolve(log zerolog.Logger) (*config.ResolvedConfig, error) {
	return config.Resolve(f.Root, config.Options{
		ConfigFile: f.Config,
		Env:        f.Env,
		InstallDir: f.InstallDir,
		Logger:     log,
	})
}

func setupLogger(globals *Globals) zerolog.Logger {
	return logger.Setup(globals.Debug)
}
