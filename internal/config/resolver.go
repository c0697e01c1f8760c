package config

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/demosify/internal/bundle"
	"github.com/wolfeidau/demosify/internal/descriptor"
)

// Options configures a Resolver.
type Options struct {
	// ConfigFile pins the descriptor file name instead of searching
	// descriptor.DefaultNames.
	ConfigFile string
	// Env is the environment name handed to descriptor factories.
	Env string
	// InstallDir anchors the built-in entry, sources and theme.
	InstallDir string
	Logger     zerolog.Logger
}

// Resolver turns a project descriptor into a ResolvedConfig.
type Resolver struct {
	env        string
	installDir string
	logger     zerolog.Logger
	loader     *descriptor.Loader
}

// NewResolver creates a resolver, filling in the default environment and
// install directory.
func NewResolver(opts Options) *Resolver {
	env := opts.Env
	if env == "" {
		env = DefaultEnv
	}

	installDir := opts.InstallDir
	if installDir == "" {
		installDir = DefaultInstallDir()
	}

	var names []string
	if opts.ConfigFile != "" {
		names = []string{opts.ConfigFile}
	}

	return &Resolver{
		env:        env,
		installDir: installDir,
		logger:     opts.Logger,
		loader:     descriptor.NewLoader(opts.Logger, descriptor.Options{Names: names, Env: env}),
	}
}

// Resolve is a shorthand for NewResolver(opts).Resolve(projectRoot).
func Resolve(projectRoot string, opts Options) (*ResolvedConfig, error) {
	return NewResolver(opts).Resolve(projectRoot)
}

// Resolve loads the descriptor under projectRoot, evaluates it for the
// resolver's environment and derives the build configuration.
func (r *Resolver) Resolve(projectRoot string) (*ResolvedConfig, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	desc, err := r.loader.Load(root)
	if err != nil {
		return nil, err
	}

	raw, err := desc.Source.Eval(r.env)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Interface("config", raw).Str("env", r.env).Msg("Evaluated descriptor")

	uc, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Path, err)
	}
	if err := uc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Path, err)
	}

	cfg := r.build(root, desc.Path, uc)

	r.logger.Info().Str("dir", cfg.Output.Dir).Str("path", cfg.Output.Path).Msg("Output directory")
	r.logger.Info().Str("public_url", publicURLOrRoot(cfg.Output.PublicURL)).Msg("Public URL")

	return cfg, nil
}

func (r *Resolver) build(root, descriptorPath string, uc *userConfig) *ResolvedConfig {
	port := DefaultDevServerPort
	if uc.DevServer.Port > 0 {
		port = uc.DevServer.Port
	}

	output := Output{Dir: uc.Output.Dir, PublicURL: uc.Output.PublicURL}
	if output.Dir == "" {
		output.Dir = DefaultOutputDir
	}
	output.Path = resolvePath(root, output.Dir)

	demoList := uc.DemoList
	if demoList == "" {
		demoList = DefaultDemoList
	}

	demosPath := uc.DemosPath
	if demosPath == "" {
		demosPath = DefaultDemosPath
	}
	demosDir := resolvePath(root, demosPath)

	themeFile := resolvePath(r.installDir, defaultThemeFile)
	if uc.ThemeFile != "" {
		themeFile = resolvePath(root, uc.ThemeFile)
	}

	cfg := &ResolvedConfig{
		Entry:          resolvePath(r.installDir, entryFile),
		Output:         output,
		OutputFilename: bundle.DefaultOutputFilename,
		PublicFolder:   resolvePath(root, r.staticFolder(uc)),
		DevServerPort:  port,
		DemoListFile:   resolvePath(demosDir, demoList),
		DemosPath:      demosDir,
		ThemeFilePath:  themeFile,
		DescriptorPath: descriptorPath,
		Cache:          false,
		Envs:           map[string]string{"NODE_ENV": r.env},
		BabelOptions: BabelOptions{
			Babelrc:          uc.Babelrc,
			TranspileModules: []string{CoreModule},
		},
		Bundle: bundle.Defaults(),
	}
	cfg.Aliases = r.aliases(cfg)

	return cfg
}

// staticFolder picks the static assets directory. staticFolder takes
// precedence over publicFolder.
func (r *Resolver) staticFolder(uc *userConfig) string {
	switch {
	case uc.StaticFolder != "" && uc.PublicFolder != "":
		r.logger.Warn().
			Str("staticFolder", uc.StaticFolder).
			Str("publicFolder", uc.PublicFolder).
			Msg("Both staticFolder and publicFolder are set, using staticFolder")
		return uc.StaticFolder
	case uc.StaticFolder != "":
		return uc.StaticFolder
	case uc.PublicFolder != "":
		return uc.PublicFolder
	default:
		return DefaultStaticFolder
	}
}

func (r *Resolver) aliases(cfg *ResolvedConfig) map[string]string {
	return map[string]string{
		AliasSource:   resolvePath(r.installDir, sourceDir),
		AliasHome:     cfg.DemosPath,
		AliasDemos:    cfg.DemosPath,
		AliasDemoList: cfg.DemoListFile,
		AliasManifest: cfg.DescriptorPath,
		AliasTheme:    cfg.ThemeFilePath,
	}
}

func publicURLOrRoot(url string) string {
	if url == "" {
		return "/"
	}
	return url
}
