package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wolfeidau/demosify/internal/bundle"
	"github.com/wolfeidau/demosify/internal/descriptor"
)

const (
	// DefaultDevServerPort is the dev server port when the descriptor sets none.
	DefaultDevServerPort = 3000

	// DefaultOutputDir is the build output directory.
	DefaultOutputDir = "dist"

	// DefaultDemoList is the demo list file name inside the demos path.
	DefaultDemoList = ".demoList.json"

	// DefaultDemosPath is the directory holding demos.
	DefaultDemosPath = "demos"

	// DefaultStaticFolder is the static assets directory.
	DefaultStaticFolder = "static"

	// DefaultEnv is the environment name used when none is given.
	DefaultEnv = "development"

	// CoreModule is always transpiled along with project sources.
	CoreModule = "@demosify/core"
)

// Built-in files, relative to the install directory.
const (
	entryFile        = "index.js"
	sourceDir        = "src"
	defaultThemeFile = "src/css/default_theme.scss"
)

// Alias names derived for every project.
const (
	AliasSource   = "@"
	AliasHome     = "~"
	AliasDemos    = "demos"
	AliasDemoList = ".demoList.json"
	AliasManifest = "manifest"
	AliasTheme    = "themeFile"
)

// ErrInvalidConfig indicates a descriptor field has the wrong type or value.
var ErrInvalidConfig = errors.New("invalid config")

// Output is the build output location. Dir is kept as written in the
// descriptor, Path is its absolute form.
type Output struct {
	Dir       string `json:"dir" yaml:"dir"`
	PublicURL string `json:"publicUrl,omitempty" yaml:"publicUrl,omitempty"`
	Path      string `json:"path" yaml:"path"`
}

// BabelOptions controls transpilation of project and dependency sources.
type BabelOptions struct {
	Babelrc          bool     `json:"babelrc" yaml:"babelrc"`
	TranspileModules []string `json:"transpileModules" yaml:"transpileModules"`
}

// ResolvedConfig is the fully defaulted build configuration.
type ResolvedConfig struct {
	Entry          string            `json:"entry" yaml:"entry"`
	Output         Output            `json:"output" yaml:"output"`
	OutputFilename string            `json:"outputFilename" yaml:"outputFilename"`
	PublicFolder   string            `json:"publicFolder" yaml:"publicFolder"`
	DevServerPort  int               `json:"devServerPort" yaml:"devServerPort"`
	DemoListFile   string            `json:"demoListFile" yaml:"demoListFile"`
	DemosPath      string            `json:"demosPath" yaml:"demosPath"`
	ThemeFilePath  string            `json:"themeFilePath" yaml:"themeFilePath"`
	DescriptorPath string            `json:"descriptorPath" yaml:"descriptorPath"`
	Cache          bool              `json:"cache" yaml:"cache"`
	Envs           map[string]string `json:"envs" yaml:"envs"`
	BabelOptions   BabelOptions      `json:"babelOptions" yaml:"babelOptions"`
	Aliases        map[string]string `json:"aliases" yaml:"aliases"`
	Bundle         bundle.Options    `json:"bundle" yaml:"bundle"`
}

// Env returns the environment name the configuration was resolved for.
func (c *ResolvedConfig) Env() string {
	return c.Envs["NODE_ENV"]
}

// Production reports whether the configuration targets production.
func (c *ResolvedConfig) Production() bool {
	return c.Env() == "production"
}

// userConfig is the typed view of the descriptor fields that are understood.
type userConfig struct {
	Output       outputValue `json:"output"`
	DevServer    devServer   `json:"devServer"`
	DemoList     string      `json:"demoList"`
	DemosPath    string      `json:"demosPath"`
	ThemeFile    string      `json:"themeFile"`
	StaticFolder string      `json:"staticFolder"`
	PublicFolder string      `json:"publicFolder"`
	Babelrc      bool        `json:"babelrc"`
}

type devServer struct {
	Port int `json:"port"`
}

// outputValue accepts either the "dir" shorthand string or the object form.
type outputValue struct {
	Dir       string `json:"dir"`
	PublicURL string `json:"publicUrl"`
}

func (o *outputValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &o.Dir)
	}

	type plain outputValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = outputValue(p)
	return nil
}

func decode(raw descriptor.Raw) (*userConfig, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var uc userConfig
	if err := json.Unmarshal(data, &uc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &uc, nil
}

func (uc *userConfig) validate() error {
	if uc.DevServer.Port < 0 || uc.DevServer.Port > 65535 {
		return fmt.Errorf("%w: devServer.port must be between 1 and 65535, got %d", ErrInvalidConfig, uc.DevServer.Port)
	}
	return nil
}

// resolvePath joins a relative path onto base.
func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// DefaultInstallDir returns the directory holding the built-in entry and
// theme: the directory of the running executable, or the working directory
// when that cannot be determined.
func DefaultInstallDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
