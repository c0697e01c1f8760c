package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultNames are the descriptor file names searched for, in order.
var DefaultNames = []string{
	".demosrc.js",
	".demosrc.ts",
	".demosrc.yaml",
	".demosrc.yml",
	".demosrc.json",
}

// Descriptor is a located and evaluated descriptor file.
type Descriptor struct {
	Path   string
	Source Source
}

// Options configures a Loader.
type Options struct {
	// Names overrides DefaultNames. A single entry pins the descriptor file.
	Names []string
	// Env is exposed to JavaScript descriptors as process.env.NODE_ENV.
	Env string
}

// Loader locates descriptor files and turns them into a Source.
type Loader struct {
	logger zerolog.Logger
	names  []string
	env    string
}

// NewLoader creates a loader using the given logger for descriptor console output.
func NewLoader(logger zerolog.Logger, opts Options) *Loader {
	names := opts.Names
	if len(names) == 0 {
		names = DefaultNames
	}

	return &Loader{
		logger: logger,
		names:  names,
		env:    opts.Env,
	}
}

// Find returns the path of the first descriptor present under root.
func (l *Loader) Find(root string) (string, error) {
	for _, name := range l.names {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, name)
		}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("failed to stat descriptor: %w", err)
		}
		if info.IsDir() {
			continue
		}

		return path, nil
	}

	expected := l.names[0]
	if !filepath.IsAbs(expected) {
		expected = filepath.Join(root, expected)
	}

	return "", &ConfigNotFoundError{Path: expected}
}

// Load locates the descriptor under root and evaluates it.
func (l *Loader) Load(root string) (*Descriptor, error) {
	path, err := l.Find(root)
	if err != nil {
		return nil, err
	}

	return l.LoadFile(path)
}

// LoadFile evaluates the descriptor at path. The format is chosen from the
// file extension.
func (l *Loader) LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigNotFoundError{Path: path}
		}
		return nil, &ConfigEvaluationError{Path: path, Stage: stageRead, Err: err}
	}

	var src Source

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		src, err = l.loadYAML(path, data)
	case ".json":
		src, err = l.loadJSON(path, data)
	case ".ts":
		src, err = l.loadScript(path, data, api.LoaderTS)
	default:
		src, err = l.loadScript(path, data, api.LoaderJS)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug().Str("path", path).Bool("factory", IsFactory(src)).Msg("Loaded descriptor")

	return &Descriptor{Path: path, Source: src}, nil
}

func (l *Loader) loadScript(path string, data []byte, loader api.Loader) (Source, error) {
	code, err := transpile(path, string(data), loader)
	if err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageTranspile, Err: err}
	}

	rt := newJSRuntime(l.logger, path, l.env)

	val, err := rt.run(code)
	if err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageEvaluate, Err: err}
	}

	src, err := rt.source(val)
	if err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageEvaluate, Err: err}
	}

	return src, nil
}

func (l *Loader) loadYAML(path string, data []byte) (Source, error) {
	raw := Raw{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageParse, Err: err}
	}

	return l.static(path, raw)
}

func (l *Loader) loadJSON(path string, data []byte) (Source, error) {
	raw := Raw{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageParse, Err: err}
	}

	return l.static(path, raw)
}

func (l *Loader) static(path string, raw Raw) (Source, error) {
	clean, _ := sanitize(map[string]any(raw)).(map[string]any)

	src, err := envOverlays(Raw(clean))
	if err != nil {
		return nil, &ConfigEvaluationError{Path: path, Stage: stageParse, Err: err}
	}
	return src, nil
}
