package assets

import (
	"github.com/wolfeidau/demosify/internal/config"
)

type BuildMetadata struct {
	Inputs  map[string]InputInfo  `json:"inputs"`
	Outputs map[string]OutputInfo `json:"outputs"`
}

type InputInfo struct {
	Bytes int64 `json:"bytes"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	Bytes      int64        `json:"bytes"`
}

type ImportInfo struct {
	Path string `json:"path"`
}

// VendorChunk groups the node_modules inputs of one npm package.
type VendorChunk struct {
	Name   string
	Inputs []string
	Bytes  int64
}

// Pipeline hands a resolved configuration to esbuild
type Pipeline struct {
	resolved *config.ResolvedConfig
	config   Config
}

// New creates a new asset pipeline for the resolved configuration
func New(resolved *config.ResolvedConfig, cfg Config) *Pipeline {
	return &Pipeline{
		resolved: resolved,
		config:   cfg,
	}
}
