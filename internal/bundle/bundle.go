// Package bundle describes the contract handed to the external bundler:
// module rules, asset compression, code splitting and node shims.
package bundle

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultOutputFilename is the file name pattern for entry bundles.
	DefaultOutputFilename = "[name].bundle.js"

	// UnboundedRequests disables the max initial requests limit.
	UnboundedRequests = 0
)

// Rule remaps imports matching Test to a loader.
type Rule struct {
	Name   string `json:"name" yaml:"name"`
	Test   string `json:"test" yaml:"test"`
	Loader string `json:"loader" yaml:"loader"`
	Type   string `json:"type" yaml:"type"`
}

// Compression configures gzip output for emitted assets.
type Compression struct {
	Filename  string  `json:"filename" yaml:"filename"`
	Algorithm string  `json:"algorithm" yaml:"algorithm"`
	Test      string  `json:"test" yaml:"test"`
	Threshold int64   `json:"threshold" yaml:"threshold"`
	MinRatio  float64 `json:"minRatio" yaml:"minRatio"`
}

// Pattern compiles Test, the expression selecting assets to compress.
func (c Compression) Pattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.Test)
	if err != nil {
		return nil, fmt.Errorf("invalid compression test %q: %w", c.Test, err)
	}
	return re, nil
}

// ArchiveName expands the Filename pattern for the asset at path.
func (c Compression) ArchiveName(path string) string {
	return strings.NewReplacer("[path]", path, "[query]", "").Replace(c.Filename)
}

// CacheGroup selects modules for a shared chunk.
type CacheGroup struct {
	Test string `json:"test" yaml:"test"`
}

// SplitChunks is the code splitting policy. It is descriptive: esbuild
// splits shared modules on its own, and the vendor report groups node_modules
// inputs with ChunkName rather than these fields.
type SplitChunks struct {
	Chunks             string     `json:"chunks" yaml:"chunks"`
	MaxInitialRequests int        `json:"maxInitialRequests" yaml:"maxInitialRequests"`
	MinSize            int        `json:"minSize" yaml:"minSize"`
	Vendor             CacheGroup `json:"vendor" yaml:"vendor"`
}

// Optimization groups chunking and minimizer settings. RuntimeChunk and
// SplitChunks are reported in the resolved configuration but not mapped onto
// esbuild options; PureFuncs is.
type Optimization struct {
	RuntimeChunk string      `json:"runtimeChunk" yaml:"runtimeChunk"`
	SplitChunks  SplitChunks `json:"splitChunks" yaml:"splitChunks"`
	// PureFuncs are calls the minimizer may drop.
	PureFuncs []string `json:"pureFuncs" yaml:"pureFuncs"`
}

// Options is the bundler specific part of a resolved configuration.
type Options struct {
	Rules        []Rule            `json:"rules" yaml:"rules"`
	Compression  Compression       `json:"compression" yaml:"compression"`
	Optimization Optimization      `json:"optimization" yaml:"optimization"`
	NodeShims    map[string]string `json:"nodeShims" yaml:"nodeShims"`
}

// Defaults returns the bundler contract used for every project.
func Defaults() Options {
	return Options{
		Rules: []Rule{
			{Name: "json", Test: `\.json$`, Loader: "json", Type: "javascript/auto"},
		},
		Compression: Compression{
			Filename:  "[path].gz[query]",
			Algorithm: "gzip",
			Test:      `\.(js|css)$`,
			Threshold: 10240,
			MinRatio:  0.8,
		},
		Optimization: Optimization{
			RuntimeChunk: "single",
			SplitChunks: SplitChunks{
				Chunks:             "all",
				MaxInitialRequests: UnboundedRequests,
				MinSize:            20000,
				Vendor:             CacheGroup{Test: `[\\/]node_modules[\\/]`},
			},
			PureFuncs: []string{"console.log"},
		},
		NodeShims: map[string]string{"fs": "empty"},
	}
}

var packagePattern = regexp.MustCompile(`(?:^|[\\/])node_modules[\\/]((?:@[^\\/]+[\\/])?[^\\/]+)`)

// ChunkName returns the vendor chunk name for a module path inside
// node_modules, e.g. node_modules/@scope/pkg/index.js is npm.scopepkg.
// The second result is false for modules outside node_modules.
func ChunkName(modulePath string) (string, bool) {
	match := packagePattern.FindStringSubmatch(modulePath)
	if match == nil {
		return "", false
	}

	name := strings.Replace(match[1], "@", "", 1)
	name = strings.NewReplacer("/", "", `\`, "").Replace(name)

	return "npm." + name, true
}
