package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/demosify/internal/bundle"
	"github.com/wolfeidau/demosify/internal/compress"
)

// Report summarises a finished build
type Report struct {
	// Entrypoint is the metafile path of the bundle built from the entry
	Entrypoint string
	// Scripts lists the entrypoint followed by the chunks it imports, in load order
	Scripts      []string
	OutputFiles  []string
	VendorChunks []VendorChunk
	Compressed   []compress.Result
}

// Options maps the resolved configuration onto esbuild build options
func (p *Pipeline) Options() api.BuildOptions {
	r := p.resolved

	opts := api.BuildOptions{
		EntryPoints:       []string{r.Entry},
		Bundle:            true,
		Splitting:         true,
		Write:             true,
		Format:            api.FormatESModule,
		Outdir:            r.Output.Path,
		PublicPath:        r.Output.PublicURL,
		EntryNames:        strings.TrimSuffix(r.OutputFilename, filepath.Ext(r.OutputFilename)),
		ChunkNames:        "chunks/[name]-[hash]",
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:          true,
		Loader:            loaders(r.Bundle.Rules),
		Define:            defines(r.Envs),
		Plugins: []api.Plugin{
			aliasPlugin(r.Aliases),
			nodeShimPlugin(r.Bundle.NodeShims),
		},
	}

	if p.config.Minify {
		opts.Pure = r.Bundle.Optimization.PureFuncs
	}

	return opts
}

// Build runs esbuild with the resolved settings, loads metadata and
// compresses the emitted assets when enabled
func (p *Pipeline) Build() (*Report, error) {
	if _, err := os.Stat(p.resolved.Entry); err != nil {
		return nil, fmt.Errorf("entry point not found: %w", err)
	}

	log.Info().Str("entrypoint", p.resolved.Entry).Str("outdir", p.resolved.Output.Path).Msg("Building assets")

	result := api.Build(p.Options())

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return nil, errors.New("esbuild failed with errors")
	}

	report := &Report{}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
		report.OutputFiles = append(report.OutputFiles, file.Path)
	}

	// Write metafile
	metafilePath := filepath.Join(p.resolved.Output.Path, p.config.MetafileName)
	if err := os.WriteFile(metafilePath, []byte(result.Metafile), 0600); err != nil {
		return nil, err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return nil, err
	}

	scripts, entrypoint, err := LoadScripts(&metadata, p.resolved.Entry)
	if err != nil {
		return nil, err
	}
	report.Scripts = scripts
	report.Entrypoint = entrypoint

	report.VendorChunks = vendorChunks(&metadata)
	for _, chunk := range report.VendorChunks {
		log.Debug().Str("chunk", chunk.Name).Int("inputs", len(chunk.Inputs)).Int64("bytes", chunk.Bytes).Msg("Vendor package")
	}

	if p.config.Compress {
		compressed, err := compress.Apply(p.resolved.Bundle.Compression, report.OutputFiles)
		if err != nil {
			return nil, err
		}
		report.Compressed = compressed
	}

	return report, nil
}

// ServeOptions returns the build options used by the dev server. esbuild
// requires the outdir to live inside the served directory, so bundles are
// served from a subdirectory of the public folder named after the output dir.
func (p *Pipeline) ServeOptions() api.BuildOptions {
	opts := p.Options()
	opts.Write = false
	opts.Outdir = filepath.Join(p.resolved.PublicFolder, filepath.Base(p.resolved.Output.Dir))
	return opts
}

// Serve runs the esbuild dev server on the configured port until ctx is done
func (p *Pipeline) Serve(ctx context.Context) error {
	if err := os.MkdirAll(p.resolved.PublicFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create public folder: %w", err)
	}

	opts := p.ServeOptions()

	bctx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return fmt.Errorf("failed to create build context: %v", ctxErr.Errors)
	}
	defer bctx.Dispose()

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}

	if _, err := bctx.Serve(api.ServeOptions{
		Port:     p.resolved.DevServerPort,
		Servedir: p.resolved.PublicFolder,
	}); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	log.Info().
		Int("port", p.resolved.DevServerPort).
		Str("servedir", p.resolved.PublicFolder).
		Str("outdir", opts.Outdir).
		Msg("Dev server started")

	<-ctx.Done()

	log.Info().Msg("Dev server stopping")

	return nil
}

// LoadScripts returns the ordered list of script paths needed for the entry
// and the path of the bundle built from it
func LoadScripts(metadata *BuildMetadata, entry string) ([]string, string, error) {
	if metadata == nil {
		return nil, "", errors.New("no build metadata")
	}

	scripts := []string{}
	visited := make(map[string]bool)

	for outputPath, info := range metadata.Outputs {
		if info.EntryPoint != "" && sameFile(info.EntryPoint, entry) {
			entrypoint := "/" + filepath.ToSlash(outputPath)
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			addDependencies(metadata, info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", errors.New("entrypoint not found in metadata")
}

func addDependencies(metadata *BuildMetadata, output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, "/"+filepath.ToSlash(imp.Path))

			if chunkInfo, exists := metadata.Outputs[imp.Path]; exists {
				addDependencies(metadata, chunkInfo, scripts, visited)
			}
		}
	}
}

// vendorChunks groups node_modules inputs by their npm chunk name
func vendorChunks(metadata *BuildMetadata) []VendorChunk {
	byName := map[string]*VendorChunk{}

	for input, info := range metadata.Inputs {
		name, ok := bundle.ChunkName(input)
		if !ok {
			continue
		}

		chunk, exists := byName[name]
		if !exists {
			chunk = &VendorChunk{Name: name}
			byName[name] = chunk
		}
		chunk.Inputs = append(chunk.Inputs, input)
		chunk.Bytes += info.Bytes
	}

	chunks := make([]VendorChunk, 0, len(byName))
	for _, chunk := range byName {
		slices.Sort(chunk.Inputs)
		chunks = append(chunks, *chunk)
	}
	slices.SortFunc(chunks, func(a, b VendorChunk) int {
		return strings.Compare(a.Name, b.Name)
	})

	return chunks
}

// sameFile compares a metafile path, which is relative to the working
// directory, with an absolute path
func sameFile(metaPath, absPath string) bool {
	if filepath.IsAbs(metaPath) {
		return filepath.Clean(metaPath) == absPath
	}

	abs, err := filepath.Abs(metaPath)
	if err != nil {
		return false
	}
	return abs == absPath
}

func loaders(rules []bundle.Rule) map[string]api.Loader {
	out := map[string]api.Loader{}
	for _, rule := range rules {
		if rule.Loader == "json" {
			out[".json"] = api.LoaderJSON
		}
	}
	return out
}

func defines(envs map[string]string) map[string]string {
	out := make(map[string]string, len(envs))
	for key, val := range envs {
		out["process.env."+key] = strconv.Quote(val)
	}
	return out
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
