package assets

type Config struct {
	// Whether to minify output and drop pure function calls
	Minify bool
	// Whether to enable source maps
	SourceMap bool
	// Whether to write gzip copies of emitted assets
	Compress bool
	// Metafile name (relative to the output directory)
	MetafileName string
}

// DefaultConfig returns the build settings for the given environment
func DefaultConfig(production bool) Config {
	return Config{
		Minify:       production,
		SourceMap:    true,
		Compress:     production,
		MetafileName: "meta.json",
	}
}
