// Package compress writes pre-compressed copies of emitted assets so a static
// server can hand out .gz variants.
package compress

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/demosify/internal/bundle"
)

// Result describes what happened to one asset.
type Result struct {
	Path           string
	ArchivePath    string
	OriginalSize   int64
	CompressedSize int64
	// Written is false when the asset was below the threshold or did not
	// reach the minimum ratio.
	Written bool
}

// Ratio is CompressedSize / OriginalSize, or 1 when nothing was compressed.
func (r Result) Ratio() float64 {
	if r.OriginalSize == 0 || r.CompressedSize == 0 {
		return 1
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize)
}

// Apply compresses every path matching the policy. Non matching paths are
// skipped without a result.
func Apply(policy bundle.Compression, paths []string) ([]Result, error) {
	if policy.Algorithm != "" && policy.Algorithm != "gzip" {
		return nil, fmt.Errorf("unsupported compression algorithm %q", policy.Algorithm)
	}

	pattern, err := policy.Pattern()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(paths))

	for _, path := range paths {
		if !pattern.MatchString(path) {
			continue
		}

		res, err := compressFile(policy, path)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

func compressFile(policy bundle.Compression, path string) (Result, error) {
	res := Result{Path: path, ArchivePath: policy.ArchiveName(path)}

	src, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open asset: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return res, fmt.Errorf("failed to stat asset: %w", err)
	}
	res.OriginalSize = info.Size()

	if res.OriginalSize < policy.Threshold {
		log.Debug().
			Str("path", path).
			Int64("size_bytes", res.OriginalSize).
			Int64("threshold", policy.Threshold).
			Msg("Asset below compression threshold")
		return res, nil
	}

	var buf bytes.Buffer

	enc, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return res, fmt.Errorf("failed to create encoder: %w", err)
	}

	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		return res, fmt.Errorf("failed to compress: %w", err)
	}

	// Close encoder to flush
	if err := enc.Close(); err != nil {
		return res, fmt.Errorf("failed to close encoder: %w", err)
	}

	res.CompressedSize = int64(buf.Len())

	if res.Ratio() > policy.MinRatio {
		log.Debug().
			Str("path", path).
			Float64("ratio", res.Ratio()).
			Float64("min_ratio", policy.MinRatio).
			Msg("Compression ratio too low, skipping")
		return res, nil
	}

	if err := os.WriteFile(res.ArchivePath, buf.Bytes(), 0o644); err != nil {
		return res, fmt.Errorf("failed to write archive: %w", err)
	}
	res.Written = true

	log.Info().
		Str("path", path).
		Int64("original_bytes", res.OriginalSize).
		Int64("compressed_bytes", res.CompressedSize).
		Float64("ratio", res.Ratio()).
		Str("archive_path", res.ArchivePath).
		Msg("Asset compressed")

	return res, nil
}
