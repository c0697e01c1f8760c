package compress

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/demosify/internal/bundle"
)

func writeAsset(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestApply(t *testing.T) {
	tmpDir := t.TempDir()
	policy := bundle.Defaults().Compression

	compressible := []byte(strings.Repeat("console.log('hello world');\n", 1000))
	random := make([]byte, 20*1024)
	_, err := rand.Read(random)
	require.NoError(t, err)

	large := writeAsset(t, tmpDir, "main.bundle.js", compressible)
	small := writeAsset(t, tmpDir, "small.css", []byte("body{margin:0}"))
	noisy := writeAsset(t, tmpDir, "noise.js", random)
	html := writeAsset(t, tmpDir, "index.html", compressible)

	results, err := Apply(policy, []string{large, small, noisy, html})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, large, results[0].Path)
	assert.True(t, results[0].Written)
	assert.Equal(t, large+".gz", results[0].ArchivePath)
	assert.Less(t, results[0].Ratio(), policy.MinRatio)

	assert.Equal(t, small, results[1].Path)
	assert.False(t, results[1].Written)
	assert.Zero(t, results[1].CompressedSize)

	assert.Equal(t, noisy, results[2].Path)
	assert.False(t, results[2].Written)
	assert.Greater(t, results[2].Ratio(), policy.MinRatio)

	info, err := os.Stat(large + ".gz")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm()&0o644)

	_, err = os.Stat(small + ".gz")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(noisy + ".gz")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(html + ".gz")
	assert.True(t, os.IsNotExist(err))

	f, err := os.Open(large + ".gz")
	require.NoError(t, err)
	defer f.Close()

	dec, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, compressible, got)
}

func TestApply_UnsupportedAlgorithm(t *testing.T) {
	policy := bundle.Defaults().Compression
	policy.Algorithm = "brotli"

	_, err := Apply(policy, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brotli")
}

func TestApply_MissingFile(t *testing.T) {
	policy := bundle.Defaults().Compression

	_, err := Apply(policy, []string{filepath.Join(t.TempDir(), "missing.js")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open asset")
}

func TestApply_InvalidPattern(t *testing.T) {
	policy := bundle.Defaults().Compression
	policy.Test = `\.(js`

	path := writeAsset(t, t.TempDir(), "main.js", []byte("x"))

	results, err := Apply(policy, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid compression test")
	assert.Nil(t, results)
}
