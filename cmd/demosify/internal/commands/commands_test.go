package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/demosify/internal/descriptor"
	"gopkg.in/yaml.v3"
)

func setupProject(t *testing.T, code string) (root, installDir string) {
	t.Helper()

	root = t.TempDir()
	installDir = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".demosrc.js"), []byte(code), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(installDir, "index.js"), []byte(`document.title = process.env.NODE_ENV;`), 0600))

	return root, installDir
}

func TestResolveCmd_JSON(t *testing.T) {
	root, installDir := setupProject(t, `export default (env) => ({ output: env, devServer: { port: 9000 } });`)

	var buf bytes.Buffer
	cmd := &ResolveCmd{
		ProjectFlags: ProjectFlags{Root: root, Env: "production", InstallDir: installDir},
		Format:       "json",
		out:          &buf,
	}

	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{"dir": "production", "path": filepath.Join(root, "production")}, got["output"])
	assert.Equal(t, float64(9000), got["devServerPort"])
	assert.Equal(t, filepath.Join(installDir, "index.js"), got["entry"])
}

func TestResolveCmd_YAML(t *testing.T) {
	root, installDir := setupProject(t, `module.exports = { demosPath: "stories" };`)

	var buf bytes.Buffer
	cmd := &ResolveCmd{
		ProjectFlags: ProjectFlags{Root: root, Env: "development", InstallDir: installDir},
		Format:       "yaml",
		out:          &buf,
	}

	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, filepath.Join(root, "stories"), got["demosPath"])
	assert.Equal(t, 3000, got["devServerPort"])
}

func TestResolveCmd_MissingDescriptor(t *testing.T) {
	cmd := &ResolveCmd{
		ProjectFlags: ProjectFlags{Root: t.TempDir(), Env: "development"},
		out:          &bytes.Buffer{},
	}

	err := cmd.Run(context.Background(), &Globals{})
	require.Error(t, err)
	assert.ErrorIs(t, err, descriptor.ErrConfigNotFound)
}

func TestBuildCmd_Run(t *testing.T) {
	root, installDir := setupProject(t, `module.exports = { output: "site" };`)

	cmd := &BuildCmd{
		ProjectFlags: ProjectFlags{Root: root, Env: "production", InstallDir: installDir},
		SourceMap:    false,
	}

	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	data, err := os.ReadFile(filepath.Join(root, "site", "index.bundle.js"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"production"`)

	_, err = os.Stat(filepath.Join(root, "site", "index.bundle.js.map"))
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_Parse(t *testing.T) {
	var cli struct {
		Resolve ResolveCmd `cmd:""`
		Build   BuildCmd   `cmd:""`
		Serve   ServeCmd   `cmd:""`
	}

	root := t.TempDir()
	t.Setenv("NODE_ENV", "production")

	parser, err := kong.New(&cli)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"build", "--root", root, "--no-source-map", "--no-compress"})
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())
	assert.Equal(t, root, cli.Build.Root)
	assert.Equal(t, "production", cli.Build.Env)
	assert.False(t, cli.Build.SourceMap)
	assert.True(t, cli.Build.NoCompress)

	_, err = parser.Parse([]string{"resolve", "--root", root, "--format", "toml"})
	require.Error(t, err)
}
