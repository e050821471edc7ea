package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	c := NewConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, LoaderStarlark, c.Toolchain.Loader)
	assert.Empty(t, c.Toolchain.Command)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("full file", func(t *testing.T) {
		c, err := Decode(`
temp-dir = "/tmp/scratch"
output-dir = "/tmp/out"
keep-artifacts = true
references = ["/lib/helpers.star", "/lib/shared.star"]
precompiled-only = true

[bundle]
path = "/srv/scripts/scripts.starc"

[starlark]
max-steps = 100000

[toolchain]
command = "scriptc"
args = ["--strict"]
working-dir = "/srv"
env = ["SCRIPTC_HOME=/opt/scriptc"]
loader = "wasm"
source-ext = ".ts"
output-ext = ".wasm"

[log]
level = "debug"
format = "json"
`)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/scratch", c.TempDir)
		assert.Equal(t, "/tmp/out", c.OutputDir)
		assert.True(t, c.KeepArtifacts)
		assert.Equal(t, []string{"/lib/helpers.star", "/lib/shared.star"}, c.References)
		assert.True(t, c.PrecompiledOnly)
		assert.Equal(t, "/srv/scripts/scripts.starc", c.Bundle.Path)
		assert.Equal(t, uint64(100000), c.Starlark.MaxSteps)
		assert.Equal(t, "scriptc", c.Toolchain.Command)
		assert.Equal(t, []string{"--strict"}, c.Toolchain.Args)
		assert.Equal(t, LoaderWASM, c.Toolchain.Loader)
		assert.Equal(t, ".wasm", c.Toolchain.OutputExt)
		assert.Equal(t, "debug", c.Log.Level)
		assert.Equal(t, "json", c.Log.Format)
	})

	t.Run("defaults survive a partial file", func(t *testing.T) {
		c, err := Decode(`keep-artifacts = true`)
		require.NoError(t, err)
		assert.True(t, c.KeepArtifacts)
		assert.Equal(t, "info", c.Log.Level)
		assert.Equal(t, LoaderStarlark, c.Toolchain.Loader)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Decode("keep-artefacts = true\n")
		require.ErrorIs(t, err, ErrUnknownKeys)
		assert.Contains(t, err.Error(), "keep-artefacts")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Decode("temp-dir = \n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to parse config")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "warn level", mutate: func(c *Config) { c.Log.Level = "warn" }, ok: true},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }},
		{name: "bad loader", mutate: func(c *Config) { c.Toolchain.Loader = "lua" }},
		{
			name: "bundle path and dir",
			mutate: func(c *Config) {
				c.Bundle.Path = "/a/scripts.starc"
				c.Bundle.Dir = "/a"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("relative paths resolve against the file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "livescript.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
output-dir = "out"
references = ["lib/helpers.star", "/abs/shared.star"]

[bundle]
dir = "dist"
`), 0o644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "out"), c.OutputDir)
		assert.Equal(t, filepath.Join(dir, "dist"), c.Bundle.Dir)
		assert.Equal(t, []string{filepath.Join(dir, "lib/helpers.star"), "/abs/shared.star"}, c.References)
		assert.Empty(t, c.TempDir)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	t.Run("json respects level", func(t *testing.T) {
		c := NewConfig()
		c.Log.Format = "json"
		c.Log.Level = "warn"

		var buf bytes.Buffer
		h, err := c.Handler(&buf)
		require.NoError(t, err)

		logger := slog.New(h)
		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
	})

	t.Run("bad level", func(t *testing.T) {
		c := NewConfig()
		c.Log.Level = "loud"
		_, err := c.Handler(&bytes.Buffer{})
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("in-process runtime", func(t *testing.T) {
		c := NewConfig()
		c.OutputDir = t.TempDir()

		h, err := c.Handler(&bytes.Buffer{})
		require.NoError(t, err)
		opts, err := c.Options(h)
		require.NoError(t, err)

		rt, err := livescript.New(opts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rt.Close(t.Context()) })
		assert.NotNil(t, rt.Service())
	})

	t.Run("external toolchain", func(t *testing.T) {
		for _, loader := range []string{LoaderStarlark, LoaderWASM} {
			c := NewConfig()
			c.Toolchain.Command = "scriptc"
			c.Toolchain.Args = []string{"--strict"}
			c.Toolchain.Env = []string{"A=1"}
			c.Toolchain.Loader = loader

			h, err := c.Handler(&bytes.Buffer{})
			require.NoError(t, err)
			opts, err := c.Options(h)
			require.NoError(t, err)

			rt, err := livescript.New(opts...)
			require.NoError(t, err, loader)
			require.NoError(t, rt.Close(t.Context()))
		}
	})
}
