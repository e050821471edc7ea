package starlark

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/toolchain"
)

func testHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runToolchain(t *testing.T, source string, refs ...string) (toolchain.Result, string, string, error) {
	t.Helper()
	dir := t.TempDir()
	src := writeSource(t, dir, "script.star", source)
	out := filepath.Join(dir, "script.starc")

	tc, err := NewToolchain(WithLogHandler(testHandler()))
	require.NoError(t, err)

	args := toolchain.Args{Output: out, Library: true, Debug: true, NoFramework: true, References: refs, Source: src}
	res, err := tc.Run(context.Background(), args.Build())
	return res, src, out, err
}

func TestToolchainRun(t *testing.T) {
	t.Parallel()

	t.Run("compiles", func(t *testing.T) {
		t.Parallel()
		res, _, out, err := runToolchain(t, "Foo = ScriptBase()\n")
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Empty(t, res.Diagnostics)

		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("syntax error keeps position", func(t *testing.T) {
		t.Parallel()
		res, src, out, err := runToolchain(t, "Foo = ScriptBase()\nx = ")
		require.NoError(t, err)
		assert.Equal(t, 1, res.ExitCode)
		require.NotEmpty(t, res.Diagnostics)

		d := res.Diagnostics[0]
		assert.Equal(t, 2, d.Line)
		assert.Equal(t, src, d.FilePath)
		assert.Equal(t, CategorySyntax, d.Category)
		assert.Equal(t, diagnostic.SeverityError, d.Severity)

		_, err = os.Stat(out)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("resolve errors", func(t *testing.T) {
		t.Parallel()
		res, _, _, err := runToolchain(t, "Foo = ScriptBase()\nBar = ScriptBase(run = missing_fn)\ny = other\n")
		require.NoError(t, err)
		assert.Equal(t, 1, res.ExitCode)
		require.Len(t, res.Diagnostics, 2)
		assert.Equal(t, 2, res.Diagnostics[0].Line)
		assert.Equal(t, 3, res.Diagnostics[1].Line)
		for _, d := range res.Diagnostics {
			assert.Equal(t, CategoryResolve, d.Category)
			assert.Contains(t, d.Message, "undefined")
		}
	})

	t.Run("unknown load", func(t *testing.T) {
		t.Parallel()
		res, _, _, err := runToolchain(t, "load(\"lib.star\", \"helper\")\nFoo = ScriptBase(run = helper)\n")
		require.NoError(t, err)
		assert.Equal(t, 1, res.ExitCode)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, CategoryReference, res.Diagnostics[0].Category)
		assert.Equal(t, 1, res.Diagnostics[0].Line)
	})

	t.Run("load matches reference base name", func(t *testing.T) {
		t.Parallel()
		lib := writeSource(t, t.TempDir(), "lib.star", "def helper(self):\n    return 1\n")
		res, _, _, err := runToolchain(t, "load(\"lib.star\", \"helper\")\nFoo = ScriptBase(run = helper)\n", lib)
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("missing reference warns", func(t *testing.T) {
		t.Parallel()
		res, _, _, err := runToolchain(t, "Foo = ScriptBase()\n", filepath.Join(t.TempDir(), "gone.star"))
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diagnostic.SeverityWarning, res.Diagnostics[0].Severity)
	})

	t.Run("invalid args", func(t *testing.T) {
		t.Parallel()
		tc, err := NewToolchain(WithLogHandler(testHandler()))
		require.NoError(t, err)
		_, err = tc.Run(context.Background(), []string{"--bogus"})
		require.ErrorIs(t, err, toolchain.ErrInvalidArgs)
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		tc, err := NewToolchain(WithLogHandler(testHandler()))
		require.NoError(t, err)
		dir := t.TempDir()
		args := toolchain.Args{Output: filepath.Join(dir, "o.starc"), Source: filepath.Join(dir, "missing.star")}
		_, err = tc.Run(context.Background(), args.Build())
		require.ErrorIs(t, err, ErrReadSource)
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()
		tc, err := NewToolchain(WithLogHandler(testHandler()))
		require.NoError(t, err)
		dir := t.TempDir()
		src := writeSource(t, dir, "s.star", "Foo = ScriptBase()\n")
		args := toolchain.Args{Output: filepath.Join(dir, "missing", "o.starc"), Source: src}
		_, err = tc.Run(context.Background(), args.Build())
		require.ErrorIs(t, err, ErrWriteProgram)
	})
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	_, err := NewToolchain(WithLogHandler(nil))
	require.Error(t, err)
	_, err = NewLoader(WithLogger(nil))
	require.Error(t, err)
	_, err = NewLoader(WithFileOptions(nil))
	require.Error(t, err)

	tc, err := NewToolchain(WithLogger(slog.Default()), WithMaxExecutionSteps(10))
	require.NoError(t, err)
	assert.Equal(t, "starlark.Toolchain", tc.String())
	assert.Equal(t, uint64(10), tc.cfg.maxSteps)

	l, err := NewLoader()
	require.NoError(t, err)
	assert.Equal(t, "starlark.Loader", l.String())
}
