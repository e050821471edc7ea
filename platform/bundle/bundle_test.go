package bundle

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript/platform/module"
)

func newMod() *module.MockModule {
	mod := new(module.MockModule)
	mod.On("ID").Return("bundle").Maybe()
	mod.On("Entries").Return([]string{"Foo"}).Maybe()
	return mod
}

func TestNoneAndStatic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mod, ok, err := None{}.Lookup(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, mod)

	_, ok, err = Static{}.Lookup(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := newMod()
	got, ok, err := Static{Module: want}.Lookup(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, want, got)
}

func TestFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	handler := slog.NewTextHandler(os.Stdout, nil)

	t.Run("constructor validation", func(t *testing.T) {
		t.Parallel()
		_, err := NewFile("", new(module.MockLoader), handler)
		require.Error(t, err)
		_, err = NewFile("/x", nil, handler)
		require.Error(t, err)
	})

	t.Run("missing artifact", func(t *testing.T) {
		t.Parallel()
		loader := new(module.MockLoader)
		f, err := NewFile(filepath.Join(t.TempDir(), "scripts.starc"), loader, handler)
		require.NoError(t, err)

		mod, ok, err := f.Lookup(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, mod)
		loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		f, err := NewFile(t.TempDir(), new(module.MockLoader), handler)
		require.NoError(t, err)
		_, _, err = f.Lookup(ctx)
		require.Error(t, err)
	})

	t.Run("loaded once", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "scripts.starc")
		require.NoError(t, os.WriteFile(path, []byte("bundle"), 0o644))

		want := newMod()
		want.On("Close", mock.Anything).Return(nil).Once()
		loader := new(module.MockLoader)
		loader.On("Load", mock.Anything, path, []string(nil)).Return(want, nil).Once()

		f, err := NewFile(path, loader, handler)
		require.NoError(t, err)
		assert.Equal(t, path, f.Path())
		assert.Contains(t, f.String(), path)

		for range 3 {
			got, ok, err := f.Lookup(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Same(t, want, got)
		}
		loader.AssertExpectations(t)

		require.NoError(t, f.Close(ctx))
		require.NoError(t, f.Close(ctx))
		want.AssertExpectations(t)
	})

	t.Run("load error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "scripts.starc")
		require.NoError(t, os.WriteFile(path, []byte("bundle"), 0o644))

		loader := new(module.MockLoader)
		loader.On("Load", mock.Anything, path, []string(nil)).Return(nil, errors.New("corrupt"))

		f, err := NewFile(path, loader, handler)
		require.NoError(t, err)
		_, ok, err := f.Lookup(ctx)
		require.ErrorContains(t, err, "corrupt")
		assert.False(t, ok)
	})
}
