package source

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript/internal/helpers"
)

func TestNewFromDisk(t *testing.T) {
	t.Parallel()

	t.Run("absolute and file scheme", func(t *testing.T) {
		t.Parallel()
		absPath := filepath.Join(t.TempDir(), "foo.star")
		for _, in := range []string{absPath, "file://" + absPath} {
			l, err := NewFromDisk(in)
			require.NoError(t, err)
			assert.Equal(t, absPath, l.Path())
			assert.Equal(t, "file", l.GetSourceURL().Scheme)
			assert.Equal(t, absPath, FilePath(l))
		}
	})

	t.Run("relative path is resolved", func(t *testing.T) {
		t.Parallel()
		l, err := NewFromDisk("scripts/foo.star")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(l.Path()))
		assert.Equal(t, "foo.star", filepath.Base(l.Path()))
	})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "http", path: "http://example.com/foo.star", wantErr: ErrSchemeUnsupported},
		{name: "https", path: "https://example.com/foo.star", wantErr: ErrSchemeUnsupported},
		{name: "other scheme", path: "s3://bucket/foo.star", wantErr: ErrSchemeUnsupported},
		{name: "empty", path: "", wantErr: ErrSourceNotAvailable},
		{name: "blank", path: "   ", wantErr: ErrSourceNotAvailable},
		{name: "root", path: "/", wantErr: ErrSourceNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := NewFromDisk(tt.path)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, l)
		})
	}
}

func TestFromDiskRead(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "foo.star")
	content := "Foo = ScriptBase()\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l, err := NewFromDisk(path)
	require.NoError(t, err)

	text, err := ReadAll(l)
	require.NoError(t, err)
	assert.Equal(t, content, text)
	assert.Contains(t, l.String(), helpers.SHA256(content)[:8])

	missing, err := NewFromDisk(filepath.Join(t.TempDir(), "missing.star"))
	require.NoError(t, err)
	_, err = ReadAll(missing)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, missing.String(), "SHA256")
}

func TestNewFromString(t *testing.T) {
	t.Parallel()

	content := "Foo = ScriptBase()\nx = "
	l, err := NewFromString(content)
	require.NoError(t, err)

	text, err := ReadAll(l)
	require.NoError(t, err)
	assert.Equal(t, content, text, "content is not trimmed")
	assert.Equal(t, "string", l.GetSourceURL().Scheme)
	assert.Contains(t, l.GetSourceURL().String(), helpers.ShortID(content))
	assert.Empty(t, FilePath(l))
	assert.Equal(t, "source.FromString{Chars: 23}", l.String())

	for _, blank := range []string{"", " \n\t "} {
		_, err := NewFromString(blank)
		require.ErrorIs(t, err, ErrSourceNotAvailable)
	}
}

type brokenLoader struct{}

func (brokenLoader) GetReader() (io.ReadCloser, error) { return nil, errors.New("broken") }
func (brokenLoader) GetSourceURL() *url.URL            { return nil }

func TestReadAllErrors(t *testing.T) {
	t.Parallel()
	_, err := ReadAll(nil)
	require.ErrorIs(t, err, ErrSourceNotAvailable)

	_, err = ReadAll(brokenLoader{})
	require.EqualError(t, err, "broken")
	assert.Empty(t, FilePath(brokenLoader{}))
	assert.Empty(t, FilePath(nil))
}
