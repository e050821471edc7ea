// Package source provides readers for script source text.
package source

import (
	"errors"
	"io"
	"net/url"
	"path/filepath"
)

var (
	ErrSchemeUnsupported  = errors.New("unsupported scheme")
	ErrSourceNotAvailable = errors.New("source not available")
)

// Loader supplies the source text of one script and where it came from.
type Loader interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// ReadAll reads the full source text from l.
func ReadAll(l Loader) (string, error) {
	if l == nil {
		return "", ErrSourceNotAvailable
	}
	rc, err := l.GetReader()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FilePath returns the local file path behind l, or "" when l is not file backed.
func FilePath(l Loader) string {
	if l == nil {
		return ""
	}
	u := l.GetSourceURL()
	if u == nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}
