package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MarkerExtension is the extension of the hidden reload marker written next to a resource.
const MarkerExtension = ".meta"

// MarkerPath derives the marker location for a resource stored at path: same directory,
// same base name, MarkerExtension. It returns "" for an empty path.
func MarkerPath(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base))+MarkerExtension)
}

// touchMarker unhides the marker, rewrites it empty, stamps its modification time with
// now and hides it again.
func touchMarker(path string, now time.Time) error {
	if _, err := os.Stat(path); err == nil {
		if err := setHidden(path, false); err != nil {
			return fmt.Errorf("%w: unhide %s: %w", ErrMarker, path, err)
		}
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrMarker, err)
	}

	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("%w: %w", ErrMarker, err)
	}

	if err := setHidden(path, true); err != nil {
		return fmt.Errorf("%w: hide %s: %w", ErrMarker, path, err)
	}
	return nil
}

// MarkerInfo is what the reload marker records.
type MarkerInfo struct {
	Path     string
	Exists   bool
	Hidden   bool
	Reloaded time.Time
}

// ReadMarker reports the state of the marker at path. A missing marker is not an error.
func ReadMarker(path string) (MarkerInfo, error) {
	info := MarkerInfo{Path: path}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}
		return info, err
	}

	info.Exists = true
	info.Reloaded = st.ModTime()
	info.Hidden, err = isHidden(path)
	if err != nil {
		return info, err
	}
	return info, nil
}
