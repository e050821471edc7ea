package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBundleNames are the file names a precompiled scripts bundle is searched under.
var DefaultBundleNames = []string{
	filepath.Join("scripts", "scripts.wasm"),
	filepath.Join("scripts", "scripts.starc"),
}

// FindBundle searches baseDir for a precompiled scripts bundle, trying each name in order.
//
// Parameters:
//   - logger: Optional logger for verbose output
//   - baseDir: Directory the names are resolved against
//   - names: Candidate relative paths; DefaultBundleNames when empty
//
// Returns:
//   - Absolute path to the found bundle
//   - Error listing every checked path if none exists
func FindBundle(logger *slog.Logger, baseDir string, names ...string) (string, error) {
	if len(names) == 0 {
		names = DefaultBundleNames
	}

	checkedPaths := make([]string, 0, len(names))
	for _, name := range names {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, name)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
			if logger != nil {
				logger.Debug("Found scripts bundle", "path", absPath)
			}
			return absPath, nil
		}
		checkedPaths = append(checkedPaths, absPath)
	}

	return "", fmt.Errorf(
		"%w: checked %s",
		os.ErrNotExist,
		strings.Join(checkedPaths, ", "),
	)
}
