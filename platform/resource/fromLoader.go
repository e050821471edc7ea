package resource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robbyt/go-livescript/platform/source"
)

// FromLoader creates a Resource populated from l. A file backed loader also sets the
// source path. When name is empty it is derived from the file's base name.
func FromLoader(name string, l source.Loader, comp Compiler, opts ...FunctionalOption) (*Resource, error) {
	text, err := source.ReadAll(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}

	sourcePath := source.FilePath(l)
	if name == "" && sourcePath != "" {
		base := filepath.Base(sourcePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	base := []FunctionalOption{WithText(text)}
	if sourcePath != "" {
		base = append(base, WithSourcePath(sourcePath))
	}
	return New(name, comp, append(base, opts...)...)
}
