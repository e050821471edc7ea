// Package bundle provides the shared, precompiled scripts module that takes precedence
// over on-the-fly compilation. One Cache is shared by every resource in a host session
// and is read-only once loaded.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/module"
)

// Cache reports whether a precompiled module is available.
type Cache interface {
	// Lookup returns the shared module and true when it exists. A missing artifact is
	// not an error.
	Lookup(ctx context.Context) (module.Module, bool, error)
}

// None is a Cache that never has a module.
type None struct{}

func (None) Lookup(context.Context) (module.Module, bool, error) {
	return nil, false, nil
}

// Static is a Cache that always returns the same module. A nil module means absent.
type Static struct {
	Module module.Module
}

func (s Static) Lookup(context.Context) (module.Module, bool, error) {
	return s.Module, s.Module != nil, nil
}

// File is a Cache backed by a well-known artifact path. The artifact is loaded once, the
// first time it is seen; later lookups return the same module.
type File struct {
	path   string
	loader module.Loader

	mu     sync.Mutex
	loaded module.Module

	logger *slog.Logger
}

// NewFile creates a Cache for the artifact at path, loaded with loader.
func NewFile(path string, loader module.Loader, handler slog.Handler) (*File, error) {
	if path == "" {
		return nil, errors.New("bundle path is empty")
	}
	if loader == nil {
		return nil, errors.New("bundle loader is nil")
	}
	_, logger := helpers.SetupLogger(handler, "bundle", "File")
	return &File{
		path:   path,
		loader: loader,
		logger: logger.With("path", path),
	}, nil
}

func (f *File) String() string {
	return fmt.Sprintf("bundle.File{Path: %s}", f.path)
}

// Path returns the artifact location.
func (f *File) Path() string {
	return f.path
}

// Lookup implements Cache.
func (f *File) Lookup(ctx context.Context) (module.Module, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded != nil {
		return f.loaded, true, nil
	}

	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to stat bundle: %w", err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("bundle path %s is a directory", f.path)
	}

	mod, err := f.loader.Load(ctx, f.path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("unable to load bundle: %w", err)
	}
	f.logger.Info("Loaded precompiled scripts bundle", "moduleID", mod.ID(), "entries", mod.Entries())
	f.loaded = mod
	return mod, true, nil
}

// Close releases the loaded module, if any.
func (f *File) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded == nil {
		return nil
	}
	err := f.loaded.Close(ctx)
	f.loaded = nil
	return err
}
