// Package livescript wires the compile-cache-reload stack together: a compiler port
// (Starlark in-process by default), the compiler service facade with its precompiled
// bundle fast path, and script resources built on top of them.
package livescript

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/robbyt/go-livescript/engines/extism"
	"github.com/robbyt/go-livescript/engines/starlark"
	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/bundle"
	"github.com/robbyt/go-livescript/platform/compiler"
	"github.com/robbyt/go-livescript/platform/module"
	"github.com/robbyt/go-livescript/platform/resource"
	"github.com/robbyt/go-livescript/platform/service"
	"github.com/robbyt/go-livescript/platform/source"
	"github.com/robbyt/go-livescript/platform/toolchain"
)

// Runtime owns one compiler, one service and the shared bundle for a host session.
type Runtime struct {
	compiler compiler.Compiler
	service  *service.Service
	bundle   bundle.Cache

	resourceOpts []resource.FunctionalOption
	logHandler   slog.Handler
	logger       *slog.Logger
}

// New builds a Runtime.
func New(opts ...Option) (*Runtime, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handler, logger := helpers.SetupLogger(s.logHandler, "livescript", "Runtime")

	comp, err := newCompiler(s, handler)
	if err != nil {
		return nil, err
	}
	for _, ref := range s.references {
		comp.AddReference(ref)
	}

	cache, err := newBundle(s, handler, logger)
	if err != nil {
		return nil, err
	}

	svcOpts := []service.FunctionalOption{
		service.WithBundle(cache),
		service.WithLogHandler(handler),
	}
	if s.registerer != nil {
		svcOpts = append(svcOpts, service.WithRegisterer(s.registerer))
	}
	svc, err := service.New(comp, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create compiler service: %w", err)
	}

	resourceOpts := []resource.FunctionalOption{resource.WithLogHandler(handler)}
	if s.precompiledOnly {
		resourceOpts = append(resourceOpts, resource.WithPrecompiledOnly())
	}
	if s.clock != nil {
		resourceOpts = append(resourceOpts, resource.WithClock(s.clock))
	}

	logger.Debug("Runtime ready", "compiler", comp, "bundle", cache)
	return &Runtime{
		compiler:     comp,
		service:      svc,
		bundle:       cache,
		resourceOpts: resourceOpts,
		logHandler:   handler,
		logger:       logger,
	}, nil
}

func newCompiler(s *settings, handler slog.Handler) (*toolchain.Compiler, error) {
	compilerOpts := []toolchain.FunctionalOption{toolchain.WithLogHandler(handler)}
	if s.tempDir != "" {
		compilerOpts = append(compilerOpts, toolchain.WithTempDir(s.tempDir))
	}
	if s.outputDir != "" {
		compilerOpts = append(compilerOpts, toolchain.WithOutputDir(s.outputDir))
	}
	if s.keepArtifacts {
		compilerOpts = append(compilerOpts, toolchain.WithKeepArtifacts())
	}

	if s.toolchain != nil {
		compilerOpts = append(compilerOpts,
			toolchain.WithSourceExtension(s.sourceExt),
			toolchain.WithOutputExtension(s.outputExt),
		)
		comp, err := toolchain.New(s.toolchain, s.loader, compilerOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create compiler: %w", err)
		}
		return comp, nil
	}

	comp, err := starlark.NewCompiler(s.starlarkOptions(handler), compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create starlark compiler: %w", err)
	}
	return comp, nil
}

func newBundle(s *settings, handler slog.Handler, logger *slog.Logger) (bundle.Cache, error) {
	path := s.bundlePath
	if path == "" && s.bundleDir != "" {
		found, err := helpers.FindBundle(logger, s.bundleDir)
		if err != nil {
			logger.Debug("No precompiled scripts bundle yet", "error", err)
			found = filepath.Join(s.bundleDir, helpers.DefaultBundleNames[0])
		}
		path = found
	}
	if path == "" {
		return bundle.None{}, nil
	}

	loader, err := bundleLoader(path, s, handler)
	if err != nil {
		return nil, err
	}
	f, err := bundle.NewFile(path, loader, handler)
	if err != nil {
		return nil, fmt.Errorf("unable to create bundle cache: %w", err)
	}
	return f, nil
}

// bundleLoader picks the loader for a bundle by extension: WASM bundles go through
// Extism, everything else is a compiled Starlark program.
func bundleLoader(path string, s *settings, handler slog.Handler) (module.Loader, error) {
	if filepath.Ext(path) == ".wasm" {
		l, err := extism.NewLoader(extism.WithLogHandler(handler))
		if err != nil {
			return nil, fmt.Errorf("unable to create wasm bundle loader: %w", err)
		}
		return l, nil
	}
	l, err := starlark.NewLoader(s.starlarkOptions(handler)...)
	if err != nil {
		return nil, fmt.Errorf("unable to create starlark bundle loader: %w", err)
	}
	return l, nil
}

func (r *Runtime) String() string {
	return fmt.Sprintf("livescript.Runtime{Compiler: %v, Bundle: %v}", r.compiler, r.bundle)
}

// Compiler returns the compiler port.
func (r *Runtime) Compiler() compiler.Compiler { return r.compiler }

// Service returns the compiler service facade.
func (r *Runtime) Service() *service.Service { return r.service }

// NewResource creates an unloaded resource compiled by this runtime.
func (r *Runtime) NewResource(name string, opts ...resource.FunctionalOption) (*resource.Resource, error) {
	return resource.New(name, r.service, slices.Concat(r.resourceOpts, opts)...)
}

// LoadResource creates a resource named name from l. An empty name is taken from the
// file name when l is file backed.
func (r *Runtime) LoadResource(
	name string,
	l source.Loader,
	opts ...resource.FunctionalOption,
) (*resource.Resource, error) {
	return resource.FromLoader(name, l, r.service, slices.Concat(r.resourceOpts, opts)...)
}

// LoadFile creates a resource from the script at path.
func (r *Runtime) LoadFile(path string, opts ...resource.FunctionalOption) (*resource.Resource, error) {
	l, err := source.NewFromDisk(path)
	if err != nil {
		return nil, err
	}
	return r.LoadResource("", l, opts...)
}

// Close releases the shared bundle module.
func (r *Runtime) Close(ctx context.Context) error {
	if f, ok := r.bundle.(*bundle.File); ok {
		return f.Close(ctx)
	}
	return nil
}
