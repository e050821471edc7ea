// Package extism loads precompiled script bundles built as WASM modules.
//
// Every exported function without an underscore is an entry type. Calling method m on
// an instance of entry Foo invokes the export Foo_m; Foo_init, when exported, runs once
// when the instance is constructed. Arguments and results are JSON.
package extism

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"

	"github.com/robbyt/go-livescript/engines/extism/adapters"
	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/module"
)

// Loader is a module.Loader for WASM bundles.
type Loader struct {
	enableWASI    bool
	runtimeConfig wazero.RuntimeConfig
	hostFunctions []extismSDK.HostFunction

	compile func(ctx context.Context, wasm []byte) (adapters.CompiledPlugin, error)
	exports func(ctx context.Context, wasm []byte) ([]string, error)

	logHandler slog.Handler
	logger     *slog.Logger
}

var _ module.Loader = (*Loader)(nil)

// NewLoader creates a WASM bundle Loader.
func NewLoader(opts ...FunctionalOption) (*Loader, error) {
	l := &Loader{}
	l.applyDefaults()

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("error applying loader option: %w", err)
		}
	}

	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("invalid loader configuration: %w", err)
	}

	l.setupLogger()
	return l, nil
}

func (l *Loader) String() string {
	return fmt.Sprintf("extism.Loader{WASI: %t, HostFunctions: %d}", l.enableWASI, len(l.hostFunctions))
}

// Load reads and compiles the bundle at path. References are not used by WASM bundles.
func (l *Loader) Load(ctx context.Context, path string, references []string) (module.Module, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBundle, err)
	}
	if len(references) > 0 {
		l.logger.Debug("Ignoring references for wasm bundle", "path", path, "references", references)
	}
	return l.LoadBytes(ctx, path, wasm)
}

// LoadBytes compiles a bundle already in memory.
func (l *Loader) LoadBytes(ctx context.Context, path string, wasm []byte) (module.Module, error) {
	if len(wasm) == 0 {
		return nil, ErrContentNil
	}
	id := helpers.SHA256Bytes(wasm)[:12]
	logger := l.logger.WithGroup("Load").With("moduleID", id)

	names, err := l.exports(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	plugin, err := l.compile(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	scriptLogger := slog.New(l.logHandler.WithGroup("Script")).With("moduleID", id)
	m := newModule(id, path, plugin, entryNames(names), scriptLogger)
	logger.Debug("Bundle loaded", "path", path, "entries", m.Entries())
	return m, nil
}

func (l *Loader) compileSDK(ctx context.Context, wasm []byte) (adapters.CompiledPlugin, error) {
	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{Data: wasm},
		},
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    l.enableWASI,
		RuntimeConfig: l.runtimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, l.hostFunctions)
	if err != nil {
		return nil, err
	}
	return adapters.NewCompiledPlugin(plugin), nil
}

// listExports compiles the module with a throwaway wazero runtime to read its exported
// function names.
func (l *Loader) listExports(ctx context.Context, wasm []byte) ([]string, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, l.runtimeConfig)
	defer func() { _ = rt.Close(ctx) }()

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, err
	}
	defer func() { _ = compiled.Close(ctx) }()

	return slices.Sorted(maps.Keys(compiled.ExportedFunctions())), nil
}
