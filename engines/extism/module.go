package extism

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"

	"github.com/robbyt/go-livescript/engines/extism/adapters"
	"github.com/robbyt/go-livescript/platform/module"
)

const (
	methodSeparator = "_"
	initMethod      = "init"
)

// entryNames keeps the exports that name entry types.
func entryNames(exports []string) []string {
	var names []string
	for _, name := range exports {
		if name == "" || strings.Contains(name, methodSeparator) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Module is a compiled WASM bundle. Every Script gets its own plugin instance; Close
// releases all of them along with the compiled plugin.
type Module struct {
	id       string
	path     string
	plugin   adapters.CompiledPlugin
	registry *module.Registry
	logger   *slog.Logger

	mu        sync.Mutex
	instances []adapters.PluginInstance
	closed    bool
}

var _ module.Module = (*Module)(nil)

func newModule(
	id, path string,
	plugin adapters.CompiledPlugin,
	entries []string,
	logger *slog.Logger,
) *Module {
	m := &Module{
		id:       id,
		path:     path,
		plugin:   plugin,
		registry: module.NewRegistry(),
		logger:   logger,
	}
	for _, name := range entries {
		m.registry.Register(module.EntryType{
			Name: name,
			Base: module.ScriptEntry,
			New: func(ctx context.Context) (module.Script, error) {
				s, err := m.newScript(ctx, name)
				if err != nil {
					return nil, err
				}
				return s, nil
			},
		})
	}
	return m
}

func (m *Module) String() string {
	return fmt.Sprintf("extism.Module{ID: %s, Entries: %v}", m.id, m.registry.Entries())
}

func (m *Module) ID() string { return m.id }

func (m *Module) Path() string { return m.path }

func (m *Module) Lookup(name string) (module.EntryType, bool) {
	return m.registry.Lookup(name)
}

func (m *Module) Entries() []string {
	return m.registry.Entries()
}

// Close releases every instance and the compiled plugin. Later calls are no-ops.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var errs error
	for _, inst := range m.instances {
		errs = multierr.Append(errs, inst.Close(ctx))
	}
	m.instances = nil
	return multierr.Append(errs, m.plugin.Close(ctx))
}

func (m *Module) newScript(ctx context.Context, name string) (*Script, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.mu.Unlock()

	inst, err := m.plugin.Instance(ctx, extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstance, err)
	}

	s := &Script{name: name, instance: inst, logger: m.logger.With("script", name)}
	if inst.FunctionExists(s.export(initMethod)) {
		if _, err := s.Call(ctx, initMethod); err != nil {
			multierr.AppendInto(&err, inst.Close(ctx))
			return nil, err
		}
	}

	m.mu.Lock()
	m.instances = append(m.instances, inst)
	m.mu.Unlock()
	return s, nil
}
