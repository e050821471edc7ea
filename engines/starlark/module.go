package starlark

import (
	"context"
	"fmt"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-livescript/platform/module"
)

// Module is a loaded Starlark program.
type Module struct {
	id       string
	path     string
	globals  starlarkLib.StringDict
	registry *module.Registry
	cfg      *config
}

var _ module.Module = (*Module)(nil)

func (m *Module) String() string {
	return fmt.Sprintf("starlark.Module{ID: %s, Entries: %v}", m.id, m.registry.Entries())
}

// ID returns a short hash of the compiled program.
func (m *Module) ID() string { return m.id }

// Path returns the artifact path the module was loaded from.
func (m *Module) Path() string { return m.path }

func (m *Module) Lookup(name string) (module.EntryType, bool) {
	return m.registry.Lookup(name)
}

func (m *Module) Entries() []string {
	return m.registry.Entries()
}

// Global returns a frozen top-level value of the program.
func (m *Module) Global(name string) (starlarkLib.Value, bool) {
	v, ok := m.globals[name]
	return v, ok
}

// Close is a no-op; Starlark modules hold no engine resources.
func (m *Module) Close(context.Context) error { return nil }

func (m *Module) entry(name string, c *class) module.EntryType {
	return module.EntryType{
		Name: name,
		Base: module.ScriptEntry,
		New: func(ctx context.Context) (module.Script, error) {
			s, err := newScript(ctx, m.cfg, name, c)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}
