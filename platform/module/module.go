package module

import (
	"context"
	"fmt"
)

// Capability is the declared base of an entry type. A host only instantiates entry
// types whose capability it understands.
type Capability string

// ScriptEntry is the capability of every type a script resource may instantiate.
const ScriptEntry Capability = "ScriptBase"

// Script is the runtime object produced by instantiating a ScriptEntry type.
type Script interface {
	// Name returns the entry type name the script was constructed from.
	Name() string

	// Call invokes a method on the script. The accepted argument and return types
	// depend on the engine, but plain Go values (bool, int, int64, float64, string,
	// []any, map[string]any) are always supported.
	Call(ctx context.Context, method string, args ...any) (any, error)
}

// EntryType is one instantiable type exported by a module.
type EntryType struct {
	Name string
	Base Capability
	New  func(ctx context.Context) (Script, error)
}

func (e EntryType) String() string {
	return fmt.Sprintf("%s(%s)", e.Name, e.Base)
}

// Module is a loaded, executable unit produced by compilation.
//
// Modules are shared read-only between the resource that owns them and anything that
// instantiates from them.
type Module interface {
	// ID identifies the module contents, usually a short content hash.
	ID() string

	// Path is the location the module was loaded from.
	Path() string

	// Lookup returns the entry type registered under name.
	Lookup(name string) (EntryType, bool)

	// Entries lists every registered entry type name in registration order.
	Entries() []string

	// Close releases engine resources held by the module.
	Close(ctx context.Context) error
}

// Loader turns a compiled artifact on disk into a Module. References are the paths the
// artifact may import. The artifact can be removed once Load returns, so a Loader must
// read everything it needs before returning.
type Loader interface {
	Load(ctx context.Context, path string, references []string) (Module, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string, references []string) (Module, error)

func (f LoaderFunc) Load(ctx context.Context, path string, references []string) (Module, error) {
	return f(ctx, path, references)
}
