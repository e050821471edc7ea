// Package starlark compiles and loads live scripts written in Starlark.
//
// A script declares its entry type by binding a ScriptBase(...) value to a global named
// after the script resource:
//
//	def on_update(self, dt):
//	    self.elapsed += dt
//	    return self.elapsed
//
//	Foo = ScriptBase(elapsed = 0.0, on_update = on_update)
package starlark

import (
	"fmt"

	"github.com/robbyt/go-livescript/platform/toolchain"
)

const (
	// SourceExtension is the extension of Starlark script sources.
	SourceExtension = ".star"
	// ProgramExtension is the extension of compiled Starlark programs.
	ProgramExtension = ".starc"
)

// NewCompiler wires a Starlark Toolchain and Loader into a toolchain.Compiler. Engine
// options configure both; compiler options are applied after the Starlark defaults.
func NewCompiler(
	engineOpts []FunctionalOption,
	compilerOpts ...toolchain.FunctionalOption,
) (*toolchain.Compiler, error) {
	tc, err := NewToolchain(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create starlark toolchain: %w", err)
	}

	loader, err := NewLoader(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create starlark loader: %w", err)
	}

	opts := []toolchain.FunctionalOption{
		toolchain.WithSourceExtension(SourceExtension),
		toolchain.WithOutputExtension(ProgramExtension),
		toolchain.WithLogHandler(tc.cfg.logHandler),
	}
	return toolchain.New(tc, loader, append(opts, compilerOpts...)...)
}
