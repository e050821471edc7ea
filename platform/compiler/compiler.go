package compiler

import (
	"context"

	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/module"
)

// Compiler turns source text into a loaded Module or a list of diagnostics.
//
// Example usage:
//
//	comp, err := starlark.NewCompiler(nil)
//	if err != nil {
//	    return err
//	}
//	comp.AddReference("/srv/scripts/lib.starc")
//	mod, diags, err := comp.Compile(ctx, source)
//	if err != nil {
//	    // programmer or environment error: empty source, uninitialized compiler
//	}
//	if mod == nil {
//	    // diags explains why
//	}
type Compiler interface {
	// Compile compiles source against the configured references.
	//
	// Returns:
	//   - module.Module: the loaded module, or nil when compilation failed
	//   - diagnostic.List: everything the toolchain reported, in order
	//   - error: only ErrEmptySource or ErrNotInitialized; compile errors in the
	//     user's source are reported through the diagnostics
	Compile(ctx context.Context, source string) (module.Module, diagnostic.List, error)

	// AddReference appends a reference path used by all subsequent compiles.
	// Blank or whitespace-only paths are ignored.
	AddReference(path string)

	// References returns a copy of the configured references in insertion order.
	References() []string
}
