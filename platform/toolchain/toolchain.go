package toolchain

import (
	"context"

	"github.com/robbyt/go-livescript/platform/diagnostic"
)

// Diagnostic categories for messages the compiler synthesizes itself.
const (
	CategoryToolchain = "toolchain"
	CategoryLoad      = "load"
)

// Result is what a toolchain invocation returns.
type Result struct {
	// ExitCode is zero when the toolchain reports success.
	ExitCode int

	// Diagnostics are the structured messages, in the order they were reported.
	Diagnostics diagnostic.List

	// Output is the raw text the toolchain printed, if any.
	Output string
}

// Toolchain invokes a compiler with a fully built argument list (see Args).
//
// Run returns an error only when the toolchain could not be invoked at all (missing
// binary, crashed process). Problems in the user's source are reported through
// Result.Diagnostics and a non-zero Result.ExitCode.
type Toolchain interface {
	Run(ctx context.Context, args []string) (Result, error)
}

// Func adapts a function to the Toolchain interface.
type Func func(ctx context.Context, args []string) (Result, error)

func (f Func) Run(ctx context.Context, args []string) (Result, error) {
	return f(ctx, args)
}
