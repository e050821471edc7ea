package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
)

// Exec runs an external compiler binary and parses its output with ParseDiagnostics.
type Exec struct {
	binary     string
	prefixArgs []string
	dir        string
	env        []string
}

// ExecOption configures an Exec toolchain.
type ExecOption func(*Exec)

// WithPrefixArgs inserts arguments before the generated ones, e.g. "compile" for "toolbox compile".
func WithPrefixArgs(args ...string) ExecOption {
	return func(e *Exec) {
		e.prefixArgs = append(e.prefixArgs, args...)
	}
}

// WithWorkingDir sets the working directory of the toolchain process.
func WithWorkingDir(dir string) ExecOption {
	return func(e *Exec) {
		e.dir = dir
	}
}

// WithEnv appends KEY=value entries to the toolchain process environment.
func WithEnv(env ...string) ExecOption {
	return func(e *Exec) {
		e.env = append(e.env, env...)
	}
}

// NewExec creates a toolchain that invokes binary. The binary is resolved on each run,
// so a missing binary surfaces as a compile-time diagnostic rather than here.
func NewExec(binary string, opts ...ExecOption) *Exec {
	e := &Exec{binary: binary}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exec) String() string {
	return fmt.Sprintf("toolchain.Exec{Binary: %s}", e.binary)
}

// Run implements Toolchain.
func (e *Exec) Run(ctx context.Context, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, e.binary, append(slices.Clone(e.prefixArgs), args...)...)
	cmd.Dir = e.dir
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	result := Result{
		Output:      out.String(),
		Diagnostics: ParseDiagnostics(out.String()),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return Result{}, fmt.Errorf("%w: %s: %w", ErrToolchainUnavailable, e.binary, err)
}
