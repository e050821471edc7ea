package starlark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/resolve"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/toolchain"
)

// Diagnostic categories reported by the Starlark toolchain.
const (
	CategorySyntax    = "syntax"
	CategoryResolve   = "resolve"
	CategoryReference = "reference"
)

// Toolchain compiles Starlark source in-process. It accepts the same argument list as
// an external compiler and writes the compiled program to the -o path.
type Toolchain struct {
	cfg    *config
	logger *slog.Logger
}

var _ toolchain.Toolchain = (*Toolchain)(nil)

// NewToolchain creates a Starlark Toolchain.
func NewToolchain(opts ...FunctionalOption) (*Toolchain, error) {
	cfg, err := newConfig("Toolchain", opts...)
	if err != nil {
		return nil, err
	}
	return &Toolchain{cfg: cfg, logger: cfg.logger}, nil
}

func (t *Toolchain) String() string {
	return "starlark.Toolchain"
}

// Run parses and resolves the source named in args. Syntax and resolve errors are
// returned as diagnostics with exit code 1. Each load() must name a reference, matched
// by path or base name.
func (t *Toolchain) Run(ctx context.Context, args []string) (toolchain.Result, error) {
	logger := t.logger.WithGroup("Run")

	a, err := toolchain.ParseArgs(args)
	if err != nil {
		return toolchain.Result{}, err
	}

	src, err := os.ReadFile(a.Source)
	if err != nil {
		return toolchain.Result{}, fmt.Errorf("%w: %w", ErrReadSource, err)
	}

	if err := ctx.Err(); err != nil {
		return toolchain.Result{}, err
	}

	f, err := t.cfg.fileOptions.Parse(a.Source, src, 0)
	if err != nil {
		logger.Debug("Parse failed", "source", a.Source, "error", err)
		return failure(errorDiagnostics(a.Source, err)), nil
	}

	prog, err := starlarkLib.FileProgram(f, predeclared().Has)
	if err != nil {
		logger.Debug("Resolve failed", "source", a.Source, "error", err)
		return failure(errorDiagnostics(a.Source, err)), nil
	}

	diags := referenceDiagnostics(a.References)
	diags = append(diags, loadDiagnostics(prog, a.References)...)
	if diags.HasErrors() {
		return failure(diags), nil
	}

	if err := writeProgram(prog, a.Output); err != nil {
		return toolchain.Result{}, err
	}

	logger.Debug("Program compiled", "source", a.Source, "output", a.Output, "loads", prog.NumLoads())
	return toolchain.Result{Diagnostics: diags}, nil
}

func failure(diags diagnostic.List) toolchain.Result {
	return toolchain.Result{ExitCode: 1, Diagnostics: diags}
}

func writeProgram(prog *starlarkLib.Program, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteProgram, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteProgram, cerr)
		}
	}()

	if err := prog.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteProgram, err)
	}
	return nil
}

// errorDiagnostics maps parse and resolve errors to diagnostics, keeping the 1-based
// positions Starlark reports.
func errorDiagnostics(file string, err error) diagnostic.List {
	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return diagnostic.List{positioned(syntaxErr.Pos, CategorySyntax, syntaxErr.Msg)}
	}

	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) {
		diags := make(diagnostic.List, 0, len(resolveErrs))
		for _, e := range resolveErrs {
			diags = append(diags, positioned(e.Pos, CategoryResolve, e.Msg))
		}
		return diags
	}

	return diagnostic.List{diagnostic.Synthetic(file, CategorySyntax, err.Error())}
}

func positioned(pos syntax.Position, category, msg string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		FilePath: pos.Filename(),
		Line:     int(pos.Line),
		Column:   int(pos.Col),
		Severity: diagnostic.SeverityError,
		Category: category,
		Message:  msg,
	}
}

// referenceDiagnostics warns about references that do not exist on disk.
func referenceDiagnostics(refs []string) diagnostic.List {
	var diags diagnostic.List
	for _, ref := range refs {
		if _, err := os.Stat(ref); err != nil {
			diags = append(diags, diagnostic.Diagnostic{
				FilePath: ref,
				Severity: diagnostic.SeverityWarning,
				Category: CategoryReference,
				Message:  fmt.Sprintf("reference not found: %v", err),
			})
		}
	}
	return diags
}

// loadDiagnostics reports every load() whose module is not a configured reference.
func loadDiagnostics(prog *starlarkLib.Program, refs []string) diagnostic.List {
	var diags diagnostic.List
	for i := range prog.NumLoads() {
		name, pos := prog.Load(i)
		if _, ok := matchReference(name, refs); ok {
			continue
		}
		diags = append(diags, positioned(pos, CategoryReference,
			fmt.Sprintf("load of %q does not match any reference", name)))
	}
	return diags
}

// matchReference finds the reference a load() module name refers to.
func matchReference(name string, refs []string) (string, bool) {
	for _, ref := range refs {
		if ref == name || filepath.Base(ref) == name {
			return ref, true
		}
	}
	return "", false
}
