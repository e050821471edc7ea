package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/compiler"
	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/module"
)

const (
	tempPrefix          = "livescript-"
	defaultSourceExt    = ".src"
	defaultOutputExt    = ".out"
	scratchFileMode     = 0o600
	syntheticExitFormat = "toolchain exited with status %d"
)

// Compiler is the compiler.Compiler that drives a Toolchain through a scratch source file
// and loads the produced artifact with a module.Loader.
type Compiler struct {
	toolchain Toolchain
	loader    module.Loader

	references *compiler.ReferenceSet
	tempDir    string
	outputDir  string
	sourceExt  string
	outputExt  string
	keepOutput bool

	inflight singleflight.Group
	mu       sync.Mutex
	flights  map[string]*flight

	logHandler slog.Handler
	logger     *slog.Logger
}

var _ compiler.Compiler = (*Compiler)(nil)

// New creates a Compiler. A nil toolchain or loader does not fail construction; it is
// logged and every later Compile call returns compiler.ErrNotInitialized.
func New(tc Toolchain, loader module.Loader, opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{
		toolchain:  tc,
		loader:     loader,
		references: compiler.NewReferenceSet(),
		flights:    make(map[string]*flight),
	}

	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler configuration: %w", err)
	}

	c.setupLogger()

	if tc == nil || loader == nil {
		c.logger.Warn("Compiler created without a toolchain or loader; compiles will fail",
			"hasToolchain", tc != nil, "hasLoader", loader != nil)
	}

	return c, nil
}

func (c *Compiler) String() string {
	return fmt.Sprintf("toolchain.Compiler{Toolchain: %v, References: %d}", c.toolchain, c.references.Len())
}

// AddReference implements compiler.Compiler.
func (c *Compiler) AddReference(path string) {
	c.references.Add(path)
}

// References implements compiler.Compiler.
func (c *Compiler) References() []string {
	return c.references.Paths()
}

// Compile implements compiler.Compiler.
func (c *Compiler) Compile(
	ctx context.Context,
	source string,
) (module.Module, diagnostic.List, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, compiler.ErrEmptySource
	}
	if c == nil || c.toolchain == nil || c.loader == nil || c.references == nil {
		return nil, nil, compiler.ErrNotInitialized
	}

	refs := c.references.Paths()
	key := helpers.CompileKey(source, refs)

	c.join(key)
	defer c.leave(key)

	// Concurrent callers with the same key share one toolchain run, which is detached
	// from any single caller's cancellation. Each caller loads its own module.
	v, _, shared := c.inflight.Do(key, func() (any, error) {
		return c.build(context.WithoutCancel(ctx), key, source, refs), nil
	})
	if shared {
		c.logger.Debug("Toolchain run shared with a concurrent caller", "key", key[:12])
	}

	res := v.(*buildResult)
	if res.outPath == "" {
		return nil, res.diags, nil
	}
	mod, diags := c.load(ctx, key, res, refs)
	return mod, diags, nil
}

// buildResult is the outcome of one toolchain run. An empty outPath means no artifact.
type buildResult struct {
	outPath string
	diags   diagnostic.List
}

// flight counts the callers of one compile key. Artifacts are removed when the last
// caller leaves so a shared artifact outlives every load.
type flight struct {
	callers   int
	artifacts []string
	discard   bool
}

func (c *Compiler) join(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.flights[key]
	if f == nil {
		f = &flight{}
		c.flights[key] = f
	}
	f.callers++
}

func (c *Compiler) leave(key string) {
	c.mu.Lock()
	f := c.flights[key]
	f.callers--
	if f.callers > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.flights, key)
	c.mu.Unlock()

	if c.keepOutput && !f.discard {
		return
	}
	var errs error
	for _, path := range f.artifacts {
		errs = multierr.Append(errs, removeIfExists(path))
	}
	if errs != nil {
		c.logger.Warn("Failed to remove compiled artifacts", "error", errs)
	}
}

// build runs the toolchain once. The scratch source file never outlives it.
func (c *Compiler) build(ctx context.Context, key, source string, refs []string) *buildResult {
	logger := c.logger.WithGroup("compile")

	srcPath, err := c.writeScratchSource(source)
	if err != nil {
		logger.Warn("Unable to create scratch source file", "error", err)
		return &buildResult{diags: diagnostic.List{
			diagnostic.Synthetic("", CategoryToolchain, err.Error()),
		}}
	}
	defer func() {
		if err := removeIfExists(srcPath); err != nil {
			logger.Warn("Failed to remove scratch source file", "path", srcPath, "error", err)
		}
	}()

	outPath := c.outputPath()
	args := Args{
		Output:      outPath,
		Library:     true,
		Debug:       true,
		NoFramework: true,
		References:  refs,
		Source:      srcPath,
	}.Build()
	logger.Debug("Invoking toolchain", "args", args)

	var result Result
	err = contain(func() error {
		var runErr error
		result, runErr = c.toolchain.Run(ctx, args)
		return runErr
	})
	if err != nil {
		logger.Warn("Toolchain invocation failed", "error", err)
		c.discardOutput(logger, outPath)
		return &buildResult{diags: diagnostic.List{
			diagnostic.Synthetic(srcPath, CategoryToolchain, err.Error()),
		}}
	}

	diags := result.Diagnostics
	if result.ExitCode != 0 || diags.HasErrors() {
		if len(diags) == 0 {
			msg := fmt.Sprintf(syntheticExitFormat, result.ExitCode)
			if out := strings.TrimSpace(result.Output); out != "" {
				msg = msg + ": " + out
			}
			diags = diagnostic.List{diagnostic.Synthetic(srcPath, CategoryToolchain, msg)}
		}
		logger.Debug("Compilation failed", "exitCode", result.ExitCode, "diagnostics", len(diags))
		c.discardOutput(logger, outPath)
		return &buildResult{diags: diags}
	}

	c.mu.Lock()
	if f := c.flights[key]; f != nil {
		f.artifacts = append(f.artifacts, outPath)
	}
	c.mu.Unlock()
	return &buildResult{outPath: outPath, diags: diags}
}

// load turns a shared artifact into a module owned by the caller.
func (c *Compiler) load(
	ctx context.Context,
	key string,
	res *buildResult,
	refs []string,
) (mod module.Module, diags diagnostic.List) {
	diags = slices.Clone(res.diags)

	err := contain(func() error {
		var loadErr error
		mod, loadErr = c.loader.Load(ctx, res.outPath, refs)
		return loadErr
	})
	if err != nil || mod == nil {
		if err == nil {
			err = errors.New("loader returned no module")
		}
		c.logger.Warn("Couldn't load compiled module", "path", res.outPath, "error", err)
		c.mu.Lock()
		if f := c.flights[key]; f != nil {
			f.discard = true
		}
		c.mu.Unlock()
		return nil, append(diags, diagnostic.Synthetic(res.outPath, CategoryLoad, err.Error()))
	}

	c.logger.Debug("Compilation successful", "moduleID", mod.ID(), "entries", mod.Entries())
	return mod, diags
}

func (c *Compiler) discardOutput(logger *slog.Logger, path string) {
	if err := removeIfExists(path); err != nil {
		logger.Warn("Failed to remove compiled artifact", "path", path, "error", err)
	}
}

func (c *Compiler) writeScratchSource(source string) (string, error) {
	f, err := os.CreateTemp(c.tempDir, tempPrefix+"*"+c.sourceExt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScratchFile, err)
	}
	path := f.Name()
	_, writeErr := f.WriteString(source)
	closeErr := f.Close()
	if err := multierr.Combine(writeErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %w", ErrScratchFile, err)
	}
	if err := os.Chmod(path, scratchFileMode); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %w", ErrScratchFile, err)
	}
	return path, nil
}

func (c *Compiler) outputPath() string {
	return filepath.Join(c.outputDir, tempPrefix+uuid.NewString()+c.outputExt)
}

// contain runs fn and turns a panic into an error.
func contain(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrToolchainPanic, r)
		}
	}()
	return fn()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
