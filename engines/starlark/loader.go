package starlark

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/module"
)

// Loader turns a compiled Starlark program into a module.Module. Loading runs the
// program's top level once, freezes its globals, and registers every global bound to a
// ScriptBase(...) value as a script entry type.
type Loader struct {
	cfg    *config
	logger *slog.Logger
}

var _ module.Loader = (*Loader)(nil)

// NewLoader creates a Starlark Loader.
func NewLoader(opts ...FunctionalOption) (*Loader, error) {
	cfg, err := newConfig("Loader", opts...)
	if err != nil {
		return nil, err
	}
	return &Loader{cfg: cfg, logger: cfg.logger}, nil
}

func (l *Loader) String() string {
	return "starlark.Loader"
}

// Load reads the program at path. References are Starlark source files made available
// to load() by path or base name.
func (l *Loader) Load(ctx context.Context, path string, references []string) (module.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadProgram, err)
	}
	return l.LoadBytes(ctx, path, data, references)
}

// LoadBytes is Load for a program already in memory.
func (l *Loader) LoadBytes(
	ctx context.Context,
	path string,
	data []byte,
	references []string,
) (module.Module, error) {
	id := helpers.SHA256Bytes(data)[:12]
	logger := l.logger.WithGroup("Load").With("moduleID", id)

	prog, err := starlarkLib.CompiledProgram(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadProgram, err)
	}

	thread, stop := newThread(ctx, logger, "init:"+id, l.cfg.maxSteps)
	defer stop()
	thread.Load = newReferenceLoader(l.cfg, references).load

	globals, err := prog.Init(thread, predeclared())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	globals.Freeze()

	m := &Module{
		id:       id,
		path:     path,
		globals:  globals,
		registry: module.NewRegistry(),
		cfg:      l.cfg,
	}
	for _, name := range globals.Keys() {
		c, ok := globals[name].(*class)
		if !ok {
			continue
		}
		if c.name == "" {
			c.name = name
		}
		m.registry.Register(m.entry(name, c))
	}

	logger.Debug("Module loaded", "path", path, "entries", m.registry.Entries())
	return m, nil
}

type loadResult struct {
	globals starlarkLib.StringDict
	err     error
}

// referenceLoader executes referenced source files on demand for thread.Load. Each
// reference runs at most once per module load; a nil entry marks one in progress.
type referenceLoader struct {
	cfg        *config
	references []string
	cache      map[string]*loadResult
}

func newReferenceLoader(cfg *config, references []string) *referenceLoader {
	return &referenceLoader{
		cfg:        cfg,
		references: references,
		cache:      make(map[string]*loadResult),
	}
}

func (r *referenceLoader) load(thread *starlarkLib.Thread, name string) (starlarkLib.StringDict, error) {
	ref, ok := matchReference(name, r.references)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a reference", ErrReference, name)
	}

	res, seen := r.cache[ref]
	if seen {
		if res == nil {
			return nil, fmt.Errorf("%w: cycle in load graph at %q", ErrReference, name)
		}
		return res.globals, res.err
	}
	r.cache[ref] = nil

	src, err := os.ReadFile(ref)
	if err != nil {
		res = &loadResult{err: fmt.Errorf("%w: %w", ErrReference, err)}
	} else {
		child := &starlarkLib.Thread{Name: "load:" + name, Print: thread.Print, Load: r.load}
		if r.cfg.maxSteps > 0 {
			child.SetMaxExecutionSteps(r.cfg.maxSteps)
		}
		globals, err := starlarkLib.ExecFileOptions(r.cfg.fileOptions, child, ref, src, predeclared())
		if err == nil {
			globals.Freeze()
		}
		res = &loadResult{globals: globals, err: err}
	}

	r.cache[ref] = res
	return res.globals, res.err
}
