package starlark

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-livescript/engines/starlark/internal"
	"github.com/robbyt/go-livescript/platform/module"
)

// Script is a constructed ScriptBase instance. Calls are serialized.
type Script struct {
	name   string
	inst   *instance
	cfg    *config
	logger *slog.Logger
	mu     sync.Mutex
}

var _ module.Script = (*Script)(nil)

func newScript(ctx context.Context, cfg *config, name string, c *class) (*Script, error) {
	logger := slog.New(cfg.logHandler.WithGroup("Script")).With("script", name)

	thread, stop := newThread(ctx, logger, name+"."+initMethod, cfg.maxSteps)
	defer stop()

	inst, err := c.construct(thread, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstructFailed, name, err)
	}
	return &Script{name: name, inst: inst, cfg: cfg, logger: logger}, nil
}

func (s *Script) String() string {
	return fmt.Sprintf("starlark.Script{Name: %s}", s.name)
}

// Name returns the entry type the script was constructed from.
func (s *Script) Name() string { return s.name }

// Call invokes method with the instance as its first argument. Arguments and the
// result are converted between Go and Starlark values.
func (s *Script) Call(ctx context.Context, method string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn, ok := s.inst.class.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, s.name, method)
	}

	callArgs := make(starlarkLib.Tuple, 0, len(args)+1)
	callArgs = append(callArgs, s.inst)
	for i, arg := range args {
		v, err := internal.ToStarlark(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", ErrCallFailed, i, err)
		}
		callArgs = append(callArgs, v)
	}

	thread, stop := newThread(ctx, s.logger, s.name+"."+method, s.cfg.maxSteps)
	defer stop()

	result, err := starlarkLib.Call(thread, fn, callArgs, nil)
	if err != nil {
		s.logger.Warn("Script call failed", "method", method, "error", err)
		return nil, fmt.Errorf("%w: %s.%s: %w", ErrCallFailed, s.name, method, err)
	}
	return internal.FromStarlark(result)
}

// Field returns the current value of an instance field.
func (s *Script) Field(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.inst.fields[name]
	if !ok {
		return nil, false
	}
	converted, err := internal.FromStarlark(v)
	if err != nil {
		return nil, false
	}
	return converted, true
}

// Methods lists the callable methods of the script.
func (s *Script) Methods() []string {
	return slices.Sorted(maps.Keys(s.inst.class.methods))
}
