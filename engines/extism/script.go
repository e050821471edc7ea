package extism

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robbyt/go-livescript/engines/extism/adapters"
	"github.com/robbyt/go-livescript/platform/module"
)

// Script is one plugin instance bound to an entry type.
type Script struct {
	name     string
	instance adapters.PluginInstance
	logger   *slog.Logger
	mu       sync.Mutex
}

var _ module.Script = (*Script)(nil)

func (s *Script) String() string {
	return fmt.Sprintf("extism.Script{Name: %s}", s.name)
}

func (s *Script) Name() string { return s.name }

// export returns the exported function backing method. The empty method is the entry
// function itself.
func (s *Script) export(method string) string {
	if method == "" {
		return s.name
	}
	return s.name + methodSeparator + method
}

// Call invokes the export for method. No arguments send an empty input, one argument is
// sent as its JSON encoding, and several are sent as a JSON array. Output that is not
// valid JSON is returned as a string.
func (s *Script) Call(ctx context.Context, method string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := s.export(method)
	if !s.instance.FunctionExists(fn) {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, fn)
	}

	input, err := encodeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallFailed, err)
	}

	exit, output, err := s.instance.CallWithContext(ctx, fn, input)
	if err != nil {
		s.logger.Warn("Plugin call failed", "function", fn, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrCallFailed, fn, err)
	}
	if exit != 0 {
		return nil, fmt.Errorf("%w: %s exited with status %d", ErrCallFailed, fn, exit)
	}
	return decodeOutput(output), nil
}

func encodeArgs(args []any) ([]byte, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		return json.Marshal(args[0])
	default:
		return json.Marshal(args)
	}
}

func decodeOutput(output []byte) any {
	if len(output) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(output, &v); err != nil {
		return string(output)
	}
	return v
}
