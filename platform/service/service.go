package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robbyt/go-livescript/platform/bundle"
	"github.com/robbyt/go-livescript/platform/compiler"
	"github.com/robbyt/go-livescript/platform/module"
)

// Service mediates between script resources and a compiler.Compiler. It checks the
// shared precompiled bundle first and converts every failure into an Outcome.
type Service struct {
	compiler   compiler.Compiler
	bundle     bundle.Cache
	registerer prometheus.Registerer
	metrics    *metrics

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Service around comp. A nil compiler is allowed; every compile attempt
// that reaches it is then NotCompilable.
func New(comp compiler.Compiler, opts ...FunctionalOption) (*Service, error) {
	s := &Service{compiler: comp}

	s.applyDefaults()

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("error applying service option: %w", err)
		}
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}

	s.setupLogger()

	s.metrics = newMetrics()
	if s.registerer != nil {
		if err := s.metrics.register(s.registerer); err != nil {
			return nil, fmt.Errorf("unable to register metrics: %w", err)
		}
	}

	return s, nil
}

func (s *Service) String() string {
	return fmt.Sprintf("service.Service{Bundle: %v}", s.bundle)
}

// Compiler returns the wrapped compiler.
func (s *Service) Compiler() compiler.Compiler {
	return s.compiler
}

// TryCompile produces a module for the script called name.
//
// The shared bundle wins when present and the compiler is not invoked. Otherwise a
// source path is required, the compiler runs, and its result is mapped to Succeeded or
// Failed. Errors and panics become NotCompilable; TryCompile never fails in any other way.
func (s *Service) TryCompile(
	ctx context.Context,
	name, sourcePath, sourceText string,
) (outcome Outcome, mod module.Module) {
	logger := s.logger.WithGroup("TryCompile").With("script", name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Compile attempt panicked", "panic", r)
			outcome, mod = notCompilable(fmt.Errorf("%w: %v", ErrPanic, r)), nil
		}
		s.metrics.observe(outcome.Kind, time.Since(start))
		logger.Debug("Compile attempt finished", "outcome", outcome.Kind, "elapsed", time.Since(start))
	}()

	bundled, ok, err := s.bundle.Lookup(ctx)
	if err != nil {
		logger.Error("Error trying to load precompiled scripts", "error", err)
		return notCompilable(fmt.Errorf("%w: %w", ErrBundle, err)), nil
	}
	if ok && bundled != nil {
		return alreadyPresent(), bundled
	}

	if sourcePath == "" {
		logger.Warn("The script resource has no source path and can't be compiled")
		return notCompilable(ErrNoSourcePath), nil
	}

	if s.compiler == nil {
		logger.Error("Error trying to compile script", "error", ErrNoCompiler)
		return notCompilable(ErrNoCompiler), nil
	}

	compiled, diags, err := s.compiler.Compile(ctx, sourceText)
	if err != nil {
		logger.Error("Error trying to compile script", "sourcePath", sourcePath, "error", err)
		return notCompilable(err), nil
	}
	if compiled == nil {
		logger.Warn("Script failed to compile", "sourcePath", sourcePath, "diagnostics", diags.String())
		return failed(diags), nil
	}

	logger.Info("Script compiled", "sourcePath", sourcePath, "moduleID", compiled.ID())
	return succeeded(diags), compiled
}
