package livescript

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robbyt/go-livescript/engines/starlark"
	"github.com/robbyt/go-livescript/platform/module"
	"github.com/robbyt/go-livescript/platform/toolchain"
)

// Option configures a Runtime.
type Option func(*settings) error

type settings struct {
	logHandler slog.Handler
	registerer prometheus.Registerer
	clock      clock.Clock

	tempDir       string
	outputDir     string
	keepArtifacts bool
	references    []string

	bundlePath string
	bundleDir  string

	precompiledOnly bool
	maxSteps        uint64

	toolchain toolchain.Toolchain
	loader    module.Loader
	sourceExt string
	outputExt string
}

func defaultSettings() *settings {
	return &settings{
		logHandler: slog.NewTextHandler(os.Stderr, nil),
	}
}

func (s *settings) validate() error {
	if s.logHandler == nil {
		return errors.New("log handler must be specified")
	}
	if s.toolchain != nil && s.loader == nil {
		return errors.New("an external toolchain needs a module loader")
	}
	if s.bundlePath != "" && s.bundleDir != "" {
		return errors.New("bundle path and bundle directory are mutually exclusive")
	}
	return nil
}

func (s *settings) starlarkOptions(handler slog.Handler) []starlark.FunctionalOption {
	opts := []starlark.FunctionalOption{starlark.WithLogHandler(handler)}
	if s.maxSteps > 0 {
		opts = append(opts, starlark.WithMaxExecutionSteps(s.maxSteps))
	}
	return opts
}

// WithLogHandler sets the slog handler every component logs through.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *settings) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		s.logHandler = handler
		return nil
	}
}

// WithRegisterer registers compile metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) error {
		if reg == nil {
			return fmt.Errorf("registerer cannot be nil")
		}
		s.registerer = reg
		return nil
	}
}

// WithClock sets the clock resources use to stamp reload markers.
func WithClock(c clock.Clock) Option {
	return func(s *settings) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		s.clock = c
		return nil
	}
}

// WithTempDir sets where scratch source files are written.
func WithTempDir(dir string) Option {
	return func(s *settings) error {
		s.tempDir = dir
		return nil
	}
}

// WithOutputDir sets where compiled artifacts are written.
func WithOutputDir(dir string) Option {
	return func(s *settings) error {
		s.outputDir = dir
		return nil
	}
}

// WithKeepArtifacts keeps compiled artifacts after loading.
func WithKeepArtifacts(keep bool) Option {
	return func(s *settings) error {
		s.keepArtifacts = keep
		return nil
	}
}

// WithReferences adds reference paths passed to every compile.
func WithReferences(paths ...string) Option {
	return func(s *settings) error {
		s.references = append(s.references, paths...)
		return nil
	}
}

// WithBundlePath sets the shared precompiled bundle location. A .wasm bundle is loaded
// with Extism, anything else as a compiled Starlark program.
func WithBundlePath(path string) Option {
	return func(s *settings) error {
		s.bundlePath = path
		return nil
	}
}

// WithBundleDir searches dir for a bundle under the default names.
func WithBundleDir(dir string) Option {
	return func(s *settings) error {
		s.bundleDir = dir
		return nil
	}
}

// WithPrecompiledOnly only lets resources instantiate after an inline compile when the
// module came from the precompiled bundle.
func WithPrecompiledOnly(enabled bool) Option {
	return func(s *settings) error {
		s.precompiledOnly = enabled
		return nil
	}
}

// WithMaxExecutionSteps bounds Starlark execution per module init or method call.
func WithMaxExecutionSteps(steps uint64) Option {
	return func(s *settings) error {
		s.maxSteps = steps
		return nil
	}
}

// WithToolchain replaces the in-process Starlark compiler with tc, whose artifacts are
// loaded with loader. sourceExt and outputExt name the scratch and artifact files.
func WithToolchain(tc toolchain.Toolchain, loader module.Loader, sourceExt, outputExt string) Option {
	return func(s *settings) error {
		if tc == nil {
			return fmt.Errorf("toolchain cannot be nil")
		}
		s.toolchain = tc
		s.loader = loader
		s.sourceExt = sourceExt
		s.outputExt = outputExt
		return nil
	}
}
