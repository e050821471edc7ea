package extism

import (
	"fmt"
	"log/slog"
	"os"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"

	"github.com/robbyt/go-livescript/internal/helpers"
)

// FunctionalOption is a function that configures a Loader instance
type FunctionalOption func(*Loader) error

// WithWASI enables or disables WASI for loaded bundles. Enabled by default.
func WithWASI(enabled bool) FunctionalOption {
	return func(l *Loader) error {
		l.enableWASI = enabled
		return nil
	}
}

// WithRuntimeConfig sets the wazero runtime configuration.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) FunctionalOption {
	return func(l *Loader) error {
		if cfg == nil {
			return fmt.Errorf("runtime config cannot be nil")
		}
		l.runtimeConfig = cfg
		return nil
	}
}

// WithHostFunctions registers host functions with every loaded bundle.
func WithHostFunctions(fns ...extismSDK.HostFunction) FunctionalOption {
	return func(l *Loader) error {
		l.hostFunctions = append(l.hostFunctions, fns...)
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the loader.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(l *Loader) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		l.logHandler = handler
		l.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the loader.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(l *Loader) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		l.logger = logger
		l.logHandler = nil
		return nil
	}
}

func (l *Loader) setupLogger() {
	if l.logger != nil {
		l.logHandler = l.logger.Handler()
	} else {
		l.logHandler, l.logger = helpers.SetupLogger(l.logHandler, "extism", "Loader")
	}
}

func (l *Loader) applyDefaults() {
	if l.logHandler == nil && l.logger == nil {
		l.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	l.enableWASI = true
	l.runtimeConfig = wazero.NewRuntimeConfig()
	l.compile = l.compileSDK
	l.exports = l.listExports
}

func (l *Loader) validate() error {
	if l.logHandler == nil && l.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}
