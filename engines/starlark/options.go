package starlark

import (
	"fmt"
	"log/slog"
	"os"

	"go.starlark.net/syntax"

	"github.com/robbyt/go-livescript/internal/helpers"
)

// config holds the settings shared by the Toolchain and the Loader.
type config struct {
	fileOptions *syntax.FileOptions
	maxSteps    uint64

	logHandler slog.Handler
	logger     *slog.Logger
}

// FunctionalOption configures a Toolchain or a Loader.
type FunctionalOption func(*config) error

// WithFileOptions sets the Starlark dialect used to parse scripts and references.
func WithFileOptions(opts *syntax.FileOptions) FunctionalOption {
	return func(c *config) error {
		if opts == nil {
			return fmt.Errorf("file options cannot be nil")
		}
		c.fileOptions = opts
		return nil
	}
}

// WithMaxExecutionSteps bounds the work a single module initialization or method call
// may do. Zero means no limit.
func WithMaxExecutionSteps(steps uint64) FunctionalOption {
	return func(c *config) error {
		c.maxSteps = steps
		return nil
	}
}

// WithLogHandler creates an option to set the log handler.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *config) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

func newConfig(group string, opts ...FunctionalOption) (*config, error) {
	c := &config{}
	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "starlark", group)
	}
	return c, nil
}

func (c *config) applyDefaults() {
	c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	c.fileOptions = &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		Recursion:       true,
	}
}

func (c *config) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if c.fileOptions == nil {
		return fmt.Errorf("file options must be specified")
	}
	return nil
}
