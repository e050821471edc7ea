package resource

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/robbyt/go-livescript/internal/helpers"
)

// FunctionalOption is a function that configures a Resource instance
type FunctionalOption func(*Resource) error

// WithPath sets the resource's own path, used to derive the reload marker location.
// Without it the source path is used.
func WithPath(path string) FunctionalOption {
	return func(r *Resource) error {
		r.path = path
		return nil
	}
}

// WithText sets the initial source text.
func WithText(text string) FunctionalOption {
	return func(r *Resource) error {
		r.script.Text = text
		return nil
	}
}

// WithSourcePath sets the file the source was loaded from.
func WithSourcePath(path string) FunctionalOption {
	return func(r *Resource) error {
		r.script.SourcePath = path
		return nil
	}
}

// WithDefaultContent marks the resource as built-in template content.
func WithDefaultContent() FunctionalOption {
	return func(r *Resource) error {
		r.script.IsDefaultContent = true
		return nil
	}
}

// WithPrecompiledOnly restricts inline compiles in Instantiate to the shared precompiled
// bundle. A fresh successful compile then does not permit instantiation: its module is
// released, so every later Instantiate compiles again and is refused the same way.
func WithPrecompiledOnly() FunctionalOption {
	return func(r *Resource) error {
		r.precompiledOnly = true
		return nil
	}
}

// WithClock sets the clock used to stamp the reload marker.
func WithClock(c clock.Clock) FunctionalOption {
	return func(r *Resource) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		r.clock = c
		return nil
	}
}

// WithObserver subscribes an observer at construction time.
func WithObserver(o Observer) FunctionalOption {
	return func(r *Resource) error {
		if o == nil {
			return ErrNilObserver
		}
		r.subscribe(o)
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the resource.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(r *Resource) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		r.logHandler = handler
		r.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the resource.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(r *Resource) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		r.logHandler = nil
		return nil
	}
}

func (r *Resource) setupLogger() {
	if r.logger != nil {
		r.logHandler = r.logger.Handler()
	} else {
		r.logHandler, r.logger = helpers.SetupLogger(r.logHandler, "resource", "Resource")
	}
	r.logger = r.logger.With("script", r.script.Name)
}

func (r *Resource) applyDefaults() {
	if r.logHandler == nil && r.logger == nil {
		r.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	r.clock = clock.New()
}

func (r *Resource) validate() error {
	if r.script.Name == "" {
		return ErrEmptyName
	}
	if r.compiler == nil {
		return ErrNilCompiler
	}
	if r.logHandler == nil && r.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}
