package service

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robbyt/go-livescript/internal/helpers"
	"github.com/robbyt/go-livescript/platform/bundle"
)

// FunctionalOption is a function that configures a Service instance
type FunctionalOption func(*Service) error

// WithBundle sets the shared precompiled module cache consulted before compiling.
func WithBundle(cache bundle.Cache) FunctionalOption {
	return func(s *Service) error {
		if cache == nil {
			return fmt.Errorf("bundle cache cannot be nil")
		}
		s.bundle = cache
		return nil
	}
}

// WithRegisterer registers the compile metrics on reg.
func WithRegisterer(reg prometheus.Registerer) FunctionalOption {
	return func(s *Service) error {
		if reg == nil {
			return fmt.Errorf("registerer cannot be nil")
		}
		s.registerer = reg
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the service.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(s *Service) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		s.logHandler = handler
		s.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the service.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(s *Service) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		s.logHandler = nil
		return nil
	}
}

func (s *Service) setupLogger() {
	if s.logger != nil {
		s.logHandler = s.logger.Handler()
	} else {
		s.logHandler, s.logger = helpers.SetupLogger(s.logHandler, "service", "Service")
	}
}

func (s *Service) applyDefaults() {
	if s.logHandler == nil && s.logger == nil {
		s.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	s.bundle = bundle.None{}
}

func (s *Service) validate() error {
	if s.logHandler == nil && s.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}
