package toolchain

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/robbyt/go-livescript/internal/helpers"
)

// FunctionalOption is a function that configures a Compiler instance
type FunctionalOption func(*Compiler) error

// WithTempDir sets the directory scratch source files are written to.
func WithTempDir(dir string) FunctionalOption {
	return func(c *Compiler) error {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("temp dir cannot be empty")
		}
		c.tempDir = dir
		return nil
	}
}

// WithOutputDir sets the directory compiled artifacts are written to. Defaults to the
// temp dir.
func WithOutputDir(dir string) FunctionalOption {
	return func(c *Compiler) error {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("output dir cannot be empty")
		}
		c.outputDir = dir
		return nil
	}
}

// WithSourceExtension sets the scratch source file extension, e.g. ".star".
func WithSourceExtension(ext string) FunctionalOption {
	return func(c *Compiler) error {
		c.sourceExt = normalizeExt(ext)
		return nil
	}
}

// WithOutputExtension sets the compiled artifact extension, e.g. ".starc".
func WithOutputExtension(ext string) FunctionalOption {
	return func(c *Compiler) error {
		c.outputExt = normalizeExt(ext)
		return nil
	}
}

// WithReferences adds reference paths; blank entries are ignored.
func WithReferences(paths ...string) FunctionalOption {
	return func(c *Compiler) error {
		for _, p := range paths {
			c.references.Add(p)
		}
		return nil
	}
}

// WithKeepArtifacts keeps compiled artifacts on disk after they are loaded.
func WithKeepArtifacts() FunctionalOption {
	return func(c *Compiler) error {
		c.keepOutput = true
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the compiler.
// This is the preferred option for logging configuration as it provides
// more flexibility through the slog.Handler interface.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the compiler.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "toolchain", "Compiler")
	}
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	c.tempDir = os.TempDir()
	c.sourceExt = defaultSourceExt
	c.outputExt = defaultOutputExt
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if c.outputDir == "" {
		c.outputDir = c.tempDir
	}
	info, err := os.Stat(c.tempDir)
	if err != nil {
		return fmt.Errorf("temp dir %s: %w", c.tempDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("temp dir %s is not a directory", c.tempDir)
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
