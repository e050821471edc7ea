// Package config reads the TOML session file used by the livescript command.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/robbyt/go-livescript"
	"github.com/robbyt/go-livescript/engines/extism"
	"github.com/robbyt/go-livescript/engines/starlark"
	"github.com/robbyt/go-livescript/platform/module"
	"github.com/robbyt/go-livescript/platform/toolchain"
)

var (
	ErrUnknownKeys = errors.New("unknown configuration keys")
	ErrInvalid     = errors.New("invalid configuration")
)

// Loader names for external toolchain artifacts.
const (
	LoaderStarlark = "starlark"
	LoaderWASM     = "wasm"
)

// Config is one livescript session.
type Config struct {
	TempDir         string   `toml:"temp-dir"`
	OutputDir       string   `toml:"output-dir"`
	KeepArtifacts   bool     `toml:"keep-artifacts"`
	References      []string `toml:"references"`
	PrecompiledOnly bool     `toml:"precompiled-only"`

	Bundle    Bundle    `toml:"bundle"`
	Starlark  Starlark  `toml:"starlark"`
	Toolchain Toolchain `toml:"toolchain"`
	Log       Log       `toml:"log"`
}

// Bundle locates the shared precompiled scripts bundle. Path wins over Dir.
type Bundle struct {
	Path string `toml:"path"`
	Dir  string `toml:"dir"`
}

// Starlark tunes the in-process engine.
type Starlark struct {
	MaxSteps uint64 `toml:"max-steps"`
}

// Toolchain selects an external compiler. An empty Command keeps the in-process
// Starlark compiler.
type Toolchain struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	WorkingDir string   `toml:"working-dir"`
	Env        []string `toml:"env"`
	Loader     string   `toml:"loader"`
	SourceExt  string   `toml:"source-ext"`
	OutputExt  string   `toml:"output-ext"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewConfig returns a Config with default values.
func NewConfig() Config {
	return Config{
		Toolchain: Toolchain{Loader: LoaderStarlark},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load decodes the file at path over the defaults. Relative paths in the file are
// resolved against the file's directory.
func Load(path string) (Config, error) {
	c := NewConfig()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	c.resolve(filepath.Dir(path))
	return c, c.Validate()
}

// Decode parses TOML text over the defaults. Paths are left as written.
func Decode(text string) (Config, error) {
	c := NewConfig()
	md, err := toml.Decode(text, &c)
	if err != nil {
		return Config{}, fmt.Errorf("unable to parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.TempDir = abs(c.TempDir)
	c.OutputDir = abs(c.OutputDir)
	c.Bundle.Path = abs(c.Bundle.Path)
	c.Bundle.Dir = abs(c.Bundle.Dir)
	c.Toolchain.WorkingDir = abs(c.Toolchain.WorkingDir)
	for i, ref := range c.References {
		c.References[i] = abs(ref)
	}
}

// Validate checks values that cannot be checked by the TOML decoder.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Toolchain.Loader {
	case LoaderStarlark, LoaderWASM:
	default:
		return fmt.Errorf("%w: toolchain loader %q", ErrInvalid, c.Toolchain.Loader)
	}
	if c.Bundle.Path != "" && c.Bundle.Dir != "" {
		return fmt.Errorf("%w: bundle path and dir are mutually exclusive", ErrInvalid)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return level, nil
}

// Handler builds the slog handler described by the Log section.
func (c Config) Handler(w io.Writer) (slog.Handler, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

// Options translates the config into livescript runtime options.
func (c Config) Options(handler slog.Handler) ([]livescript.Option, error) {
	opts := []livescript.Option{
		livescript.WithLogHandler(handler),
		livescript.WithKeepArtifacts(c.KeepArtifacts),
		livescript.WithPrecompiledOnly(c.PrecompiledOnly),
		livescript.WithMaxExecutionSteps(c.Starlark.MaxSteps),
		livescript.WithReferences(c.References...),
	}
	if c.TempDir != "" {
		opts = append(opts, livescript.WithTempDir(c.TempDir))
	}
	if c.OutputDir != "" {
		opts = append(opts, livescript.WithOutputDir(c.OutputDir))
	}
	if c.Bundle.Path != "" {
		opts = append(opts, livescript.WithBundlePath(c.Bundle.Path))
	}
	if c.Bundle.Dir != "" {
		opts = append(opts, livescript.WithBundleDir(c.Bundle.Dir))
	}

	if c.Toolchain.Command != "" {
		tcOpt, err := c.toolchainOption(handler)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tcOpt)
	}
	return opts, nil
}

func (c Config) toolchainOption(handler slog.Handler) (livescript.Option, error) {
	tc := c.Toolchain
	execOpts := []toolchain.ExecOption{toolchain.WithPrefixArgs(tc.Args...)}
	if tc.WorkingDir != "" {
		execOpts = append(execOpts, toolchain.WithWorkingDir(tc.WorkingDir))
	}
	if len(tc.Env) > 0 {
		execOpts = append(execOpts, toolchain.WithEnv(tc.Env...))
	}

	var (
		loader module.Loader
		err    error
	)
	switch tc.Loader {
	case LoaderWASM:
		loader, err = extism.NewLoader(extism.WithLogHandler(handler))
	default:
		loader, err = starlark.NewLoader(starlark.WithLogHandler(handler))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to create %s loader: %w", tc.Loader, err)
	}

	return livescript.WithToolchain(toolchain.NewExec(tc.Command, execOpts...), loader, tc.SourceExt, tc.OutputExt), nil
}
