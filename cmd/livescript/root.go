package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-livescript"
	"github.com/robbyt/go-livescript/internal/config"
	"github.com/robbyt/go-livescript/platform/resource"
	"github.com/robbyt/go-livescript/platform/source"
)

type app struct {
	configPath string
	logLevel   string
	logFormat  string
	bundlePath string
	name       string

	cfg     config.Config
	handler slog.Handler
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "livescript",
		Short:        "Compile, run and reload live scripts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a livescript TOML config file.")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json.")
	flags.StringVar(&a.bundlePath, "bundle", "", "Path to a precompiled scripts bundle.")
	flags.StringVar(&a.name, "name", "", "Resource name. Defaults to the script's base name.")

	cmd.AddCommand(
		newCompileCommand(a),
		newRunCommand(a),
		newReloadCommand(a),
		newSaveCommand(a),
		newMetaCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewConfig()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.bundlePath != "" {
		cfg.Bundle.Path = a.bundlePath
		cfg.Bundle.Dir = ""
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	handler, err := cfg.Handler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.handler = handler
	return nil
}

func (a *app) runtime() (*livescript.Runtime, error) {
	opts, err := a.cfg.Options(a.handler)
	if err != nil {
		return nil, err
	}
	rt, err := livescript.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to start runtime: %w", err)
	}
	return rt, nil
}

// open builds a runtime and a resource for the script at path. The caller closes both
// through the returned func.
func (a *app) open(cmd *cobra.Command, path string) (*resource.Resource, func(), error) {
	rt, err := a.runtime()
	if err != nil {
		return nil, nil, err
	}

	l, err := source.NewFromDisk(path)
	if err != nil {
		_ = rt.Close(cmd.Context())
		return nil, nil, err
	}
	res, err := rt.LoadResource(a.name, l)
	if err != nil {
		_ = rt.Close(cmd.Context())
		return nil, nil, err
	}
	return res, func() {
		_ = res.Close(cmd.Context())
		_ = rt.Close(cmd.Context())
	}, nil
}
