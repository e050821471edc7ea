package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript/platform/bundle"
	"github.com/robbyt/go-livescript/platform/compiler"
	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/module"
)

func newTestService(t *testing.T, comp compiler.Compiler, opts ...FunctionalOption) *Service {
	t.Helper()
	opts = append([]FunctionalOption{WithLogHandler(slog.NewTextHandler(os.Stdout, nil))}, opts...)
	s, err := New(comp, opts...)
	require.NoError(t, err)
	return s
}

func newModule(id string) *module.MockModule {
	mod := new(module.MockModule)
	mod.On("ID").Return(id).Maybe()
	return mod
}

func counterValue(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "livescript_compile_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "outcome") == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestTryCompile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("succeeded", func(t *testing.T) {
		t.Parallel()
		mod := newModule("m1")
		warn := diagnostic.List{{Severity: diagnostic.SeverityWarning, Message: "unused"}}
		comp := new(compiler.MockCompiler)
		comp.On("Compile", mock.Anything, "Foo = ScriptBase()").Return(mod, warn, nil)

		s := newTestService(t, comp)
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "Foo = ScriptBase()")

		assert.Equal(t, Succeeded, outcome.Kind)
		assert.True(t, outcome.HasModule())
		assert.Equal(t, warn, outcome.Diagnostics)
		assert.Same(t, mod, got)
		comp.AssertExpectations(t)
	})

	t.Run("failed", func(t *testing.T) {
		t.Parallel()
		diags := diagnostic.List{{Line: 2, Column: 4, Severity: diagnostic.SeverityError, Message: "got end of file"}}
		comp := new(compiler.MockCompiler)
		comp.On("Compile", mock.Anything, mock.Anything).Return(nil, diags, nil)

		s := newTestService(t, comp)
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "x = ")

		assert.Equal(t, Failed, outcome.Kind)
		assert.False(t, outcome.HasModule())
		assert.Equal(t, diags, outcome.Diagnostics)
		assert.Nil(t, got)
	})

	t.Run("bundle wins without compiling", func(t *testing.T) {
		t.Parallel()
		mod := newModule("bundle")
		cache := new(bundle.MockCache)
		cache.On("Lookup", mock.Anything).Return(mod, true, nil)
		comp := new(compiler.MockCompiler)

		s := newTestService(t, comp, WithBundle(cache))
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "Foo = ScriptBase()")

		assert.Equal(t, AlreadyPresentOnDisk, outcome.Kind)
		assert.Empty(t, outcome.Diagnostics)
		assert.Same(t, mod, got)
		comp.AssertNotCalled(t, "Compile", mock.Anything, mock.Anything)
	})

	t.Run("bundle wins without source path", func(t *testing.T) {
		t.Parallel()
		mod := newModule("bundle")
		s := newTestService(t, nil, WithBundle(bundle.Static{Module: mod}))
		outcome, got := s.TryCompile(ctx, "Foo", "", "")
		assert.Equal(t, AlreadyPresentOnDisk, outcome.Kind)
		assert.Same(t, mod, got)
	})

	t.Run("bundle lookup error", func(t *testing.T) {
		t.Parallel()
		cache := new(bundle.MockCache)
		cache.On("Lookup", mock.Anything).Return(nil, false, errors.New("corrupt"))
		comp := new(compiler.MockCompiler)

		s := newTestService(t, comp, WithBundle(cache))
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "Foo = ScriptBase()")

		assert.Equal(t, NotCompilable, outcome.Kind)
		require.ErrorIs(t, outcome.Reason, ErrBundle)
		assert.Nil(t, got)
		comp.AssertNotCalled(t, "Compile", mock.Anything, mock.Anything)
	})

	t.Run("no source path", func(t *testing.T) {
		t.Parallel()
		comp := new(compiler.MockCompiler)
		s := newTestService(t, comp)
		outcome, got := s.TryCompile(ctx, "Foo", "", "Foo = ScriptBase()")

		assert.Equal(t, NotCompilable, outcome.Kind)
		require.ErrorIs(t, outcome.Reason, ErrNoSourcePath)
		assert.Nil(t, got)
		comp.AssertNotCalled(t, "Compile", mock.Anything, mock.Anything)
	})

	t.Run("no compiler", func(t *testing.T) {
		t.Parallel()
		s := newTestService(t, nil)
		outcome, _ := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "Foo = ScriptBase()")
		assert.Equal(t, NotCompilable, outcome.Kind)
		require.ErrorIs(t, outcome.Reason, ErrNoCompiler)
	})

	t.Run("compiler error", func(t *testing.T) {
		t.Parallel()
		comp := new(compiler.MockCompiler)
		comp.On("Compile", mock.Anything, mock.Anything).Return(nil, nil, compiler.ErrEmptySource)

		s := newTestService(t, comp)
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "  ")
		assert.Equal(t, NotCompilable, outcome.Kind)
		require.ErrorIs(t, outcome.Reason, compiler.ErrEmptySource)
		assert.Nil(t, got)
	})

	t.Run("compiler panic", func(t *testing.T) {
		t.Parallel()
		comp := new(compiler.MockCompiler)
		comp.On("Compile", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		})

		s := newTestService(t, comp)
		outcome, got := s.TryCompile(ctx, "Foo", "/scripts/foo.star", "Foo = ScriptBase()")
		assert.Equal(t, NotCompilable, outcome.Kind)
		require.ErrorIs(t, outcome.Reason, ErrPanic)
		assert.Contains(t, outcome.Reason.Error(), "boom")
		assert.Nil(t, got)
	})
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	comp := new(compiler.MockCompiler)
	comp.On("Compile", mock.Anything, "good").Return(newModule("m"), nil, nil)
	comp.On("Compile", mock.Anything, "bad").Return(nil, diagnostic.List{{Severity: diagnostic.SeverityError}}, nil)

	s := newTestService(t, comp, WithRegisterer(reg))
	s.TryCompile(ctx, "A", "/a.star", "good")
	s.TryCompile(ctx, "A", "/a.star", "good")
	s.TryCompile(ctx, "B", "/b.star", "bad")
	s.TryCompile(ctx, "C", "", "good")

	assert.InDelta(t, 2.0, counterValue(t, reg, Succeeded.String()), 0)
	assert.InDelta(t, 1.0, counterValue(t, reg, Failed.String()), 0)
	assert.InDelta(t, 1.0, counterValue(t, reg, NotCompilable.String()), 0)

	// A second service on the same registry shares the collectors.
	s2 := newTestService(t, comp, WithRegisterer(reg))
	s2.TryCompile(ctx, "A", "/a.star", "good")
	assert.InDelta(t, 3.0, counterValue(t, reg, Succeeded.String()), 0)
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []FunctionalOption
		wantErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "nil bundle", opts: []FunctionalOption{WithBundle(nil)}, wantErr: true},
		{name: "nil registerer", opts: []FunctionalOption{WithRegisterer(nil)}, wantErr: true},
		{name: "nil handler", opts: []FunctionalOption{WithLogHandler(nil)}, wantErr: true},
		{name: "nil logger", opts: []FunctionalOption{WithLogger(nil)}, wantErr: true},
		{name: "logger", opts: []FunctionalOption{WithLogger(slog.Default())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(new(compiler.MockCompiler), tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.NotNil(t, s.Compiler())
			assert.Contains(t, s.String(), "service.Service")
		})
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "succeeded", Outcome{Kind: Succeeded}.String())
	assert.Equal(t, "already_present_on_disk", AlreadyPresentOnDisk.String())
	assert.Equal(t, "failed: 2 diagnostic(s)", Outcome{Kind: Failed, Diagnostics: make(diagnostic.List, 2)}.String())
	assert.Equal(t, "not_compilable: "+ErrNoSourcePath.Error(), notCompilable(ErrNoSourcePath).String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
