package compiler

import (
	"context"

	"github.com/robbyt/go-livescript/platform/diagnostic"
	"github.com/robbyt/go-livescript/platform/module"
	"github.com/stretchr/testify/mock"
)

// MockCompiler is a mock implementation of the Compiler interface.
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Compile(
	ctx context.Context,
	source string,
) (module.Module, diagnostic.List, error) {
	args := m.Called(ctx, source)
	mod, _ := args.Get(0).(module.Module)
	diags, _ := args.Get(1).(diagnostic.List)
	return mod, diags, args.Error(2)
}

func (m *MockCompiler) AddReference(path string) {
	m.Called(path)
}

func (m *MockCompiler) References() []string {
	args := m.Called()
	refs, _ := args.Get(0).([]string)
	return refs
}
