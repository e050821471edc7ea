package resource

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-livescript/platform/module"
	"github.com/robbyt/go-livescript/platform/service"
)

// MockCompiler is a mock implementation of the Compiler interface.
type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) TryCompile(
	ctx context.Context,
	name, sourcePath, sourceText string,
) (service.Outcome, module.Module) {
	args := m.Called(ctx, name, sourcePath, sourceText)
	mod, _ := args.Get(1).(module.Module)
	return args.Get(0).(service.Outcome), mod
}

// MockObserver is a mock implementation of the Observer interface.
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) Reloaded(ctx context.Context, event Event) {
	m.Called(ctx, event)
}
