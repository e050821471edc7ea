package module

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockModule is a mock implementation of the Module interface.
type MockModule struct {
	mock.Mock
}

func (m *MockModule) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockModule) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockModule) Lookup(name string) (EntryType, bool) {
	args := m.Called(name)
	return args.Get(0).(EntryType), args.Bool(1)
}

func (m *MockModule) Entries() []string {
	args := m.Called()
	entries, _ := args.Get(0).([]string)
	return entries
}

func (m *MockModule) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLoader is a mock implementation of the Loader interface.
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, path string, references []string) (Module, error) {
	args := m.Called(ctx, path, references)
	mod, ok := args.Get(0).(Module)
	if !ok {
		return nil, args.Error(1)
	}
	return mod, args.Error(1)
}

// MockScript is a mock implementation of the Script interface.
type MockScript struct {
	mock.Mock
}

func (m *MockScript) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockScript) Call(ctx context.Context, method string, callArgs ...any) (any, error) {
	args := m.Called(ctx, method, callArgs)
	return args.Get(0), args.Error(1)
}
