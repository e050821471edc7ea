package bundle

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-livescript/platform/module"
)

// MockCache is a mock implementation of the Cache interface.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Lookup(ctx context.Context) (module.Module, bool, error) {
	args := m.Called(ctx)
	mod, _ := args.Get(0).(module.Module)
	return mod, args.Bool(1), args.Error(2)
}
