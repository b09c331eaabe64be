package blob

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Download(ctx context.Context, tenant, path string) ([]byte, error) {
	args := m.Called(ctx, tenant, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Upload(ctx context.Context, tenant, path string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, tenant, path, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStore) DeletePrefix(ctx context.Context, tenant, prefix string) error {
	args := m.Called(ctx, tenant, prefix)
	return args.Error(0)
}
