package vectorindex

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"doc-windows/internal/embeddings"
)

// MockIndex is a mock implementation of Index using testify/mock.
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Upsert(ctx context.Context, points []Point) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

func (m *MockIndex) Search(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]Hit, error) {
	args := m.Called(ctx, docIDs, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Hit), args.Error(1)
}
