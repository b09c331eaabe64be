package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) SectionTitle(ctx context.Context, heading, body string) (string, error) {
	args := m.Called(ctx, heading, body)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Answer(ctx context.Context, question, context string) (string, float32, error) {
	args := m.Called(ctx, question, context)
	return args.String(0), float32(args.Get(1).(float64)), args.Error(2)
}
