package progress

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReporter is a mock implementation of Reporter using testify/mock.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, u Update) {
	m.Called(ctx, u)
}

func (m *MockReporter) Latest(ctx context.Context, docID string) (*Update, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Update), args.Error(1)
}
