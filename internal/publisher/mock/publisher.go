package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/publisher"
)

// Ensure MockPublisher implements publisher.Publisher.
var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher is a mock message publisher for testing.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.BatchRunRequest
	PublishFn func(ctx context.Context, req *domain.BatchRunRequest) error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, req *domain.BatchRunRequest) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, req)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
