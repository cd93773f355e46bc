package notifier

import (
	"context"
	"sync"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockGateway records every notification request for test assertions.
type MockGateway struct {
	mu   sync.Mutex
	Sent []*domain.NotificationRequest

	SendErr error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Send(_ context.Context, req *domain.NotificationRequest) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *req
	m.Sent = append(m.Sent, &clone)
	return nil
}

// Count reports the number of requests sent.
func (m *MockGateway) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

var _ Gateway = (*MockGateway)(nil)
