package handler

import (
	"context"
	"sync"

	"github.com/swatto/hooktomattermost/internal/mattermost"
)

// MockRelay is a mock implementation of mattermost.Relay for testing
type MockRelay struct {
	SendFunc func(doc *mattermost.Document) error
	Calls    []mattermost.Document
	mu       sync.Mutex
}

// Send implements the mattermost.Relay interface
func (m *MockRelay) Send(_ context.Context, doc *mattermost.Document) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, *doc)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(doc)
	}
	return nil
}

// CallCount returns the number of times Send was called
func (m *MockRelay) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// GetCall returns the document sent at the specified index
func (m *MockRelay) GetCall(index int) mattermost.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[index]
}
