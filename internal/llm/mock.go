package llm

import (
	"context"
	"sync"
)

// MockReply is one queued answer of a MockProvider.
type MockReply struct {
	Text  string
	Usage Usage
	Err   error
}

// MockProvider answers from a FIFO queue and records every prompt. It
// backs the "mock" platform and tests.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockReply
	Calls   []Prompt

	// Fallback answers once the queue is empty. With no fallback an empty
	// queue is ErrProviderUnavailable.
	Fallback string
}

func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{replies: replies}
}

func (m *MockProvider) Complete(_ context.Context, p Prompt) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, p)

	if len(m.replies) == 0 {
		if m.Fallback == "" {
			return nil, &ErrProviderUnavailable{}
		}
		return newReply(m.Fallback, "mock", Usage{}, false)
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return newReply(r.Text, "mock", r.Usage, false)
}

func (m *MockProvider) Model() string { return "mock" }

// Queue appends replies.
func (m *MockProvider) Queue(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// CallCount returns the number of Complete calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
