package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockMessageQueue is an in-memory MessageQueue for tests
type MockMessageQueue struct {
	mutex   *sync.Mutex
	pending []Message
	deleted []string
	nextID  int
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		mutex:   &sync.Mutex{},
		pending: make([]Message, 0),
		deleted: make([]string, 0),
	}
}

func (m *MockMessageQueue) Send(ctx context.Context, body string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextID++
	m.pending = append(m.pending, Message{
		Body:   body,
		Handle: fmt.Sprintf("handle-%d", m.nextID),
	})
	return nil
}

func (m *MockMessageQueue) Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	count := int(max)
	if count > len(m.pending) {
		count = len(m.pending)
	}
	msgs := make([]Message, count)
	copy(msgs, m.pending[:count])
	m.pending = m.pending[count:]
	return msgs, nil
}

func (m *MockMessageQueue) Delete(ctx context.Context, handle string) error {
	m.mutex.Lock()
	m.deleted = append(m.deleted, handle)
	m.mutex.Unlock()
	return nil
}

// Sent returns the bodies of all messages still pending delivery
func (m *MockMessageQueue) Sent() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	bodies := make([]string, len(m.pending))
	for i, msg := range m.pending {
		bodies[i] = msg.Body
	}
	return bodies
}

// Deleted returns the handles of all deleted messages
func (m *MockMessageQueue) Deleted() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handles := make([]string, len(m.deleted))
	copy(handles, m.deleted)
	return handles
}
