package imports

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

/*
ConnectionRegistry represents an object that can keep track of live websocket
connections by connection id and write messages out to them
*/
type ConnectionRegistry interface {
	Add(id string, conn Websocket) error
	Remove(id string) error
	Send(id string, data []byte) error
}

// MemoryConnectionRegistry implements ConnectionRegistry with an in-process map
type MemoryConnectionRegistry struct {
	mutex       *sync.RWMutex
	connections map[string]Websocket
}

// NewMemoryConnectionRegistry returns a *MemoryConnectionRegistry
func NewMemoryConnectionRegistry() *MemoryConnectionRegistry {
	return &MemoryConnectionRegistry{
		mutex:       &sync.RWMutex{},
		connections: make(map[string]Websocket),
	}
}

// Add registers a connection under id
func (m *MemoryConnectionRegistry) Add(id string, conn Websocket) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.connections[id]; exists {
		return fmt.Errorf("Failed to add connection %s. Already exists", id)
	}
	m.connections[id] = conn

	return nil
}

// Remove forgets the connection registered under id
func (m *MemoryConnectionRegistry) Remove(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.connections[id]; !exists {
		return fmt.Errorf("Failed to remove connection %s. Doesn't exist", id)
	}
	delete(m.connections, id)

	return nil
}

// Send writes data out the connection registered under id as a text message
func (m *MemoryConnectionRegistry) Send(id string, data []byte) error {
	m.mutex.RLock()
	conn, exists := m.connections[id]
	m.mutex.RUnlock()
	if !exists {
		return fmt.Errorf("Failed to send to connection %s. Doesn't exist", id)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("Failed to send to connection %s: %w", id, err)
	}
	return nil
}
