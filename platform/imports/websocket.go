package imports

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Websocket represents a websocket connection according to RFC6455
type Websocket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// mockWebsocket is a testing mock for Websocket
type mockWebsocket struct {
	msgs    [][]byte
	written [][]byte
	closed  bool
}

func (m *mockWebsocket) ReadMessage() (int, []byte, error) {
	if len(m.msgs) != 0 {
		msg := m.msgs[0]
		m.msgs = m.msgs[1:]
		return websocket.TextMessage, msg, nil
	}
	return -1, nil, fmt.Errorf("No message")
}

func (m *mockWebsocket) WriteMessage(msgType int, data []byte) error {
	m.written = append(m.written, data)
	return nil
}

func (m *mockWebsocket) Close() error {
	m.closed = true
	return nil
}

// GorillaWebsocket implements Websocket using the gorilla websocket library
type GorillaWebsocket struct {
	conn *websocket.Conn
}

// NewGorillaWebsocket wraps the *websocket.Conn returned by an upgrader
func NewGorillaWebsocket(conn *websocket.Conn) *GorillaWebsocket {
	return &GorillaWebsocket{conn: conn}
}

// ReadMessage forwards to websocket.Conn.ReadMessage()
func (g *GorillaWebsocket) ReadMessage() (int, []byte, error) {
	return g.conn.ReadMessage()
}

// WriteMessage forwards to websocket.Conn.WriteMessage()
func (g *GorillaWebsocket) WriteMessage(msgType int, data []byte) error {
	return g.conn.WriteMessage(msgType, data)
}

// Close forwards to websocket.Conn.Close()
func (g *GorillaWebsocket) Close() error {
	return g.conn.Close()
}
