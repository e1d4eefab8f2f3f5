package websocket

import (
	"time"

	"github.com/fran-as/millDischargeDashboard/internal/selector"
)

// Connection is the part of a websocket connection the pumps use. It lets
// tests drive a Client without a network.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// SessionFactory opens selection sessions over the shared table cache.
type SessionFactory interface {
	NewSession() *selector.Session
	Groups() []string
}

// StructValidator checks decoded commands.
type StructValidator interface {
	ValidateStruct(v interface{}) error
}
